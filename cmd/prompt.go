// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/kaleido-io/ctf-cli/internal/deployments"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func printError(err error) {
	if fancyFeatures {
		fmt.Fprintf(os.Stderr, "\u001b[31mError: %s\u001b[0m\n", err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}
}

func deploymentStore() *deployments.Store {
	return deployments.NewStore(viper.GetString("deployments-dir"))
}

// listNetworks aids in completion, to provide completion to command for network name.
func listNetworks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	networks, err := deploymentStore().ListNetworks()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return networks, cobra.ShellCompDirectiveNoSpace
}
