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

	"github.com/spf13/cobra"
)

var listCommand = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "list networks with a deployment record",
	Long:    `List networks with a deployment record`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := deploymentStore()
		networks, err := store.ListNetworks()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deployments in %s:\n\n", store.Dir)
		for _, network := range networks {
			config, err := store.Load(network)
			if err != nil {
				fmt.Fprintf(out, "%-16s (unreadable: %s)\n", network, err)
				continue
			}
			ct := "-"
			if config.HasInfrastructure() {
				ct = config.ConditionalTokensAddress.String()
			}
			fmt.Fprintf(out, "%-16s chain %-10d %s  %d market(s)\n", network, config.ChainID, ct, len(config.Markets))
		}
		fmt.Fprint(out, "\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCommand)
}
