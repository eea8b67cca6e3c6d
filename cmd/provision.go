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
	"io"

	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision ConditionalTokens infrastructure, factories and markets",
	Long: `Provision ConditionalTokens infrastructure, factories and markets

Transactions are signed with the key given by --private-key or --keystore and sent to
the endpoint given by --rpc-url.`,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

// printLink prints label and value, followed by an explorer link when the network has one.
func printLink(out io.Writer, network, label, value string, tx bool) {
	link := constants.ExplorerURL(network, value)
	if tx {
		link = constants.ExplorerTxURL(network, value)
	}
	if link == "" {
		fmt.Fprintf(out, "  %-20s %s\n", label+":", value)
		return
	}
	fmt.Fprintf(out, "  %-20s %s (%s)\n", label+":", value, link)
}
