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

	"github.com/kaleido-io/ctf-cli/internal/provision"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/spf13/cobra"
)

var provisionFactoryCmd = &cobra.Command{
	Use:               "factory <network> <factory_address>",
	Short:             "Record the LMSR market maker factory used for a network",
	ValidArgsFunction: listNetworks,
	Args:              cobra.ExactArgs(2),
	Long: `Record the LMSR market maker factory used for a network

The network must already have ConditionalTokens infrastructure, and the factory
address must hold contract code. No transaction is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := parseAddress("factory address", args[1])
		if err != nil {
			return err
		}
		options := &types.FactoryOptions{
			Network: args[0],
			Address: address,
		}

		ctx, _ := commandContext(cmd)
		client, closeLedger, err := connectLedger(ctx)
		if err != nil {
			return err
		}
		defer closeLedger()

		config, err := provision.NewInfrastructureProvisioner(client, deploymentStore()).RegisterFactory(ctx, options)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "LMSR factory recorded for '%s'\n", config.Network)
		printLink(out, config.Network, "lmsrFactory", config.LMSRFactoryAddress.String(), false)
		return nil
	},
}

func init() {
	provisionCmd.AddCommand(provisionFactoryCmd)
}
