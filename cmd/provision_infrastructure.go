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
	"errors"
	"fmt"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/provision"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var infrastructureOptions types.InfrastructureOptions
var forceProduction bool
var forceNonProduction bool

var provisionInfrastructureCmd = &cobra.Command{
	Use:               "infrastructure <network>",
	Aliases:           []string{"infra"},
	Short:             "Deploy the ConditionalTokens contract to a network",
	ValidArgsFunction: listNetworks,
	Args:              cobra.ExactArgs(1),
	Long: `Deploy the ConditionalTokens contract to a network

The compiled contract is read from --artifact (a hardhat/truffle artifact or solc
combined JSON). On success a fresh deployment record is written for the network.

If the network already has a record, production networks refuse to deploy again.
Other networks deploy a replacement, after backing up the old record. The networks
treated as production are set by 'production-networks' in the config file, or per
run with --production / --no-production.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		options := infrastructureOptions
		options.Network = args[0]
		class, err := networkClass(options.Network)
		if err != nil {
			return err
		}
		options.Class = class

		ctx, spin := commandContext(cmd)
		client, closeLedger, err := connectLedger(ctx)
		if err != nil {
			return err
		}
		defer closeLedger()

		if spin != nil {
			spin.Start()
		}
		config, err := provision.NewInfrastructureProvisioner(client, deploymentStore()).Provision(ctx, &options)
		stopSpinner(cmd, spin)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ConditionalTokens deployed to '%s' (chain %d, %s network)\n", config.Network, config.ChainID, class)
		printLink(out, config.Network, "conditionalTokens", config.ConditionalTokensAddress.String(), false)
		printLink(out, config.Network, "deployedBy", config.DeployedBy.String(), false)
		fmt.Fprintf(out, "  %-20s %s\n", "record:", deploymentStore().Path(config.Network))
		if config.LMSRFactoryAddress == nil {
			fmt.Fprintf(out, "\nNext register an LMSR factory: %s provision factory %s <address>\n", ExecutableName, config.Network)
		}
		return nil
	},
}

func networkClass(network string) (fftypes.FFEnum, error) {
	switch {
	case forceProduction && forceNonProduction:
		return "", errors.New("--production and --no-production cannot be used together")
	case forceProduction:
		return types.NetworkClassProduction, nil
	case forceNonProduction:
		return types.NetworkClassTest, nil
	}
	return types.ClassifyNetwork(network, viper.GetStringSlice("production-networks")), nil
}

func init() {
	provisionInfrastructureCmd.Flags().StringVar(&infrastructureOptions.ArtifactPath, "artifact", constants.DefaultArtifactPath, "compiled contract JSON")
	provisionInfrastructureCmd.Flags().StringVar(&infrastructureOptions.ContractName, "contract-name", constants.DefaultContractName, "name of the contract within the artifact")
	provisionInfrastructureCmd.Flags().BoolVar(&forceProduction, "production", false, "treat the network as production, whatever the config says")
	provisionInfrastructureCmd.Flags().BoolVar(&forceNonProduction, "no-production", false, "treat the network as non-production, whatever the config says")
	provisionCmd.AddCommand(provisionInfrastructureCmd)
}
