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
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
	"github.com/kaleido-io/ctf-cli/internal/provision"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// marketFlags maps each market option to the environment variable that can also set it.
var marketFlags = []struct {
	Name string
	Env  string
}{
	{"collateral-token", "COLLATERAL_TOKEN"},
	{"oracle", "ORACLE_ADDRESS"},
	{"question", "MARKET_QUESTION"},
	{"outcomes", "OUTCOMES"},
	{"fee", "FEE"},
	{"whitelist", "WHITELIST"},
	{"funding", "FUNDING"},
	{"factory", "LMSR_FACTORY"},
}

var provisionMarketCmd = &cobra.Command{
	Use:               "market <network>",
	Short:             "Create an LMSR market against a network's ConditionalTokens contract",
	ValidArgsFunction: listNetworks,
	Args:              cobra.ExactArgs(1),
	Long: `Create an LMSR market against a network's ConditionalTokens contract

Approves the factory to spend the funding amount, prepares the condition, creates the
market and appends it to the network's deployment record. Approval and condition
preparation are skipped when already in place, so a failed run can be repeated.

Every option can also be set from the environment:
  COLLATERAL_TOKEN, ORACLE_ADDRESS, MARKET_QUESTION, OUTCOMES, FEE, WHITELIST,
  FUNDING, LMSR_FACTORY`,
	RunE: func(cmd *cobra.Command, args []string) error {
		network := args[0]
		ctx, spin := commandContext(cmd)
		client, closeLedger, err := connectLedger(ctx)
		if err != nil {
			return err
		}
		defer closeLedger()

		cfg, err := marketConfig(viper.GetViper(), client.From())
		if err != nil {
			return err
		}

		if spin != nil {
			spin.Start()
		}
		result, err := provision.NewMarketWorkflow(client, deploymentStore()).Run(ctx, network, cfg)
		stopSpinner(cmd, spin)
		if result != nil {
			printSteps(cmd.OutOrStdout(), network, result)
		}
		if err != nil {
			return err
		}
		printMarket(cmd.OutOrStdout(), network, cfg, result)
		return nil
	},
}

func marketKey(name string) string {
	return "market." + name
}

func addMarketFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("collateral-token", constants.DefaultCollateralToken, "ERC20 token used as collateral")
	flags.String("oracle", "", "address that will report the outcome (default: the signing account)")
	flags.String("question", constants.DefaultQuestion, "question the market resolves")
	flags.Int("outcomes", constants.DefaultOutcomeSlots, "number of outcome slots")
	flags.String("fee", constants.DefaultFee, "market fee, where 10^18 is 100%")
	flags.String("whitelist", constants.DefaultWhitelist, "trader whitelist contract (zero address disables it)")
	flags.String("funding", constants.DefaultFunding, "initial funding in the collateral's smallest unit")
	flags.String("factory", "", "LMSR market maker factory (default: the one recorded for the network)")
}

func bindMarketFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, f := range marketFlags {
		if err := v.BindPFlag(marketKey(f.Name), cmd.Flags().Lookup(f.Name)); err != nil {
			return err
		}
		if err := v.BindEnv(marketKey(f.Name), f.Env); err != nil {
			return err
		}
	}
	return nil
}

// marketConfig resolves the market options once, from flags, environment, config file
// and defaults, in that order of precedence.
func marketConfig(v *viper.Viper, caller common.Address) (*types.MarketConfig, error) {
	cfg := &types.MarketConfig{
		Question: strings.TrimSpace(v.GetString(marketKey("question"))),
	}
	var err error
	if cfg.CollateralToken, err = parseAddress("collateral token", v.GetString(marketKey("collateral-token"))); err != nil {
		return nil, err
	}
	if oracle := v.GetString(marketKey("oracle")); oracle != "" {
		if cfg.Oracle, err = parseAddress("oracle", oracle); err != nil {
			return nil, err
		}
	} else {
		cfg.Oracle = ethtypes.Address0xHex(caller)
	}
	outcomes := strings.TrimSpace(v.GetString(marketKey("outcomes")))
	if cfg.OutcomeSlotCount, err = strconv.Atoi(outcomes); err != nil {
		return nil, fmt.Errorf("invalid outcome count '%s'", outcomes)
	}
	if cfg.Fee, err = types.ParseAmount(v.GetString(marketKey("fee"))); err != nil {
		return nil, fmt.Errorf("invalid fee: %w", err)
	}
	if whitelist := v.GetString(marketKey("whitelist")); whitelist != "" {
		if cfg.Whitelist, err = parseAddress("whitelist", whitelist); err != nil {
			return nil, err
		}
	}
	if cfg.FundingAmount, err = types.ParseAmount(v.GetString(marketKey("funding"))); err != nil {
		return nil, fmt.Errorf("invalid funding amount: %w", err)
	}
	if factory := v.GetString(marketKey("factory")); factory != "" {
		address, err := parseAddress("factory", factory)
		if err != nil {
			return nil, err
		}
		cfg.Factory = &address
	}
	return cfg, nil
}

func parseAddress(label, s string) (ethtypes.Address0xHex, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return ethtypes.Address0xHex{}, fmt.Errorf("invalid %s '%s'", label, s)
	}
	return ethtypes.Address0xHex(common.HexToAddress(s)), nil
}

func printSteps(out io.Writer, network string, result *provision.MarketResult) {
	for _, step := range result.Steps {
		line := fmt.Sprintf("  [%s] %s", step.Status, step.Name)
		if step.TxHash != "" {
			if link := constants.ExplorerTxURL(network, step.TxHash); link != "" {
				line += " " + link
			} else {
				line += " " + step.TxHash
			}
		}
		fmt.Fprintln(out, line)
	}
}

func printMarket(out io.Writer, network string, cfg *types.MarketConfig, result *provision.MarketResult) {
	record := result.Record
	fmt.Fprintf(out, "\nMarket created on '%s'\n", network)
	printLink(out, network, "market", record.MarketAddress.String(), false)
	fmt.Fprintf(out, "  %-20s %s\n", "question:", record.Question)
	fmt.Fprintf(out, "  %-20s %s\n", "questionId:", result.QuestionID)
	fmt.Fprintf(out, "  %-20s %s\n", "conditionId:", record.ConditionID)
	printLink(out, network, "collateral", record.CollateralToken.String(), false)
	funding := record.FundingAmount
	if result.CollateralDecimals != nil {
		funding = fmt.Sprintf("%s (%s)", funding, ledger.FormatUnits(cfg.FundingAmount, *result.CollateralDecimals))
	}
	fmt.Fprintf(out, "  %-20s %s\n", "funding:", funding)
	fmt.Fprintf(out, "  %-20s %s\n", "fee:", cfg.FeePercent())
	if cfg.WhitelistEnabled() {
		printLink(out, network, "whitelist", cfg.Whitelist.String(), false)
	} else {
		fmt.Fprintf(out, "  %-20s %s\n", "whitelist:", "disabled")
	}
	if d := result.Diagnostics; d != nil {
		if d.Stage != nil {
			fmt.Fprintf(out, "  %-20s %s\n", "stage:", d.Stage)
		}
		for i, price := range d.MarginalPrices {
			fmt.Fprintf(out, "  %-20s %.4f\n", fmt.Sprintf("price[%d]:", i), price)
		}
	}
}

func init() {
	addMarketFlags(provisionMarketCmd)
	cobra.CheckErr(bindMarketFlags(viper.GetViper(), provisionMarketCmd))
	provisionCmd.AddCommand(provisionMarketCmd)
}
