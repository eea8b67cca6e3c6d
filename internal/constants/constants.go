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

package constants

import (
	"path/filepath"
	"strings"
	"time"
)

var DeploymentsDir = "deployments"

var DefaultArtifactPath = filepath.Join("artifacts", "contracts", "ConditionalTokens.sol", "ConditionalTokens.json")
var DefaultContractName = "ConditionalTokens"

// Networks on which an existing infrastructure record is never replaced.
var ProductionNetworks = []string{"mainnet", "polygon"}

var (
	DefaultCollateralToken = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	DefaultQuestion        = "Will Bitcoin reach $100k by 2025?"
	DefaultOutcomeSlots    = 2
	DefaultFee             = "0"
	DefaultWhitelist       = "0x0000000000000000000000000000000000000000"
	DefaultFunding         = "500000000000"
)

var CreateMarketGasLimit uint64 = 5000000

var (
	DefaultPollInterval     = 2 * time.Second
	DefaultInclusionTimeout = 5 * time.Minute
)

var Explorers = map[string]string{
	"mainnet":   "https://etherscan.io",
	"polygon":   "https://polygonscan.com",
	"sepolia":   "https://sepolia.etherscan.io",
	"goerli":    "https://goerli.etherscan.io",
	"mumbai":    "https://mumbai.polygonscan.com",
	"avalanche": "https://snowtrace.io",
}

// ExplorerURL returns a block explorer link for an address on network, or "" when the
// network has no known explorer.
func ExplorerURL(network, address string) string {
	base, ok := Explorers[strings.ToLower(network)]
	if !ok {
		return ""
	}
	return base + "/address/" + address
}

// ExplorerTxURL is ExplorerURL for a transaction hash.
func ExplorerTxURL(network, txHash string) string {
	base, ok := Explorers[strings.ToLower(network)]
	if !ok {
		return ""
	}
	return base + "/tx/" + txHash
}
