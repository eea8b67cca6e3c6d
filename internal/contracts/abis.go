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

package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

const conditionalTokensABI = `[
	{"type":"function","name":"getOutcomeSlotCount","stateMutability":"view","inputs":[{"name":"conditionId","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"prepareCondition","stateMutability":"nonpayable","inputs":[{"name":"oracle","type":"address"},{"name":"questionId","type":"bytes32"},{"name":"outcomeSlotCount","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"ConditionPreparation","anonymous":false,"inputs":[
		{"name":"conditionId","type":"bytes32","indexed":true},
		{"name":"oracle","type":"address","indexed":true},
		{"name":"questionId","type":"bytes32","indexed":true},
		{"name":"outcomeSlotCount","type":"uint256","indexed":false}
	]}
]`

const lmsrFactoryABI = `[
	{"type":"function","name":"createLMSRMarketMaker","stateMutability":"nonpayable","inputs":[
		{"name":"pmSystem","type":"address"},
		{"name":"collateralToken","type":"address"},
		{"name":"conditionIds","type":"bytes32[]"},
		{"name":"fee","type":"uint64"},
		{"name":"whitelist","type":"address"},
		{"name":"funding","type":"uint256"}
	],"outputs":[{"name":"lmsrMarketMaker","type":"address"}]},
	{"type":"event","name":"LMSRMarketMakerCreation","anonymous":false,"inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"lmsrMarketMaker","type":"address","indexed":false},
		{"name":"pmSystem","type":"address","indexed":false},
		{"name":"collateralToken","type":"address","indexed":false},
		{"name":"conditionIds","type":"bytes32[]","indexed":false},
		{"name":"fee","type":"uint64","indexed":false},
		{"name":"funding","type":"uint256","indexed":false}
	]}
]`

const lmsrMarketMakerABI = `[
	{"type":"function","name":"funding","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"fee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint64"}]},
	{"type":"function","name":"stage","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"calcMarginalPrice","stateMutability":"view","inputs":[{"name":"outcomeTokenIndex","type":"uint8"}],"outputs":[{"name":"price","type":"uint256"}]}
]`

var (
	ERC20                  = mustParseABI(erc20ABI)
	ConditionalTokens      = mustParseABI(conditionalTokensABI)
	LMSRMarketMakerFactory = mustParseABI(lmsrFactoryABI)
	LMSRMarketMaker        = mustParseABI(lmsrMarketMakerABI)
)

const (
	MarketCreationEvent    = "LMSRMarketMakerCreation"
	ConditionPreparedEvent = "ConditionPreparation"
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
