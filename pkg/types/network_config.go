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

package types

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// NetworkConfig is the durable record kept for a single network. It is created by the
// first successful infrastructure deployment and read-modify-written afterwards.
type NetworkConfig struct {
	Network                  string                 `json:"network"`
	ChainID                  int64                  `json:"chainId"`
	ConditionalTokensAddress *ethtypes.Address0xHex `json:"conditionalTokensAddress,omitempty"`
	LMSRFactoryAddress       *ethtypes.Address0xHex `json:"lmsrFactoryAddress,omitempty"`
	DeployedBy               *ethtypes.Address0xHex `json:"deployedBy,omitempty"`
	DeployedAt               *fftypes.FFTime        `json:"deployedAt,omitempty"`
	Markets                  []*MarketRecord        `json:"markets"`

	// Extra holds members written by other tools, kept as-is across saves
	Extra map[string]json.RawMessage `json:"-"`
}

// MarketRecord is appended once per successful market provisioning and never modified.
type MarketRecord struct {
	MarketAddress    *ethtypes.Address0xHex     `json:"marketAddress"`
	ConditionID      ethtypes.HexBytes0xPrefix  `json:"conditionId"`
	CollateralToken  *ethtypes.Address0xHex     `json:"collateralToken"`
	FundingAmount    string                     `json:"fundingAmount"`
	Fee              string                     `json:"fee,omitempty"`
	Question         string                     `json:"question"`
	OutcomeSlotCount int                        `json:"outcomeSlotCount"`
	TransactionHash  ethtypes.HexBytes0xPrefix  `json:"transactionHash,omitempty"`
	BlockNumber      uint64                     `json:"blockNumber,omitempty"`
	CreatedAt        *fftypes.FFTime            `json:"createdAt"`
	Extra            map[string]json.RawMessage `json:"-"`
}

type networkConfigJSON NetworkConfig
type marketRecordJSON MarketRecord

var (
	networkConfigKeys = jsonKeys(reflect.TypeOf(networkConfigJSON{}))
	marketRecordKeys  = jsonKeys(reflect.TypeOf(marketRecordJSON{}))
)

func (c *NetworkConfig) UnmarshalJSON(b []byte) error {
	var known networkConfigJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	extra, err := splitExtra(b, networkConfigKeys)
	if err != nil {
		return err
	}
	known.Extra = extra
	// records from the hardhat scripts use these names
	if known.ConditionalTokensAddress == nil {
		legacyValue(extra, "conditionalTokens", &known.ConditionalTokensAddress)
	}
	if known.LMSRFactoryAddress == nil {
		legacyValue(extra, "lmsrFactory", &known.LMSRFactoryAddress)
	}
	*c = NetworkConfig(known)
	return nil
}

func (c NetworkConfig) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(networkConfigJSON(c))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, c.Extra, networkConfigKeys)
}

func (m *MarketRecord) UnmarshalJSON(b []byte) error {
	var known marketRecordJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	extra, err := splitExtra(b, marketRecordKeys)
	if err != nil {
		return err
	}
	known.Extra = extra
	if known.MarketAddress == nil {
		legacyValue(extra, "market", &known.MarketAddress)
	}
	if known.CollateralToken == nil {
		legacyValue(extra, "collateral", &known.CollateralToken)
	}
	if known.FundingAmount == "" {
		legacyValue(extra, "funding", &known.FundingAmount)
	}
	*m = MarketRecord(known)
	return nil
}

func (m MarketRecord) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(marketRecordJSON(m))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, m.Extra, marketRecordKeys)
}

func (c *NetworkConfig) HasInfrastructure() bool {
	return c != nil && c.ConditionalTokensAddress != nil
}

// MarketsForCondition returns the records already created against conditionID, in
// creation order.
func (c *NetworkConfig) MarketsForCondition(conditionID []byte) []*MarketRecord {
	matches := make([]*MarketRecord, 0)
	for _, m := range c.Markets {
		if m != nil && bytes.Equal(m.ConditionID, conditionID) {
			matches = append(matches, m)
		}
	}
	return matches
}
