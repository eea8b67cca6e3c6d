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
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// MaxOutcomeSlotCount is the largest condition the ConditionalTokens contract accepts.
const MaxOutcomeSlotCount = 256

// FeeRange is the fixed-point scale of a market fee: FeeRange represents 100%.
var FeeRange = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// DisabledWhitelist is the whitelist value that creates a market open to all traders.
var DisabledWhitelist = ethtypes.Address0xHex{}

// MarketConfig describes a single market to provision. It is built once per invocation
// and is not persisted as-is.
type MarketConfig struct {
	CollateralToken  ethtypes.Address0xHex
	Oracle           ethtypes.Address0xHex
	Question         string
	OutcomeSlotCount int
	Fee              *big.Int
	Whitelist        ethtypes.Address0xHex
	FundingAmount    *big.Int
	// Factory overrides the LMSR factory address held in the network record
	Factory *ethtypes.Address0xHex
}

func (m *MarketConfig) Validate() error {
	if m.CollateralToken == (ethtypes.Address0xHex{}) {
		return errors.New("collateral token address must be set")
	}
	if m.Oracle == (ethtypes.Address0xHex{}) {
		return errors.New("oracle address must be set")
	}
	if strings.TrimSpace(m.Question) == "" {
		return errors.New("question must not be empty")
	}
	if m.OutcomeSlotCount < 2 {
		return fmt.Errorf("outcome slot count must be at least 2, got %d", m.OutcomeSlotCount)
	}
	if m.OutcomeSlotCount > MaxOutcomeSlotCount {
		return fmt.Errorf("outcome slot count must be at most %d, got %d", MaxOutcomeSlotCount, m.OutcomeSlotCount)
	}
	if m.Fee == nil || m.Fee.Sign() < 0 {
		return errors.New("fee must be zero or positive")
	}
	if m.Fee.Cmp(FeeRange) >= 0 {
		return fmt.Errorf("fee %s must be less than %s (100%%)", m.Fee, FeeRange)
	}
	if m.FundingAmount == nil || m.FundingAmount.Sign() <= 0 {
		return errors.New("funding amount must be greater than zero")
	}
	return nil
}

func (m *MarketConfig) WhitelistEnabled() bool {
	return m.Whitelist != DisabledWhitelist
}

// FeePercent renders the fee as a percentage for display.
func (m *MarketConfig) FeePercent() string {
	if m.Fee == nil {
		return "0%"
	}
	pct := new(big.Rat).SetFrac(new(big.Int).Mul(m.Fee, big.NewInt(100)), FeeRange)
	return pct.FloatString(4) + "%"
}

// ParseAmount parses a non-negative integer amount in the asset's smallest unit.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a valid integer amount", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("'%s' must not be negative", s)
	}
	return v, nil
}
