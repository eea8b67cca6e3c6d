package types

import (
	"math/big"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/assert"
)

func validMarketConfig() *MarketConfig {
	return &MarketConfig{
		CollateralToken:  *ethtypes.MustNewAddress("0x2791bca1f2de4661ed88a30c99a7a9449aa84174"),
		Oracle:           *ethtypes.MustNewAddress("0x1234567890abcdef0123456789abcdef6789abcd"),
		Question:         "Will Bitcoin reach $100k by 2025?",
		OutcomeSlotCount: 2,
		Fee:              big.NewInt(0),
		Whitelist:        DisabledWhitelist,
		FundingAmount:    big.NewInt(500000000000),
	}
}

func TestMarketConfigValidate(t *testing.T) {
	tests := []struct {
		Name     string
		Mutate   func(m *MarketConfig)
		ErrorMsg string
	}{
		{
			Name:   "Valid",
			Mutate: func(m *MarketConfig) {},
		},
		{
			Name:     "MissingCollateral",
			Mutate:   func(m *MarketConfig) { m.CollateralToken = ethtypes.Address0xHex{} },
			ErrorMsg: "collateral token address must be set",
		},
		{
			Name:     "MissingOracle",
			Mutate:   func(m *MarketConfig) { m.Oracle = ethtypes.Address0xHex{} },
			ErrorMsg: "oracle address must be set",
		},
		{
			Name:     "EmptyQuestion",
			Mutate:   func(m *MarketConfig) { m.Question = "  " },
			ErrorMsg: "question must not be empty",
		},
		{
			Name:     "SingleOutcome",
			Mutate:   func(m *MarketConfig) { m.OutcomeSlotCount = 1 },
			ErrorMsg: "outcome slot count must be at least 2, got 1",
		},
		{
			Name:     "TooManyOutcomes",
			Mutate:   func(m *MarketConfig) { m.OutcomeSlotCount = 257 },
			ErrorMsg: "outcome slot count must be at most 256, got 257",
		},
		{
			Name:     "NegativeFee",
			Mutate:   func(m *MarketConfig) { m.Fee = big.NewInt(-1) },
			ErrorMsg: "fee must be zero or positive",
		},
		{
			Name:     "FullFee",
			Mutate:   func(m *MarketConfig) { m.Fee = new(big.Int).Set(FeeRange) },
			ErrorMsg: "fee 1000000000000000000 must be less than 1000000000000000000 (100%)",
		},
		{
			Name:     "ZeroFunding",
			Mutate:   func(m *MarketConfig) { m.FundingAmount = big.NewInt(0) },
			ErrorMsg: "funding amount must be greater than zero",
		},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			m := validMarketConfig()
			tc.Mutate(m)
			err := m.Validate()
			if tc.ErrorMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.ErrorMsg)
			}
		})
	}
}

func TestWhitelistEnabled(t *testing.T) {
	m := validMarketConfig()
	assert.False(t, m.WhitelistEnabled())
	m.Whitelist = *ethtypes.MustNewAddress("0x549b5f43a40e1a0522864a004cfff2b0ca473a65")
	assert.True(t, m.WhitelistEnabled())
}

func TestFeePercent(t *testing.T) {
	m := validMarketConfig()
	assert.Equal(t, "0.0000%", m.FeePercent())
	m.Fee, _ = new(big.Int).SetString("20000000000000000", 10)
	assert.Equal(t, "2.0000%", m.FeePercent())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		Name     string
		Input    string
		Expected string
		IsError  bool
	}{
		{Name: "Funding", Input: "500000000000", Expected: "500000000000"},
		{Name: "Whitespace", Input: " 42 ", Expected: "42"},
		{Name: "Zero", Input: "0", Expected: "0"},
		{Name: "Negative", Input: "-5", IsError: true},
		{Name: "NotANumber", Input: "lots", IsError: true},
		{Name: "Decimal", Input: "1.5", IsError: true},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			v, err := ParseAmount(tc.Input)
			if tc.IsError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Expected, v.String())
		})
	}
}
