package cmd

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCaller = common.HexToAddress("0x549b5f43a40e1a0522864a004cfff2b0ca473a65")

func newMarketViper(t *testing.T, args ...string) *viper.Viper {
	v := viper.New()
	c := &cobra.Command{Use: "market"}
	addMarketFlags(c)
	require.NoError(t, bindMarketFlags(v, c))
	require.NoError(t, c.ParseFlags(args))
	return v
}

func TestMarketConfigDefaults(t *testing.T) {
	cfg, err := marketConfig(newMarketViper(t), testCaller)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"), common.Address(cfg.CollateralToken))
	assert.Equal(t, testCaller, common.Address(cfg.Oracle))
	assert.Equal(t, "Will Bitcoin reach $100k by 2025?", cfg.Question)
	assert.Equal(t, 2, cfg.OutcomeSlotCount)
	assert.Equal(t, int64(0), cfg.Fee.Int64())
	assert.Equal(t, types.DisabledWhitelist, cfg.Whitelist)
	assert.Equal(t, big.NewInt(500000000000), cfg.FundingAmount)
	assert.Nil(t, cfg.Factory)
	assert.NoError(t, cfg.Validate())
}

func TestMarketConfigFromEnvironment(t *testing.T) {
	t.Setenv("COLLATERAL_TOKEN", "0x1234567890abcdef0123456789abcdef6789abcd")
	t.Setenv("ORACLE_ADDRESS", "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	t.Setenv("MARKET_QUESTION", "Will it rain tomorrow?")
	t.Setenv("OUTCOMES", "3")
	t.Setenv("FEE", "20000000000000000")
	t.Setenv("FUNDING", "1000000")
	t.Setenv("LMSR_FACTORY", "0x9083A2B699c0a4AD06F63580BDE2635d26a3eeF0")

	cfg, err := marketConfig(newMarketViper(t), testCaller)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1234567890abcdef0123456789abcdef6789abcd"), common.Address(cfg.CollateralToken))
	assert.Equal(t, common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"), common.Address(cfg.Oracle))
	assert.Equal(t, "Will it rain tomorrow?", cfg.Question)
	assert.Equal(t, 3, cfg.OutcomeSlotCount)
	assert.Equal(t, "2.0000%", cfg.FeePercent())
	assert.Equal(t, big.NewInt(1000000), cfg.FundingAmount)
	require.NotNil(t, cfg.Factory)
	assert.Equal(t, common.HexToAddress("0x9083A2B699c0a4AD06F63580BDE2635d26a3eeF0"), common.Address(*cfg.Factory))
}

func TestMarketConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MARKET_QUESTION", "from env")
	t.Setenv("FUNDING", "1")

	cfg, err := marketConfig(newMarketViper(t, "--question", "from flag", "--outcomes", "4"), testCaller)
	require.NoError(t, err)
	assert.Equal(t, "from flag", cfg.Question)
	assert.Equal(t, 4, cfg.OutcomeSlotCount)
	assert.Equal(t, big.NewInt(1), cfg.FundingAmount)
}

func TestMarketConfigInvalid(t *testing.T) {
	tests := []struct {
		Name        string
		Env         string
		Value       string
		ExpectedErr string
	}{
		{Name: "Collateral", Env: "COLLATERAL_TOKEN", Value: "0x1234", ExpectedErr: "invalid collateral token '0x1234'"},
		{Name: "Oracle", Env: "ORACLE_ADDRESS", Value: "alice", ExpectedErr: "invalid oracle 'alice'"},
		{Name: "Outcomes", Env: "OUTCOMES", Value: "two", ExpectedErr: "invalid outcome count 'two'"},
		{Name: "Fee", Env: "FEE", Value: "0.02", ExpectedErr: "invalid fee"},
		{Name: "NegativeFunding", Env: "FUNDING", Value: "-5", ExpectedErr: "invalid funding amount: '-5' must not be negative"},
		{Name: "Whitelist", Env: "WHITELIST", Value: "nope", ExpectedErr: "invalid whitelist 'nope'"},
		{Name: "Factory", Env: "LMSR_FACTORY", Value: "0xzz", ExpectedErr: "invalid factory '0xzz'"},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			t.Setenv(tc.Env, tc.Value)
			_, err := marketConfig(newMarketViper(t), testCaller)
			assert.Regexp(t, tc.ExpectedErr, err)
		})
	}
}

func TestNetworkClass(t *testing.T) {
	tests := []struct {
		Name          string
		Network       string
		Production    bool
		NonProduction bool
		Expected      string
		ExpectedErr   string
	}{
		{Name: "Polygon", Network: "polygon", Expected: "production"},
		{Name: "Mainnet", Network: "Mainnet", Expected: "production"},
		{Name: "Sepolia", Network: "sepolia", Expected: "test"},
		{Name: "ForcedProduction", Network: "sepolia", Production: true, Expected: "production"},
		{Name: "ForcedTest", Network: "polygon", NonProduction: true, Expected: "test"},
		{Name: "Both", Network: "polygon", Production: true, NonProduction: true, ExpectedErr: "cannot be used together"},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			forceProduction, forceNonProduction = tc.Production, tc.NonProduction
			t.Cleanup(func() { forceProduction, forceNonProduction = false, false })
			class, err := networkClass(tc.Network)
			if tc.ExpectedErr != "" {
				assert.Regexp(t, tc.ExpectedErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, string(class))
		})
	}
}
