package contracts

import (
	"encoding/hex"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadContractJSON(t *testing.T) {
	tests := []struct {
		Name         string
		File         string
		ContractName string
		Available    []string
	}{
		{
			Name:         "Hardhat",
			File:         "hardhat.json",
			ContractName: "ConditionalTokens",
			Available:    []string{"ConditionalTokens"},
		},
		{
			Name:         "Solc",
			File:         "solc.json",
			ContractName: "ConditionalTokens",
			Available:    []string{"contracts/ConditionalTokens.sol:ConditionalTokens", "contracts/IERC1155.sol:IERC1155"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			compiled, err := ReadContractJSON(filepath.Join("testdata", tc.File))
			require.NoError(t, err)
			assert.Equal(t, tc.Available, compiled.Names())

			contract, err := compiled.FindContract(tc.ContractName)
			require.NoError(t, err)

			parsed, err := contract.ParsedABI()
			require.NoError(t, err)
			_, ok := parsed.Methods["getOutcomeSlotCount"]
			assert.True(t, ok)

			code, err := contract.DeployData()
			require.NoError(t, err)
			assert.Equal(t, byte(0x60), code[0])
		})
	}
}

func TestReadContractJSONErrors(t *testing.T) {
	_, err := ReadContractJSON(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)

	_, err = ReadContractJSON(filepath.Join("testdata", "broken.json"))
	assert.Error(t, err)
}

func TestFindContractMissing(t *testing.T) {
	compiled, err := ReadContractJSON(filepath.Join("testdata", "solc.json"))
	require.NoError(t, err)
	_, err = compiled.FindContract("LMSRMarketMaker")
	assert.Regexp(t, "contract 'LMSRMarketMaker' not found", err)

	iface, err := compiled.FindContract("IERC1155")
	require.NoError(t, err)
	_, err = iface.DeployData()
	assert.Regexp(t, "no bytecode", err)
}

func TestEmbeddedABIs(t *testing.T) {
	assert.Contains(t, ERC20.Methods, "approve")
	assert.Contains(t, ConditionalTokens.Methods, "prepareCondition")
	assert.Contains(t, LMSRMarketMakerFactory.Events, MarketCreationEvent)
	assert.Contains(t, ConditionalTokens.Events, ConditionPreparedEvent)
	assert.Equal(t, "095ea7b3", hex.EncodeToString(ERC20.Methods["approve"].ID))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "Running", StageRunning.String())
	assert.Equal(t, "Paused", StagePaused.String())
	assert.Equal(t, "Closed", StageClosed.String())
	assert.Equal(t, "Unknown(7)", Stage(7).String())
}

func TestMarginalPrice(t *testing.T) {
	half := new(big.Int).Lsh(big.NewInt(1), 63)
	assert.Equal(t, 0.5, MarginalPrice(half))
	assert.Equal(t, float64(0), MarginalPrice(nil))
}

