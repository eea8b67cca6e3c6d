package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkConfigKeepsUnknownMembers(t *testing.T) {
	doc := `{"network":"sepolia","chainId":5,"markets":[{"marketAddress":null,"conditionId":"0x01","collateralToken":null,"fundingAmount":"1","question":"q","outcomeSlotCount":2,"createdAt":null,"note":"hand written"}],"zeta":[1,2],"alpha":{"x":true}}`
	var config NetworkConfig
	require.NoError(t, json.Unmarshal([]byte(doc), &config))
	assert.Equal(t, "sepolia", config.Network)
	assert.Equal(t, int64(5), config.ChainID)
	assert.Len(t, config.Extra, 2)
	require.Len(t, config.Markets, 1)
	assert.JSONEq(t, `"hand written"`, string(config.Markets[0].Extra["note"]))

	b, err := json.Marshal(&config)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(b))
}

func TestNetworkConfigLegacyNames(t *testing.T) {
	doc := `{
		"network": "polygon",
		"chainId": 137,
		"conditionalTokens": "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045",
		"lmsrFactory": "0x9083A2B699c0a4AD06F63580BDE2635d26a3eeF0",
		"markets": [{"market": "0x0000000000000000000000000000000000000001", "collateral": "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", "funding": "500000000000", "conditionId": "0x01", "question": "q", "outcomeSlotCount": 2}]
	}`
	var config NetworkConfig
	require.NoError(t, json.Unmarshal([]byte(doc), &config))
	assert.True(t, config.HasInfrastructure())
	assert.Equal(t, "0x4d97dcd97ec945f40cf65f87097ace5ea0476045", config.ConditionalTokensAddress.String())
	assert.Equal(t, "0x9083a2b699c0a4ad06f63580bde2635d26a3eef0", config.LMSRFactoryAddress.String())
	market := config.Markets[0]
	assert.Equal(t, "0x0000000000000000000000000000000000000001", market.MarketAddress.String())
	assert.Equal(t, "500000000000", market.FundingAmount)
	assert.NotNil(t, market.CollateralToken)

	// the legacy members stay in the document alongside the current names
	b, err := json.Marshal(&config)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"lmsrFactory":"0x9083A2B699c0a4AD06F63580BDE2635d26a3eeF0"`)
	assert.Contains(t, string(b), `"lmsrFactoryAddress":"0x9083a2b699c0a4ad06f63580bde2635d26a3eef0"`)
}

func TestAppendExtraToEmptyObject(t *testing.T) {
	b, err := appendExtra([]byte(`{}`), map[string]json.RawMessage{"b": json.RawMessage(`2`), "a": json.RawMessage(`"x"`)}, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":2}`, string(b))
}
