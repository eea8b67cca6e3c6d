package provision

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/deployments"
	"github.com/kaleido-io/ctf-cli/internal/ledger/mocks"
	"github.com/kaleido-io/ctf-cli/internal/log"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/stretchr/testify/require"
)

const testNetwork = "sepolia"

var testFunding = big.NewInt(500000000000)

func testContext() context.Context {
	return log.WithLogger(context.Background(), &log.StdoutLogger{LogLevel: log.Error, Out: io.Discard})
}

func newTestEnv(t *testing.T) (*mocks.Ledger, *deployments.Store) {
	return mocks.NewLedger(), deployments.NewStore(t.TempDir())
}

// seedRecord writes the record a previous infrastructure deployment would have left.
func seedRecord(t *testing.T, m *mocks.Ledger, store *deployments.Store, withFactory bool) *types.NetworkConfig {
	ct := ethtypes.Address0xHex(m.ConditionalTokens)
	deployer := ethtypes.Address0xHex(m.From())
	config := &types.NetworkConfig{
		Network:                  testNetwork,
		ChainID:                  m.Chain.Int64(),
		ConditionalTokensAddress: &ct,
		DeployedBy:               &deployer,
		DeployedAt:               fftypes.Now(),
	}
	if withFactory {
		factory := ethtypes.Address0xHex(m.Factory)
		config.LMSRFactoryAddress = &factory
	}
	require.NoError(t, store.Save(testNetwork, config))
	return config
}

func defaultMarketConfig(m *mocks.Ledger) *types.MarketConfig {
	return &types.MarketConfig{
		CollateralToken:  ethtypes.Address0xHex(mocks.DefaultCollateral),
		Oracle:           ethtypes.Address0xHex(m.From()),
		Question:         constants.DefaultQuestion,
		OutcomeSlotCount: 2,
		Fee:              big.NewInt(0),
		Whitelist:        types.DisabledWhitelist,
		FundingAmount:    new(big.Int).Set(testFunding),
	}
}
