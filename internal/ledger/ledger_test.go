package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
	"github.com/kaleido-io/ctf-cli/internal/ledger/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRevert(t *testing.T) {
	tests := []struct {
		Name     string
		Err      error
		Expected bool
	}{
		{Name: "Nil", Err: nil, Expected: false},
		{Name: "Sentinel", Err: fmt.Errorf("lookup: %w", ledger.ErrExecutionReverted), Expected: true},
		{Name: "Ganache", Err: errors.New("VM Exception while processing transaction: revert"), Expected: true},
		{Name: "Transport", Err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), Expected: false},
		{Name: "Timeout", Err: context.DeadlineExceeded, Expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, ledger.IsRevert(tc.Err))
		})
	}
}

func TestERC20Helpers(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewLedger()
	m.SetBalance(mocks.DefaultCollateral, m.From(), big.NewInt(1000))
	m.SetAllowance(mocks.DefaultCollateral, m.From(), mocks.DefaultFactory, big.NewInt(250))

	balance, err := ledger.ReadBalance(ctx, m, mocks.DefaultCollateral, m.From())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance.Int64())

	allowance, err := ledger.ReadAllowance(ctx, m, mocks.DefaultCollateral, m.From(), mocks.DefaultFactory)
	require.NoError(t, err)
	assert.Equal(t, int64(250), allowance.Int64())

	decimals, err := ledger.ReadDecimals(ctx, m, mocks.DefaultCollateral)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	assert.Equal(t, []string{"balanceOf", "allowance", "decimals"}, m.Views)
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		Name     string
		Amount   *big.Int
		Decimals uint8
		Expected string
	}{
		{Name: "Nil", Amount: nil, Decimals: 6, Expected: "0"},
		{Name: "Whole", Amount: big.NewInt(500000000000), Decimals: 6, Expected: "500000"},
		{Name: "Fraction", Amount: big.NewInt(1500000), Decimals: 6, Expected: "1.5"},
		{Name: "LeadingZeros", Amount: big.NewInt(42), Decimals: 6, Expected: "0.000042"},
		{Name: "NoDecimals", Amount: big.NewInt(7), Decimals: 0, Expected: "7"},
		{Name: "Negative", Amount: big.NewInt(-2500000), Decimals: 6, Expected: "-2.5"},
		{Name: "Ether", Amount: new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), Decimals: 18, Expected: "1"},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, ledger.FormatUnits(tc.Amount, tc.Decimals))
		})
	}
}

func TestTransact(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewLedger()
	tx, receipt, err := ledger.Transact(ctx, m, mocks.DefaultCollateral, contracts.ERC20, 0, "approve", mocks.DefaultFactory, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)
	assert.Equal(t, int64(42), m.Allowance(mocks.DefaultCollateral, m.From(), mocks.DefaultFactory).Int64())
	assert.Equal(t, []string{"approve"}, m.SubmittedMethods())
}

func TestTransactReverted(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewLedger()
	questionID := [32]byte{0x01}
	oracle := common.HexToAddress("0x1234567890abcdef0123456789abcdef6789abcd")
	_, _, err := ledger.Transact(ctx, m, m.ConditionalTokens, contracts.ConditionalTokens, 0, "prepareCondition", oracle, questionID, big.NewInt(2))
	require.NoError(t, err)

	_, receipt, err := ledger.Transact(ctx, m, m.ConditionalTokens, contracts.ConditionalTokens, 0, "prepareCondition", oracle, questionID, big.NewInt(2))
	assert.True(t, errors.Is(err, ledger.ErrTransactionReverted))
	require.NotNil(t, receipt)
	assert.Len(t, m.Submitted, 2)
}

func TestViewUndecodable(t *testing.T) {
	m := mocks.NewLedger()
	m.ViewErrors["balanceOf"] = errors.New("connection reset by peer")
	_, err := ledger.ReadBalance(context.Background(), m, mocks.DefaultCollateral, m.From())
	assert.Regexp(t, "connection reset", err)
	assert.False(t, ledger.IsRevert(err))
}
