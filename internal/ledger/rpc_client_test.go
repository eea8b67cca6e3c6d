package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/jarcoal/httpmock"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
	"github.com/kaleido-io/ctf-cli/internal/utils"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var testAddress = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

func newTestRPCClient(t *testing.T) *RPCClient {
	key, err := LoadSigningKey(&types.LedgerOptions{PrivateKey: testPrivateKey})
	require.NoError(t, err)
	c, err := NewRPCClient(context.Background(), &types.LedgerOptions{
		RPCURL:           utils.RPCEndpoint,
		PollInterval:     5 * time.Millisecond,
		InclusionTimeout: 100 * time.Millisecond,
	}, key)
	require.NoError(t, err)
	return c
}

func word(i int64) string {
	return hexutil.Encode(common.LeftPadBytes(big.NewInt(i).Bytes(), 32))
}

func receiptJSON(txHash common.Hash, status string) map[string]interface{} {
	return map[string]interface{}{
		"type":              "0x0",
		"status":            status,
		"cumulativeGasUsed": "0x5208",
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"logs":              []interface{}{},
		"transactionHash":   txHash.Hex(),
		"contractAddress":   "0x4d97dcd97ec945f40cf65f87097ace5ea0476045",
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"blockHash":         "0x" + strings.Repeat("ab", 32),
		"blockNumber":       "0x10",
		"transactionIndex":  "0x0",
	}
}

func TestNewRPCClientNoURL(t *testing.T) {
	key, err := LoadSigningKey(&types.LedgerOptions{PrivateKey: testPrivateKey})
	require.NoError(t, err)
	_, err = NewRPCClient(context.Background(), &types.LedgerOptions{}, key)
	assert.Regexp(t, "no RPC URL configured", err)
}

func TestChainIDIsCached(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)
	calls := 0
	utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
		assert.Equal(t, "eth_chainId", method)
		calls++
		return "0xaa36a7", nil
	})

	c := newTestRPCClient(t)
	assert.Equal(t, testAddress, c.From())
	for i := 0; i < 3; i++ {
		id, err := c.ChainID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(11155111), id.Int64())
	}
	assert.Equal(t, 1, calls)
}

func TestReadViewAndCode(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)
	utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
		switch method {
		case "eth_call":
			return word(500000000000), nil
		case "eth_getCode":
			return "0x6080", nil
		}
		return nil, &utils.JSONRPCError{Code: -32601, Message: "method not found"}
	})

	c := newTestRPCClient(t)
	ctx := context.Background()
	balance, err := ReadBalance(ctx, c, common.HexToAddress("0x01"), testAddress)
	require.NoError(t, err)
	assert.Equal(t, "500000000000", balance.String())

	code, err := c.CodeAt(ctx, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)
}

func TestReadViewErrorClassification(t *testing.T) {
	tests := []struct {
		Name       string
		StatusCode int
		Error      *utils.JSONRPCError
		IsRevert   bool
	}{
		{
			Name:     "RevertWithData",
			Error:    &utils.JSONRPCError{Code: 3, Message: "execution reverted", Data: "0x"},
			IsRevert: true,
		},
		{
			Name:     "RevertServerError",
			Error:    &utils.JSONRPCError{Code: -32000, Message: "execution reverted: condition not prepared"},
			IsRevert: true,
		},
		{
			Name:     "NodeFault",
			Error:    &utils.JSONRPCError{Code: -32000, Message: "header not found"},
			IsRevert: false,
		},
		{
			Name:       "HTTPFailure",
			StatusCode: 502,
			IsRevert:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			utils.StartMockServer(t)
			defer utils.StopMockServer(t)
			if tc.StatusCode != 0 {
				httpmock.RegisterResponder("POST", utils.RPCEndpoint, httpmock.NewStringResponder(tc.StatusCode, "bad gateway"))
			} else {
				utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
					return nil, tc.Error
				})
			}
			c := newTestRPCClient(t)
			to := common.HexToAddress("0x4d97dcd97ec945f40cf65f87097ace5ea0476045")
			_, err := View(context.Background(), c, to, contracts.ConditionalTokens, "getOutcomeSlotCount", [32]byte{})
			require.Error(t, err)
			assert.Equal(t, tc.IsRevert, IsRevert(err))
		})
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		Name         string
		GasLimit     uint64
		ExpectedGas  uint64
		EstimateUsed bool
	}{
		{Name: "Estimated", GasLimit: 0, ExpectedGas: 0x5208, EstimateUsed: true},
		{Name: "FixedLimit", GasLimit: 5000000, ExpectedGas: 5000000, EstimateUsed: false},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			utils.StartMockServer(t)
			defer utils.StopMockServer(t)
			var sent *gethtypes.Transaction
			estimated := false
			utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
				switch method {
				case "eth_chainId":
					return "0x539", nil
				case "eth_getTransactionCount":
					return "0x7", nil
				case "eth_gasPrice":
					return "0x3b9aca00", nil
				case "eth_estimateGas":
					estimated = true
					return "0x5208", nil
				case "eth_sendRawTransaction":
					var raw string
					require.NoError(t, json.Unmarshal(params[0], &raw))
					b, err := hexutil.Decode(raw)
					require.NoError(t, err)
					sent = new(gethtypes.Transaction)
					require.NoError(t, sent.UnmarshalBinary(b))
					return sent.Hash().Hex(), nil
				}
				return nil, &utils.JSONRPCError{Code: -32601, Message: "method not found"}
			})

			c := newTestRPCClient(t)
			to := common.HexToAddress("0x2791bca1f2de4661ed88a30c99a7a9449aa84174")
			data, err := contracts.ERC20.Pack("approve", to, big.NewInt(1))
			require.NoError(t, err)
			tx, err := c.Submit(context.Background(), &Call{To: &to, Data: data, GasLimit: tc.GasLimit})
			require.NoError(t, err)
			require.NotNil(t, sent)

			assert.Equal(t, tx.Hash(), sent.Hash())
			assert.Equal(t, uint64(7), sent.Nonce())
			assert.Equal(t, tc.ExpectedGas, sent.Gas())
			assert.Equal(t, tc.EstimateUsed, estimated)
			assert.Equal(t, &to, sent.To())
			sender, err := gethtypes.Sender(gethtypes.LatestSignerForChainID(big.NewInt(1337)), sent)
			require.NoError(t, err)
			assert.Equal(t, testAddress, sender)
		})
	}
}

func TestSubmitEstimateFailure(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)
	utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
		switch method {
		case "eth_chainId":
			return "0x539", nil
		case "eth_getTransactionCount":
			return "0x0", nil
		case "eth_gasPrice":
			return "0x1", nil
		}
		return nil, &utils.JSONRPCError{Code: 3, Message: "execution reverted"}
	})
	c := newTestRPCClient(t)
	to := common.HexToAddress("0x01")
	_, err := c.Submit(context.Background(), &Call{To: &to, Data: []byte{0x01}})
	assert.Regexp(t, "gas estimation failed", err)
	assert.True(t, IsRevert(err))
}

func TestAwaitInclusion(t *testing.T) {
	tx := gethtypes.NewTx(&gethtypes.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	tests := []struct {
		Name        string
		PendingPoll int
		Status      string
		ExpectedErr error
	}{
		{Name: "IncludedAfterPolling", PendingPoll: 2, Status: "0x1"},
		{Name: "Reverted", PendingPoll: 0, Status: "0x0", ExpectedErr: ErrTransactionReverted},
		{Name: "NeverIncluded", PendingPoll: 1000000, Status: "0x1", ExpectedErr: ErrInclusionTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			utils.StartMockServer(t)
			defer utils.StopMockServer(t)
			polls := 0
			utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
				assert.Equal(t, "eth_getTransactionReceipt", method)
				polls++
				if polls <= tc.PendingPoll {
					return nil, nil
				}
				return receiptJSON(tx.Hash(), tc.Status), nil
			})
			c := newTestRPCClient(t)
			receipt, err := c.AwaitInclusion(context.Background(), tx)
			if tc.ExpectedErr != nil {
				assert.True(t, errors.Is(err, tc.ExpectedErr), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.PendingPoll+1, polls)
			assert.Equal(t, uint64(16), receipt.BlockNumber.Uint64())
			assert.Equal(t, tx.Hash(), receipt.TxHash)
		})
	}
}

func TestAwaitInclusionCancelled(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)
	utils.MockJSONRPC(t, utils.RPCEndpoint, func(method string, params []json.RawMessage) (interface{}, *utils.JSONRPCError) {
		return nil, nil
	})
	c := newTestRPCClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.AwaitInclusion(ctx, gethtypes.NewTx(&gethtypes.LegacyTx{}))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrInclusionTimeout))
}
