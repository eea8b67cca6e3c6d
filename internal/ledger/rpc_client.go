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

package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/log"
	"github.com/kaleido-io/ctf-cli/pkg/types"
)

// RPCClient talks to a node over JSON-RPC and signs locally with a single key.
type RPCClient struct {
	eth              *ethclient.Client
	key              *ecdsa.PrivateKey
	from             common.Address
	pollInterval     time.Duration
	inclusionTimeout time.Duration

	chainIDLock sync.Mutex
	chainID     *big.Int
}

func NewRPCClient(ctx context.Context, options *types.LedgerOptions, key *ecdsa.PrivateKey) (*RPCClient, error) {
	if options.RPCURL == "" {
		return nil, errors.New("no RPC URL configured: set --rpc-url or RPC_URL")
	}
	eth, err := ethclient.DialContext(ctx, options.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %s: %w", options.RPCURL, err)
	}
	c := &RPCClient{
		eth:              eth,
		key:              key,
		from:             crypto.PubkeyToAddress(key.PublicKey),
		pollInterval:     options.PollInterval,
		inclusionTimeout: options.InclusionTimeout,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = constants.DefaultPollInterval
	}
	if c.inclusionTimeout <= 0 {
		c.inclusionTimeout = constants.DefaultInclusionTimeout
	}
	return c, nil
}

func (c *RPCClient) Close() {
	c.eth.Close()
}

func (c *RPCClient) From() common.Address {
	return c.from
}

func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	c.chainIDLock.Lock()
	defer c.chainIDLock.Unlock()
	if c.chainID == nil {
		id, err := c.eth.ChainID(ctx)
		if err != nil {
			return nil, err
		}
		c.chainID = id
	}
	return new(big.Int).Set(c.chainID), nil
}

func (c *RPCClient) Submit(ctx context.Context, call *Call) (*gethtypes.Transaction, error) {
	l := log.LoggerFromContext(ctx)
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, err
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	gas := call.GasLimit
	if gas == 0 {
		gas, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From: c.from,
			To:   call.To,
			Data: call.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("gas estimation failed: %w", err)
		}
	}
	tx := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       call.To,
		Value:    big.NewInt(0),
		Data:     call.Data,
	})
	signed, err := gethtypes.SignTx(tx, gethtypes.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, err
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	l.Debug(fmt.Sprintf("submitted transaction %s (nonce=%d gas=%d)", signed.Hash(), nonce, gas))
	return signed, nil
}

// AwaitInclusion polls for the receipt of tx until it is mined or the inclusion timeout
// passes. A mined transaction with a failed status returns the receipt together with
// ErrTransactionReverted.
func (c *RPCClient) AwaitInclusion(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	l := log.LoggerFromContext(ctx)
	waitCtx, cancel := context.WithTimeout(ctx, c.inclusionTimeout)
	defer cancel()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, tx.Hash())
		switch {
		case err == nil:
			if receipt.Status != gethtypes.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s in block %s", ErrTransactionReverted, tx.Hash(), receipt.BlockNumber)
			}
			l.Debug(fmt.Sprintf("transaction %s included in block %s", tx.Hash(), receipt.BlockNumber))
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			l.Trace(fmt.Sprintf("waiting for transaction %s", tx.Hash()))
		case waitCtx.Err() != nil:
			return nil, c.waitError(ctx, tx)
		default:
			return nil, err
		}
		select {
		case <-waitCtx.Done():
			return nil, c.waitError(ctx, tx)
		case <-ticker.C:
		}
	}
}

func (c *RPCClient) waitError(parent context.Context, tx *gethtypes.Transaction) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	return fmt.Errorf("%w: %s after %s", ErrInclusionTimeout, tx.Hash(), c.inclusionTimeout)
}

func (c *RPCClient) ReadView(ctx context.Context, call *Call) ([]byte, error) {
	return c.eth.CallContract(ctx, ethereum.CallMsg{
		From: c.from,
		To:   call.To,
		Data: call.Data,
	}, nil)
}

func (c *RPCClient) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	return c.eth.CodeAt(ctx, address, nil)
}
