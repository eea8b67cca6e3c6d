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

// Package ledger is the narrow view of the blockchain the provisioning commands depend on:
// submit a call, wait for it to be included, read contract state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
)

var (
	ErrInclusionTimeout    = errors.New("timed out waiting for transaction to be included")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrExecutionReverted   = errors.New("execution reverted")
)

// Call is a message to a contract. A nil To creates a contract from Data, and a zero
// GasLimit asks the ledger for an estimate.
type Call struct {
	To       *common.Address
	Data     []byte
	GasLimit uint64
}

type Client interface {
	From() common.Address
	ChainID(ctx context.Context) (*big.Int, error)
	Submit(ctx context.Context, call *Call) (*gethtypes.Transaction, error)
	AwaitInclusion(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error)
	ReadView(ctx context.Context, call *Call) ([]byte, error)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
}

// IsRevert reports whether err is the contract refusing a call, as opposed to a failure to
// reach the node or decode its answer.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExecutionReverted) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 3 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "vm exception while processing transaction: revert")
}

// View packs a call to a read-only method, runs it against the latest block and returns
// the decoded outputs.
func View(ctx context.Context, c Client, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.ReadView(ctx, &Call{To: &to, Data: data})
	if err != nil {
		return nil, err
	}
	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s result from %s: %w", method, to, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

// Transact submits a call to method and blocks until it is included.
func Transact(ctx context.Context, c Client, to common.Address, contract abi.ABI, gasLimit uint64, method string, args ...interface{}) (*gethtypes.Transaction, *gethtypes.Receipt, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, nil, err
	}
	tx, err := c.Submit(ctx, &Call{To: &to, Data: data, GasLimit: gasLimit})
	if err != nil {
		return nil, nil, err
	}
	receipt, err := c.AwaitInclusion(ctx, tx)
	if err != nil {
		return tx, receipt, err
	}
	return tx, receipt, nil
}

func ReadBalance(ctx context.Context, c Client, asset, account common.Address) (*big.Int, error) {
	values, err := View(ctx, c, asset, contracts.ERC20, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return BigIntResult(values[0])
}

func ReadAllowance(ctx context.Context, c Client, asset, owner, spender common.Address) (*big.Int, error) {
	values, err := View(ctx, c, asset, contracts.ERC20, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return BigIntResult(values[0])
}

func ReadDecimals(ctx context.Context, c Client, asset common.Address) (uint8, error) {
	values, err := View(ctx, c, asset, contracts.ERC20, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", values[0])
	}
	return d, nil
}

// FormatUnits renders a base-unit amount in whole token units, e.g. 1500000 with 6 decimals
// is "1.5".
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(new(big.Int).Abs(amount), scale, new(big.Int))
	s := whole.String()
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", int(decimals)-len(digits)) + digits
		s += "." + strings.TrimRight(digits, "0")
	}
	if amount.Sign() < 0 {
		s = "-" + s
	}
	return s
}

func BigIntResult(v interface{}) (*big.Int, error) {
	i, ok := v.(*big.Int)
	if !ok || i == nil {
		return nil, fmt.Errorf("unexpected result type %T", v)
	}
	return i, nil
}
