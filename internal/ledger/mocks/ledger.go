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

// Package mocks holds an in-memory ledger that understands the handful of contract calls
// the provisioning commands make.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
	"github.com/kaleido-io/ctf-cli/internal/ctf"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
)

var (
	DefaultFrom              = common.HexToAddress("0x549b5f43a40e1a0522864a004cfff2b0ca473a65")
	DefaultConditionalTokens = common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045")
	DefaultFactory           = common.HexToAddress("0x9083A2B699c0a4AD06F63580BDE2635d26a3eeF0")
	DefaultCollateral        = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
)

var stubCode = []byte{0x60, 0x80, 0x60, 0x40, 0x52}

// Submitted is one transaction as the ledger saw it.
type Submitted struct {
	Method string
	Call   *ledger.Call
	Tx     *gethtypes.Transaction
}

type Market struct {
	Address      common.Address
	Collateral   common.Address
	ConditionIDs [][32]byte
	Fee          uint64
	Funding      *big.Int
	Stage        uint8
	Outcomes     int
}

// Ledger is a fake Client. Faults are injected by setting the exported error fields
// before a run.
type Ledger struct {
	Account           common.Address
	Chain             *big.Int
	ConditionalTokens common.Address
	Factory           common.Address

	Balances   map[common.Address]map[common.Address]*big.Int
	Allowances map[common.Address]map[common.Address]map[common.Address]*big.Int
	Code       map[common.Address][]byte
	Conditions map[[32]byte]int
	Markets    map[common.Address]*Market

	Submitted []*Submitted
	Views     []string

	// keyed by method name ("approve", "prepareCondition", "createLMSRMarketMaker", "deploy")
	SubmitErrors map[string]error
	AwaitErrors  map[string]error
	// keyed by method name, e.g. "getOutcomeSlotCount", "funding", "balanceOf"
	ViewErrors map[string]error
	CodeError  error

	OmitMarketEvent  bool
	DeployEmptyCode  bool
	DeployRevert     bool
	ChainIDError     error
	block            uint64
	nonce            uint64
	receipts         map[common.Hash]*gethtypes.Receipt
	submittedMethods map[common.Hash]string
}

func NewLedger() *Ledger {
	m := &Ledger{
		Account:           DefaultFrom,
		Chain:             big.NewInt(11155111),
		ConditionalTokens: DefaultConditionalTokens,
		Factory:           DefaultFactory,
		Balances:          map[common.Address]map[common.Address]*big.Int{},
		Allowances:        map[common.Address]map[common.Address]map[common.Address]*big.Int{},
		Code:              map[common.Address][]byte{},
		Conditions:        map[[32]byte]int{},
		Markets:           map[common.Address]*Market{},
		SubmitErrors:      map[string]error{},
		AwaitErrors:       map[string]error{},
		ViewErrors:        map[string]error{},
		block:             100,
		receipts:          map[common.Hash]*gethtypes.Receipt{},
		submittedMethods:  map[common.Hash]string{},
	}
	m.Code[DefaultConditionalTokens] = stubCode
	m.Code[DefaultFactory] = stubCode
	m.Code[DefaultCollateral] = stubCode
	return m
}

func (m *Ledger) SetBalance(asset, account common.Address, amount *big.Int) {
	if m.Balances[asset] == nil {
		m.Balances[asset] = map[common.Address]*big.Int{}
	}
	m.Balances[asset][account] = new(big.Int).Set(amount)
}

func (m *Ledger) SetAllowance(asset, owner, spender common.Address, amount *big.Int) {
	if m.Allowances[asset] == nil {
		m.Allowances[asset] = map[common.Address]map[common.Address]*big.Int{}
	}
	if m.Allowances[asset][owner] == nil {
		m.Allowances[asset][owner] = map[common.Address]*big.Int{}
	}
	m.Allowances[asset][owner][spender] = new(big.Int).Set(amount)
}

func (m *Ledger) Balance(asset, account common.Address) *big.Int {
	if b := m.Balances[asset][account]; b != nil {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (m *Ledger) Allowance(asset, owner, spender common.Address) *big.Int {
	if a := m.Allowances[asset][owner][spender]; a != nil {
		return new(big.Int).Set(a)
	}
	return big.NewInt(0)
}

// SubmittedMethods lists the method of every submitted transaction in order.
func (m *Ledger) SubmittedMethods() []string {
	methods := make([]string, len(m.Submitted))
	for i, s := range m.Submitted {
		methods[i] = s.Method
	}
	return methods
}

func (m *Ledger) From() common.Address {
	return m.Account
}

func (m *Ledger) ChainID(ctx context.Context) (*big.Int, error) {
	if m.ChainIDError != nil {
		return nil, m.ChainIDError
	}
	return new(big.Int).Set(m.Chain), nil
}

func (m *Ledger) Submit(ctx context.Context, call *ledger.Call) (*gethtypes.Transaction, error) {
	method, err := m.methodName(call)
	if err != nil {
		return nil, err
	}
	if err := m.SubmitErrors[method]; err != nil {
		return nil, err
	}
	tx := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    m.nonce,
		GasPrice: big.NewInt(1000000000),
		Gas:      call.GasLimit,
		To:       call.To,
		Value:    big.NewInt(0),
		Data:     call.Data,
	})
	m.block++
	receipt := &gethtypes.Receipt{
		Status:      gethtypes.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(m.block),
	}
	if err := m.execute(method, call, receipt); err != nil {
		receipt.Status = gethtypes.ReceiptStatusFailed
		receipt.Logs = nil
	}
	m.nonce++
	m.receipts[tx.Hash()] = receipt
	m.submittedMethods[tx.Hash()] = method
	m.Submitted = append(m.Submitted, &Submitted{Method: method, Call: call, Tx: tx})
	return tx, nil
}

func (m *Ledger) AwaitInclusion(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.AwaitErrors[m.submittedMethods[tx.Hash()]]; err != nil {
		return nil, err
	}
	receipt, ok := m.receipts[tx.Hash()]
	if !ok {
		return nil, fmt.Errorf("%w: unknown transaction %s", ledger.ErrInclusionTimeout, tx.Hash())
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ledger.ErrTransactionReverted, tx.Hash())
	}
	return receipt, nil
}

func (m *Ledger) ReadView(ctx context.Context, call *ledger.Call) ([]byte, error) {
	if call.To == nil {
		return nil, errors.New("view call without target")
	}
	contract := m.abiFor(*call.To)
	method, err := contract.MethodById(call.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown selector", ledger.ErrExecutionReverted)
	}
	m.Views = append(m.Views, method.Name)
	if err := m.ViewErrors[method.Name]; err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	to := *call.To
	switch method.Name {
	case "balanceOf":
		return method.Outputs.Pack(m.Balance(to, args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(m.Allowance(to, args[0].(common.Address), args[1].(common.Address)))
	case "decimals":
		return method.Outputs.Pack(uint8(6))
	case "getOutcomeSlotCount":
		count := m.Conditions[args[0].([32]byte)]
		return method.Outputs.Pack(big.NewInt(int64(count)))
	}
	market, ok := m.Markets[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a market", ledger.ErrExecutionReverted, to)
	}
	switch method.Name {
	case "funding":
		return method.Outputs.Pack(market.Funding)
	case "fee":
		return method.Outputs.Pack(market.Fee)
	case "stage":
		return method.Outputs.Pack(market.Stage)
	case "calcMarginalPrice":
		// even split across outcomes, in 2^64 fixed point
		price := new(big.Int).Lsh(big.NewInt(1), 64)
		price.Div(price, big.NewInt(int64(market.Outcomes)))
		return method.Outputs.Pack(price)
	}
	return nil, fmt.Errorf("%w: %s not supported", ledger.ErrExecutionReverted, method.Name)
}

func (m *Ledger) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	if m.CodeError != nil {
		return nil, m.CodeError
	}
	return m.Code[address], nil
}

func (m *Ledger) abiFor(to common.Address) abi.ABI {
	switch {
	case to == m.ConditionalTokens:
		return contracts.ConditionalTokens
	case to == m.Factory:
		return contracts.LMSRMarketMakerFactory
	case m.Markets[to] != nil:
		return contracts.LMSRMarketMaker
	default:
		return contracts.ERC20
	}
}

func (m *Ledger) methodName(call *ledger.Call) (string, error) {
	if call.To == nil {
		return "deploy", nil
	}
	contractABI := m.abiFor(*call.To)
	method, err := contractABI.MethodById(call.Data)
	if err != nil {
		return "", err
	}
	return method.Name, nil
}

func (m *Ledger) execute(name string, call *ledger.Call, receipt *gethtypes.Receipt) error {
	if name == "deploy" {
		if m.DeployRevert {
			return ledger.ErrExecutionReverted
		}
		address := crypto.CreateAddress(m.Account, m.nonce)
		receipt.ContractAddress = address
		if !m.DeployEmptyCode {
			m.Code[address] = stubCode
		}
		m.ConditionalTokens = address
		return nil
	}
	to := *call.To
	contractABI := m.abiFor(to)
	method, _ := contractABI.MethodById(call.Data)
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return err
	}
	switch name {
	case "approve":
		m.SetAllowance(to, m.Account, args[0].(common.Address), args[1].(*big.Int))
		return nil
	case "prepareCondition":
		oracle := args[0].(common.Address)
		questionID := args[1].([32]byte)
		count := int(args[2].(*big.Int).Int64())
		conditionID := ctf.ConditionID(oracle, questionID, uint(count))
		if m.Conditions[conditionID] != 0 {
			return errors.New("condition already prepared")
		}
		m.Conditions[conditionID] = count
		receipt.Logs = append(receipt.Logs, &gethtypes.Log{
			Address: to,
			Topics: []common.Hash{
				contracts.ConditionalTokens.Events[contracts.ConditionPreparedEvent].ID,
				common.Hash(conditionID),
				common.BytesToHash(oracle.Bytes()),
				common.Hash(questionID),
			},
			Data: common.LeftPadBytes(big.NewInt(int64(count)).Bytes(), 32),
		})
		return nil
	case "createLMSRMarketMaker":
		return m.createMarket(to, args, receipt)
	}
	return fmt.Errorf("unsupported transaction %s", name)
}

func (m *Ledger) createMarket(factory common.Address, args []interface{}, receipt *gethtypes.Receipt) error {
	pmSystem := args[0].(common.Address)
	collateral := args[1].(common.Address)
	conditionIDs := args[2].([][32]byte)
	fee := args[3].(uint64)
	funding := args[5].(*big.Int)

	outcomes := 0
	for _, id := range conditionIDs {
		if m.Conditions[id] == 0 {
			return errors.New("condition not prepared")
		}
		outcomes += m.Conditions[id]
	}
	if m.Allowance(collateral, m.Account, factory).Cmp(funding) < 0 {
		return errors.New("insufficient allowance")
	}
	if m.Balance(collateral, m.Account).Cmp(funding) < 0 {
		return errors.New("insufficient balance")
	}
	m.SetAllowance(collateral, m.Account, factory, new(big.Int).Sub(m.Allowance(collateral, m.Account, factory), funding))
	m.SetBalance(collateral, m.Account, new(big.Int).Sub(m.Balance(collateral, m.Account), funding))

	address := crypto.CreateAddress(factory, uint64(len(m.Markets)+1))
	m.Markets[address] = &Market{
		Address:      address,
		Collateral:   collateral,
		ConditionIDs: conditionIDs,
		Fee:          fee,
		Funding:      new(big.Int).Set(funding),
		Outcomes:     outcomes,
	}
	m.Code[address] = stubCode
	if m.OmitMarketEvent {
		return nil
	}
	event := contracts.LMSRMarketMakerFactory.Events[contracts.MarketCreationEvent]
	data, err := event.Inputs.NonIndexed().Pack(address, pmSystem, collateral, conditionIDs, fee, funding)
	if err != nil {
		return err
	}
	receipt.Logs = append(receipt.Logs, &gethtypes.Log{
		Address: factory,
		Topics:  []common.Hash{event.ID, common.BytesToHash(m.Account.Bytes())},
		Data:    data,
	})
	return nil
}
