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

package provision

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
	"github.com/kaleido-io/ctf-cli/internal/ctf"
	"github.com/kaleido-io/ctf-cli/internal/deployments"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
	"github.com/kaleido-io/ctf-cli/internal/log"
	"github.com/kaleido-io/ctf-cli/pkg/types"
)

const (
	StepApprove          = "approve"
	StepPrepareCondition = "prepare-condition"
	StepConditionID      = "condition-id"
	StepCreateMarket     = "create-market"
	StepVerify           = "verify"
	StepPersist          = "persist"
)

type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
)

type StepReport struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	TxHash string     `json:"transactionHash,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// MarketDiagnostics holds the post-creation reads. They are informational only and a
// failed read never fails the run.
type MarketDiagnostics struct {
	Funding        *big.Int         `json:"funding,omitempty"`
	Fee            *uint64          `json:"fee,omitempty"`
	Stage          *contracts.Stage `json:"stage,omitempty"`
	MarginalPrices []float64        `json:"marginalPrices,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
}

type MarketResult struct {
	Network     string              `json:"network"`
	QuestionID  string              `json:"questionId"`
	Record      *types.MarketRecord `json:"record,omitempty"`
	Steps       []*StepReport       `json:"steps"`
	Diagnostics *MarketDiagnostics  `json:"diagnostics,omitempty"`
	// CollateralDecimals is nil when the token does not report decimals
	CollateralDecimals *uint8 `json:"collateralDecimals,omitempty"`
}

func (r *MarketResult) step(name string, status StepStatus, tx *gethtypes.Transaction, detail string) {
	report := &StepReport{Name: name, Status: status, Detail: detail}
	if tx != nil {
		report.TxHash = tx.Hash().Hex()
	}
	r.Steps = append(r.Steps, report)
}

// MarketWorkflow provisions one market per Run. Each step first checks whether its effect
// is already present on the ledger, so a run that was interrupted can simply be repeated.
type MarketWorkflow struct {
	ledger ledger.Client
	store  *deployments.Store
}

func NewMarketWorkflow(l ledger.Client, store *deployments.Store) *MarketWorkflow {
	return &MarketWorkflow{
		ledger: l,
		store:  store,
	}
}

type marketRun struct {
	network           string
	cfg               *types.MarketConfig
	from              common.Address
	conditionalTokens common.Address
	factory           common.Address
	collateral        common.Address
	oracle            common.Address
	questionID        [32]byte
	conditionID       [32]byte
	decimals          *uint8
	existing          []*types.MarketRecord
}

// amount renders v in base units, with whole token units alongside when decimals are known.
func (r *marketRun) amount(v *big.Int) string {
	if r.decimals == nil {
		return v.String()
	}
	return fmt.Sprintf("%s (%s)", v, ledger.FormatUnits(v, *r.decimals))
}

func (w *MarketWorkflow) Run(ctx context.Context, network string, cfg *types.MarketConfig) (*MarketResult, error) {
	l := log.LoggerFromContext(ctx)

	run, err := w.checkPreconditions(ctx, network, cfg)
	if err != nil {
		return nil, err
	}
	result := &MarketResult{
		Network:            network,
		QuestionID:         hex0x(run.questionID[:]),
		Steps:              make([]*StepReport, 0, 6),
		CollateralDecimals: run.decimals,
	}

	if err := w.approve(ctx, run, result); err != nil {
		return result, stepError(StepApprove, err)
	}
	if err := w.prepareCondition(ctx, run, result); err != nil {
		return result, stepError(StepPrepareCondition, err)
	}

	result.step(StepConditionID, StepDone, nil, hex0x(run.conditionID[:]))
	l.Info(fmt.Sprintf("condition id %s", hex0x(run.conditionID[:])))

	if run.existing = w.marketsForCondition(network, run.conditionID); len(run.existing) > 0 {
		l.Warn(fmt.Sprintf("'%s' already records %d market(s) for condition %s, creating another", network, len(run.existing), hex0x(run.conditionID[:])))
	}

	tx, receipt, market, err := w.createMarket(ctx, run)
	if err != nil {
		return result, stepError(StepCreateMarket, err)
	}
	result.step(StepCreateMarket, StepDone, tx, market.Hex())
	l.Info(fmt.Sprintf("market created at %s", market))

	result.Diagnostics = w.verify(ctx, run, market)
	result.step(StepVerify, StepDone, nil, fmt.Sprintf("%d warning(s)", len(result.Diagnostics.Warnings)))

	record := newMarketRecord(run, market, tx, receipt)
	if _, err := w.store.AppendMarket(network, record); err != nil {
		return result, stepError(StepPersist, fmt.Errorf("market %s was created but could not be recorded: %w", market, err))
	}
	result.Record = record
	result.step(StepPersist, StepDone, nil, w.store.Path(network))
	return result, nil
}

// checkPreconditions does every check that needs no transaction: input validation, the
// network record, the factory address, the chain and the collateral balance.
func (w *MarketWorkflow) checkPreconditions(ctx context.Context, network string, cfg *types.MarketConfig) (*marketRun, error) {
	l := log.LoggerFromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMarketConfig, err)
	}
	config, err := loadInfrastructure(w.store, network)
	if err != nil {
		return nil, err
	}

	run := &marketRun{
		network:           network,
		cfg:               cfg,
		from:              w.ledger.From(),
		conditionalTokens: common.Address(*config.ConditionalTokensAddress),
		collateral:        common.Address(cfg.CollateralToken),
		oracle:            common.Address(cfg.Oracle),
	}
	run.questionID, run.conditionID = ctf.ConditionIDForQuestion(run.oracle, cfg.Question, uint(cfg.OutcomeSlotCount))
	switch {
	case cfg.Factory != nil && *cfg.Factory != (ethtypes.Address0xHex{}):
		run.factory = common.Address(*cfg.Factory)
	case config.LMSRFactoryAddress != nil:
		run.factory = common.Address(*config.LMSRFactoryAddress)
	default:
		return nil, fmt.Errorf("%w for '%s': run 'ctf provision factory %s <address>' or pass --factory", ErrFactoryNotConfigured, network, network)
	}

	if config.ChainID != 0 {
		chainID, err := w.ledger.ChainID(ctx)
		if err != nil {
			return nil, remote(err)
		}
		if chainID.Int64() != config.ChainID {
			return nil, fmt.Errorf("%w: record for '%s' is chain %d, endpoint is chain %s", ErrChainMismatch, network, config.ChainID, chainID)
		}
	}

	if decimals, err := ledger.ReadDecimals(ctx, w.ledger, run.collateral); err != nil {
		l.Debug(fmt.Sprintf("collateral %s does not report decimals: %s", run.collateral, err))
	} else {
		run.decimals = &decimals
	}
	balance, err := ledger.ReadBalance(ctx, w.ledger, run.collateral, run.from)
	if err != nil {
		return nil, remote(fmt.Errorf("reading collateral balance: %w", err))
	}
	if balance.Cmp(cfg.FundingAmount) < 0 {
		return nil, fmt.Errorf("%w: %s holds %s of %s, funding needs %s", ErrInsufficientBalance, run.from, run.amount(balance), run.collateral, run.amount(cfg.FundingAmount))
	}
	l.Debug(fmt.Sprintf("collateral balance %s covers funding %s", run.amount(balance), run.amount(cfg.FundingAmount)))
	return run, nil
}

func (w *MarketWorkflow) approve(ctx context.Context, run *marketRun, result *MarketResult) error {
	l := log.LoggerFromContext(ctx)
	allowance, err := ledger.ReadAllowance(ctx, w.ledger, run.collateral, run.from, run.factory)
	if err != nil {
		return remote(err)
	}
	if allowance.Cmp(run.cfg.FundingAmount) >= 0 {
		l.Info(fmt.Sprintf("allowance %s already covers funding, skipping approval", allowance))
		result.step(StepApprove, StepSkipped, nil, allowance.String())
		return nil
	}
	l.Info(fmt.Sprintf("approving %s to spend %s", run.factory, run.amount(run.cfg.FundingAmount)))
	tx, _, err := ledger.Transact(ctx, w.ledger, run.collateral, contracts.ERC20, 0, "approve", run.factory, run.cfg.FundingAmount)
	if err != nil {
		return remote(err)
	}
	result.step(StepApprove, StepDone, tx, run.cfg.FundingAmount.String())
	return nil
}

type conditionState int

const (
	conditionNotFound conditionState = iota
	conditionExists
)

// lookupCondition distinguishes a condition that is absent (a zero slot count, or a revert)
// from a lookup that could not be answered at all.
func (w *MarketWorkflow) lookupCondition(ctx context.Context, run *marketRun, conditionID [32]byte) (conditionState, int, error) {
	values, err := ledger.View(ctx, w.ledger, run.conditionalTokens, contracts.ConditionalTokens, "getOutcomeSlotCount", conditionID)
	if err != nil {
		if ledger.IsRevert(err) {
			return conditionNotFound, 0, nil
		}
		return conditionNotFound, 0, fmt.Errorf("%w: %w", ErrConditionLookup, err)
	}
	count, err := ledger.BigIntResult(values[0])
	if err != nil {
		return conditionNotFound, 0, fmt.Errorf("%w: %w", ErrConditionLookup, err)
	}
	if count.Sign() == 0 {
		return conditionNotFound, 0, nil
	}
	return conditionExists, int(count.Int64()), nil
}

func (w *MarketWorkflow) prepareCondition(ctx context.Context, run *marketRun, result *MarketResult) error {
	l := log.LoggerFromContext(ctx)
	slots := run.cfg.OutcomeSlotCount
	conditionID := run.conditionID
	state, existing, err := w.lookupCondition(ctx, run, conditionID)
	if err != nil {
		return err
	}
	if state == conditionExists {
		if existing != slots {
			return fmt.Errorf("%w: condition %s has %d slots, %d requested", ErrConditionMismatch, hex0x(conditionID[:]), existing, slots)
		}
		l.Info(fmt.Sprintf("condition %s already prepared, skipping", hex0x(conditionID[:])))
		result.step(StepPrepareCondition, StepSkipped, nil, hex0x(conditionID[:]))
		return nil
	}
	l.Info(fmt.Sprintf("preparing condition for question %s with %d outcomes", hex0x(run.questionID[:]), slots))
	tx, _, err := ledger.Transact(ctx, w.ledger, run.conditionalTokens, contracts.ConditionalTokens, 0, "prepareCondition", run.oracle, run.questionID, big.NewInt(int64(slots)))
	if err != nil {
		return remote(err)
	}
	result.step(StepPrepareCondition, StepDone, tx, hex0x(conditionID[:]))
	return nil
}

func (w *MarketWorkflow) createMarket(ctx context.Context, run *marketRun) (*gethtypes.Transaction, *gethtypes.Receipt, common.Address, error) {
	l := log.LoggerFromContext(ctx)
	l.Info(fmt.Sprintf("creating LMSR market via factory %s", run.factory))
	tx, receipt, err := ledger.Transact(ctx, w.ledger, run.factory, contracts.LMSRMarketMakerFactory, constants.CreateMarketGasLimit,
		"createLMSRMarketMaker",
		run.conditionalTokens,
		run.collateral,
		[][32]byte{run.conditionID},
		run.cfg.Fee.Uint64(),
		common.Address(run.cfg.Whitelist),
		run.cfg.FundingAmount,
	)
	if err != nil {
		return nil, nil, common.Address{}, remote(err)
	}
	market, err := marketFromReceipt(receipt, run.factory)
	if err != nil {
		return nil, nil, common.Address{}, fmt.Errorf("%w (transaction %s)", err, tx.Hash())
	}
	return tx, receipt, market, nil
}

// marketFromReceipt finds the address announced by the factory's creation event.
func marketFromReceipt(receipt *gethtypes.Receipt, factory common.Address) (common.Address, error) {
	event := contracts.LMSRMarketMakerFactory.Events[contracts.MarketCreationEvent]
	for _, entry := range receipt.Logs {
		if entry.Address != factory || len(entry.Topics) == 0 || entry.Topics[0] != event.ID {
			continue
		}
		values, err := contracts.LMSRMarketMakerFactory.Unpack(contracts.MarketCreationEvent, entry.Data)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: undecodable %s event: %s", ErrMarketEventMissing, contracts.MarketCreationEvent, err)
		}
		if market, ok := values[0].(common.Address); ok && market != (common.Address{}) {
			return market, nil
		}
	}
	return common.Address{}, ErrMarketEventMissing
}

func (w *MarketWorkflow) verify(ctx context.Context, run *marketRun, market common.Address) *MarketDiagnostics {
	l := log.LoggerFromContext(ctx)
	d := &MarketDiagnostics{}
	warn := func(read string, err error) {
		msg := fmt.Sprintf("unable to read %s from market %s: %s", read, market, err)
		l.Warn(msg)
		d.Warnings = append(d.Warnings, msg)
	}

	if values, err := ledger.View(ctx, w.ledger, market, contracts.LMSRMarketMaker, "funding"); err != nil {
		warn("funding", err)
	} else if funding, err := ledger.BigIntResult(values[0]); err != nil {
		warn("funding", err)
	} else {
		d.Funding = funding
		if funding.Cmp(run.cfg.FundingAmount) != 0 {
			warn("funding", fmt.Errorf("expected %s, found %s", run.cfg.FundingAmount, funding))
		}
	}

	if values, err := ledger.View(ctx, w.ledger, market, contracts.LMSRMarketMaker, "fee"); err != nil {
		warn("fee", err)
	} else if fee, ok := values[0].(uint64); !ok {
		warn("fee", fmt.Errorf("unexpected type %T", values[0]))
	} else {
		d.Fee = &fee
	}

	if values, err := ledger.View(ctx, w.ledger, market, contracts.LMSRMarketMaker, "stage"); err != nil {
		warn("stage", err)
	} else if stage, ok := values[0].(uint8); !ok {
		warn("stage", fmt.Errorf("unexpected type %T", values[0]))
	} else {
		s := contracts.Stage(stage)
		d.Stage = &s
		l.Info(fmt.Sprintf("market stage %s", s))
	}

	if run.cfg.OutcomeSlotCount == 2 {
		for i := uint8(0); i < 2; i++ {
			values, err := ledger.View(ctx, w.ledger, market, contracts.LMSRMarketMaker, "calcMarginalPrice", i)
			if err != nil {
				warn(fmt.Sprintf("marginal price of outcome %d", i), err)
				continue
			}
			raw, err := ledger.BigIntResult(values[0])
			if err != nil {
				warn(fmt.Sprintf("marginal price of outcome %d", i), err)
				continue
			}
			d.MarginalPrices = append(d.MarginalPrices, contracts.MarginalPrice(raw))
		}
	}
	return d
}

func (w *MarketWorkflow) marketsForCondition(network string, conditionID [32]byte) []*types.MarketRecord {
	config, err := w.store.Load(network)
	if err != nil {
		return nil
	}
	return config.MarketsForCondition(conditionID[:])
}

func newMarketRecord(run *marketRun, market common.Address, tx *gethtypes.Transaction, receipt *gethtypes.Receipt) *types.MarketRecord {
	marketAddress := ethtypes.Address0xHex(market)
	collateral := ethtypes.Address0xHex(run.collateral)
	record := &types.MarketRecord{
		MarketAddress:    &marketAddress,
		ConditionID:      ethtypes.HexBytes0xPrefix(run.conditionID[:]),
		CollateralToken:  &collateral,
		FundingAmount:    run.cfg.FundingAmount.String(),
		Fee:              run.cfg.Fee.String(),
		Question:         run.cfg.Question,
		OutcomeSlotCount: run.cfg.OutcomeSlotCount,
		TransactionHash:  ethtypes.HexBytes0xPrefix(tx.Hash().Bytes()),
		CreatedAt:        fftypes.Now(),
	}
	if receipt != nil && receipt.BlockNumber != nil {
		record.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return record
}

func hex0x(b []byte) string {
	return ethtypes.HexBytes0xPrefix(b).String()
}
