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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/contracts"
	"github.com/kaleido-io/ctf-cli/internal/deployments"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
	"github.com/kaleido-io/ctf-cli/internal/log"
	"github.com/kaleido-io/ctf-cli/pkg/types"
)

// InfrastructureProvisioner deploys the ConditionalTokens contract for a network and owns
// the creation of the network record.
type InfrastructureProvisioner struct {
	ledger ledger.Client
	store  *deployments.Store
}

func NewInfrastructureProvisioner(l ledger.Client, store *deployments.Store) *InfrastructureProvisioner {
	return &InfrastructureProvisioner{
		ledger: l,
		store:  store,
	}
}

func (p *InfrastructureProvisioner) Provision(ctx context.Context, options *types.InfrastructureOptions) (*types.NetworkConfig, error) {
	l := log.LoggerFromContext(ctx)
	network := options.Network

	exists, err := p.store.CheckExists(network)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	var existing *types.NetworkConfig
	replacing := false
	if exists {
		if existing, err = p.store.Load(network); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
		}
		if existing.HasInfrastructure() {
			if options.Class == types.NetworkClassProduction {
				return nil, fmt.Errorf("%w: '%s' already has ConditionalTokens at %s", ErrProductionRedeploy, network, existing.ConditionalTokensAddress)
			}
			l.Warn(fmt.Sprintf("'%s' already has ConditionalTokens at %s, deploying a replacement", network, existing.ConditionalTokensAddress))
			replacing = true
		}
	}

	deployData, err := readDeployData(options)
	if err != nil {
		return nil, err
	}

	chainID, err := p.ledger.ChainID(ctx)
	if err != nil {
		return nil, remote(err)
	}
	if existing != nil && existing.ChainID != 0 && existing.ChainID != chainID.Int64() {
		return nil, fmt.Errorf("%w: record for '%s' is chain %d, endpoint is chain %s", ErrChainMismatch, network, existing.ChainID, chainID)
	}

	l.Info(fmt.Sprintf("deploying %s to '%s' (chain %s)", options.ContractName, network, chainID))
	tx, err := p.ledger.Submit(ctx, &ledger.Call{Data: deployData})
	if err != nil {
		return nil, remote(err)
	}
	l.Info(fmt.Sprintf("waiting for deployment transaction %s", tx.Hash()))
	receipt, err := p.ledger.AwaitInclusion(ctx, tx)
	if err != nil {
		return nil, remote(err)
	}
	address := receipt.ContractAddress
	if address == (common.Address{}) {
		return nil, fmt.Errorf("%w: receipt for %s carries no contract address", ErrEmptyCode, tx.Hash())
	}
	if err := p.requireCode(ctx, address); err != nil {
		return nil, err
	}

	if replacing {
		backup, err := p.store.Backup(network)
		if err != nil {
			return nil, err
		}
		l.Info(fmt.Sprintf("previous record saved to %s", backup))
	}

	ctAddress := ethtypes.Address0xHex(address)
	deployer := ethtypes.Address0xHex(p.ledger.From())
	config := &types.NetworkConfig{
		Network:                  network,
		ChainID:                  chainID.Int64(),
		ConditionalTokensAddress: &ctAddress,
		DeployedBy:               &deployer,
		DeployedAt:               fftypes.Now(),
		Markets:                  []*types.MarketRecord{},
	}
	if existing != nil {
		config.LMSRFactoryAddress = existing.LMSRFactoryAddress
		config.Extra = existing.Extra
	}
	if err := p.store.Save(network, config); err != nil {
		return nil, err
	}
	l.Info(fmt.Sprintf("ConditionalTokens deployed at %s", address))
	return config, nil
}

// RegisterFactory records the LMSR market maker factory used for new markets on a network.
func (p *InfrastructureProvisioner) RegisterFactory(ctx context.Context, options *types.FactoryOptions) (*types.NetworkConfig, error) {
	l := log.LoggerFromContext(ctx)
	config, err := loadInfrastructure(p.store, options.Network)
	if err != nil {
		return nil, err
	}
	if options.Address == (ethtypes.Address0xHex{}) {
		return nil, fmt.Errorf("%w: factory address must be set", ErrFactoryNotConfigured)
	}
	if err := p.requireCode(ctx, common.Address(options.Address)); err != nil {
		return nil, err
	}
	factory := options.Address
	config.LMSRFactoryAddress = &factory
	if err := p.store.Save(options.Network, config); err != nil {
		return nil, err
	}
	l.Info(fmt.Sprintf("LMSR factory for '%s' set to %s", options.Network, factory))
	return config, nil
}

func (p *InfrastructureProvisioner) requireCode(ctx context.Context, address common.Address) error {
	code, err := p.ledger.CodeAt(ctx, address)
	if err != nil {
		return remote(err)
	}
	if len(code) == 0 {
		return fmt.Errorf("%w %s", ErrEmptyCode, address)
	}
	return nil
}

// requiredMethods are the ConditionalTokens methods the market workflow calls.
var requiredMethods = []string{"prepareCondition", "getOutcomeSlotCount"}

func readDeployData(options *types.InfrastructureOptions) ([]byte, error) {
	artifactPath := options.ArtifactPath
	if artifactPath == "" {
		artifactPath = constants.DefaultArtifactPath
	}
	name := options.ContractName
	if name == "" {
		name = constants.DefaultContractName
	}
	compiled, err := contracts.ReadContractJSON(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifact, artifactPath, err)
	}
	contract, err := compiled.FindContract(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifact, artifactPath, err)
	}
	parsed, err := contract.ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid abi: %w", ErrArtifact, name, err)
	}
	for _, method := range requiredMethods {
		if _, ok := parsed.Methods[method]; !ok {
			return nil, fmt.Errorf("%w: %s in %s has no %s method", ErrArtifact, name, artifactPath, method)
		}
	}
	code, err := contract.DeployData()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifact, name, err)
	}
	return code, nil
}

func loadInfrastructure(store *deployments.Store, network string) (*types.NetworkConfig, error) {
	config, err := store.Load(network)
	if errors.Is(err, deployments.ErrNetworkNotFound) {
		return nil, fmt.Errorf("%w on '%s': run 'ctf provision infrastructure %s' first", ErrInfrastructureNotDeployed, network, network)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	if !config.HasInfrastructure() {
		return nil, fmt.Errorf("%w on '%s': record has no ConditionalTokens address", ErrInfrastructureNotDeployed, network)
	}
	return config, nil
}
