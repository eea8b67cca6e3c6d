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

package contracts

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type CompiledContracts struct {
	Contracts map[string]*CompiledContract `json:"contracts"`
}

type CompiledContract struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode string          `json:"bin"`
}

type truffleCompiledContract struct {
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
	ContractName string          `json:"contractName"`
}

// ParsedABI decodes the contract ABI. Older solc releases emit the ABI as a JSON encoded
// string rather than an array, so both are accepted.
func (c *CompiledContract) ParsedABI() (abi.ABI, error) {
	raw := bytes.TrimSpace(c.ABI)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return abi.ABI{}, err
		}
		raw = []byte(s)
	}
	return abi.JSON(bytes.NewReader(raw))
}

// DeployData returns the creation bytecode, failing when the contract is abstract or an
// interface and therefore has none.
func (c *CompiledContract) DeployData() ([]byte, error) {
	code := strings.TrimPrefix(strings.TrimSpace(c.Bytecode), "0x")
	if code == "" {
		return nil, fmt.Errorf("contract has no bytecode")
	}
	b, err := hex.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %s", err)
	}
	return b, nil
}

func ReadTruffleCompiledContract(filePath string) (*CompiledContracts, error) {
	d, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var truffleCompiledContract *truffleCompiledContract
	if err := json.Unmarshal(d, &truffleCompiledContract); err != nil {
		return nil, err
	}
	if truffleCompiledContract == nil || truffleCompiledContract.ContractName == "" {
		return nil, fmt.Errorf("no contracts found in file: '%s'", filePath)
	}
	contract := &CompiledContract{
		ABI:      truffleCompiledContract.ABI,
		Bytecode: truffleCompiledContract.Bytecode,
	}
	return &CompiledContracts{
		Contracts: map[string]*CompiledContract{
			truffleCompiledContract.ContractName: contract,
		},
	}, nil
}

func ReadSolcCompiledContract(filePath string) (*CompiledContracts, error) {
	d, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var contracts *CompiledContracts
	if err := json.Unmarshal(d, &contracts); err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = &CompiledContracts{}
	}
	return contracts, nil
}

// ReadContractJSON accepts either solc --combined-json output or a single hardhat/truffle
// artifact.
func ReadContractJSON(filePath string) (*CompiledContracts, error) {
	contracts, err := ReadSolcCompiledContract(filePath)
	if err != nil {
		return nil, err
	}
	if len(contracts.Contracts) > 0 {
		return contracts, nil
	}
	return ReadTruffleCompiledContract(filePath)
}

// Names lists the contracts in the file in a stable order.
func (c *CompiledContracts) Names() []string {
	names := make([]string, 0, len(c.Contracts))
	for name := range c.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindContract looks a contract up by name. solc keys contracts as "<source>:<name>", so a
// bare name also matches that suffix.
func (c *CompiledContracts) FindContract(name string) (*CompiledContract, error) {
	if contract, ok := c.Contracts[name]; ok {
		return contract, nil
	}
	for _, key := range c.Names() {
		if strings.HasSuffix(key, ":"+name) {
			return c.Contracts[key], nil
		}
	}
	return nil, fmt.Errorf("contract '%s' not found (available: %s)", name, strings.Join(c.Names(), ", "))
}
