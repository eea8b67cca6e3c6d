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

package types

import (
	"time"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type InfrastructureOptions struct {
	Network      string
	Class        fftypes.FFEnum
	ArtifactPath string
	ContractName string
}

type FactoryOptions struct {
	Network string
	Address ethtypes.Address0xHex
}

type LedgerOptions struct {
	RPCURL           string
	PrivateKey       string
	KeystorePath     string
	KeystorePassword string
	PollInterval     time.Duration
	InclusionTimeout time.Duration
}
