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

package cmd

import (
	"context"

	"github.com/kaleido-io/ctf-cli/internal/constants"
	"github.com/kaleido-io/ctf-cli/internal/ledger"
	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/spf13/viper"
)

func ledgerOptions() *types.LedgerOptions {
	return &types.LedgerOptions{
		RPCURL:           viper.GetString("rpc-url"),
		PrivateKey:       viper.GetString("private-key"),
		KeystorePath:     viper.GetString("keystore"),
		KeystorePassword: viper.GetString("keystore-password"),
		PollInterval:     constants.DefaultPollInterval,
		InclusionTimeout: viper.GetDuration("timeout"),
	}
}

// connectLedger is swapped out by tests.
var connectLedger = func(ctx context.Context) (ledger.Client, func(), error) {
	options := ledgerOptions()
	key, err := ledger.LoadSigningKey(options)
	if err != nil {
		return nil, nil, err
	}
	client, err := ledger.NewRPCClient(ctx, options, key)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
