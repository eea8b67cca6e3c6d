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
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hyperledger/firefly-signer/pkg/keystorev3"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/kaleido-io/ctf-cli/pkg/types"
)

// LoadSigningKey returns the key used to sign every transaction, read either from a hex
// private key or from a V3 keystore file. The private key is never echoed in errors.
func LoadSigningKey(options *types.LedgerOptions) (*ecdsa.PrivateKey, error) {
	var keyPair *secp256k1.KeyPair
	switch {
	case options.PrivateKey != "":
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(options.PrivateKey), "0x"))
		if err != nil || len(b) != 32 {
			return nil, errors.New("invalid private key: expected 32 bytes of hex")
		}
		if keyPair, err = secp256k1.NewSecp256k1KeyPair(b); err != nil {
			return nil, errors.New("invalid private key")
		}
	case options.KeystorePath != "":
		d, err := os.ReadFile(options.KeystorePath)
		if err != nil {
			return nil, err
		}
		wallet, err := keystorev3.ReadWalletFile(d, []byte(options.KeystorePassword))
		if err != nil {
			return nil, fmt.Errorf("unable to decrypt keystore %s: %w", options.KeystorePath, err)
		}
		keyPair = wallet.KeyPair()
	default:
		return nil, errors.New("no signing key configured: set --private-key (PRIVATE_KEY) or --keystore (KEYSTORE_PATH)")
	}
	return crypto.ToECDSA(keyPair.PrivateKeyBytes())
}
