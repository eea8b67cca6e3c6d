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
	"strings"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
)

var NetworkClass = "NetworkClass"

var (
	// NetworkClassProduction networks refuse infrastructure redeployment
	NetworkClassProduction = fftypes.FFEnumValue(NetworkClass, "production")
	NetworkClassTest       = fftypes.FFEnumValue(NetworkClass, "test")
)

// ClassifyNetwork returns production for any network named in productionNetworks.
func ClassifyNetwork(network string, productionNetworks []string) fftypes.FFEnum {
	for _, p := range productionNetworks {
		if strings.EqualFold(strings.TrimSpace(p), network) {
			return NetworkClassProduction
		}
	}
	return NetworkClassTest
}
