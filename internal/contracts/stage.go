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
	"fmt"
	"math/big"
)

// Stage is the lifecycle stage reported by an LMSR market maker.
type Stage uint8

const (
	StageRunning Stage = iota
	StagePaused
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StageRunning:
		return "Running"
	case StagePaused:
		return "Paused"
	case StageClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// priceScale is 2^64, the fixed point base of calcMarginalPrice.
var priceScale = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))

// MarginalPrice converts a calcMarginalPrice result into a probability in [0, 1].
func MarginalPrice(raw *big.Int) float64 {
	if raw == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), priceScale).Float64()
	return f
}
