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
	"errors"
	"fmt"
)

// Failure classes. Every error returned by this package matches exactly one of them with
// errors.Is.
var (
	ErrPrecondition  = errors.New("precondition failed")
	ErrRemote        = errors.New("ledger operation failed")
	ErrPostcondition = errors.New("postcondition failed")
)

var (
	ErrInfrastructureNotDeployed = fmt.Errorf("%w: infrastructure not deployed", ErrPrecondition)
	ErrFactoryNotConfigured      = fmt.Errorf("%w: no market factory configured", ErrPrecondition)
	ErrInsufficientBalance       = fmt.Errorf("%w: insufficient collateral balance", ErrPrecondition)
	ErrInvalidMarketConfig       = fmt.Errorf("%w: invalid market configuration", ErrPrecondition)
	ErrProductionRedeploy        = fmt.Errorf("%w: refusing to replace infrastructure on a production network", ErrPrecondition)
	ErrArtifact                  = fmt.Errorf("%w: unable to load contract artifact", ErrPrecondition)
	ErrChainMismatch             = fmt.Errorf("%w: connected to a different chain than the one recorded", ErrPrecondition)

	ErrEmptyCode       = fmt.Errorf("%w: no code at address", ErrRemote)
	ErrConditionLookup = fmt.Errorf("%w: condition lookup failed", ErrRemote)

	ErrMarketEventMissing = fmt.Errorf("%w: market creation event not found in receipt", ErrPostcondition)
	ErrConditionMismatch  = fmt.Errorf("%w: existing condition has a different outcome slot count", ErrPostcondition)
)

// remote tags a ledger failure with ErrRemote, leaving already classified errors alone.
func remote(err error) error {
	if err == nil || classified(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRemote, err)
}

func classified(err error) bool {
	return errors.Is(err, ErrPrecondition) || errors.Is(err, ErrRemote) || errors.Is(err, ErrPostcondition)
}

func stepError(step string, err error) error {
	return fmt.Errorf("step %q: %w", step, err)
}
