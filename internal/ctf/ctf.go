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

// Package ctf derives the identifiers used by the ConditionalTokens contract. Everything
// here is a pure function of its inputs and never touches the ledger.
package ctf

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// QuestionID is keccak256 of the UTF-8 question text.
func QuestionID(question string) [32]byte {
	return keccak256([]byte(question))
}

// ConditionID matches ConditionalTokens.getConditionId:
// keccak256(abi.encode(oracle, questionId, outcomeSlotCount)).
func ConditionID(oracle [20]byte, questionID [32]byte, outcomeSlotCount uint) [32]byte {
	return keccak256(
		leftPad32(oracle[:]),
		questionID[:],
		leftPad32(new(big.Int).SetUint64(uint64(outcomeSlotCount)).Bytes()),
	)
}

// ConditionIDForQuestion derives the question id from the text and then the condition id.
func ConditionIDForQuestion(oracle [20]byte, question string, outcomeSlotCount uint) (questionID, conditionID [32]byte) {
	questionID = QuestionID(question)
	return questionID, ConditionID(oracle, questionID, outcomeSlotCount)
}

func keccak256(data ...[]byte) (h [32]byte) {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}
	copy(h[:], hash.Sum(nil))
	return h
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}
