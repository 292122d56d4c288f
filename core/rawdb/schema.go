// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"github.com/tos-network/gscore/common"
)

// The fields below define the low level database schema prefixing.
var (
	scoreStoragePrefix = []byte("s") // scoreStoragePrefix + score address + key address -> value
	receiptPrefix      = []byte("r") // receiptPrefix + tx hash -> snappy(rlp(receipt))
	lastHeightKey      = []byte("LastHeight")
)

// scoreStorageKeyLength is the length of a score storage key.
var scoreStorageKeyLength = len(scoreStoragePrefix) + 2*common.AddressLength

// scoreStorageKey = scoreStoragePrefix + score + key
func scoreStorageKey(score, key common.Address) []byte {
	buf := make([]byte, 0, scoreStorageKeyLength)
	buf = append(buf, scoreStoragePrefix...)
	buf = append(buf, score[:]...)
	return append(buf, key[:]...)
}

// scoreStoragePrefixOf returns the key prefix shared by score's entries.
func scoreStoragePrefixOf(score common.Address) []byte {
	buf := make([]byte, 0, len(scoreStoragePrefix)+common.AddressLength)
	buf = append(buf, scoreStoragePrefix...)
	return append(buf, score[:]...)
}

// receiptKey = receiptPrefix + hash
func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}

// ScoreStorageKey exposes the storage key layout to caches keyed the same
// way as the database.
func ScoreStorageKey(score, key common.Address) []byte { return scoreStorageKey(score, key) }
