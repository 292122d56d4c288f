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

package rawdb

import "github.com/ethereum/go-ethereum/ethdb"

// keyLengthIterator skips entries whose key is not exactly keyLen bytes, so
// a prefix scan over score storage never yields a receipt or metadata key
// that happens to share the prefix.
type keyLengthIterator struct {
	ethdb.Iterator
	keyLen int
}

// NewKeyLengthIterator wraps it to yield only keys of length keyLen.
func NewKeyLengthIterator(it ethdb.Iterator, keyLen int) ethdb.Iterator {
	return &keyLengthIterator{Iterator: it, keyLen: keyLen}
}

func (it *keyLengthIterator) Next() bool {
	for it.Iterator.Next() {
		if len(it.Iterator.Key()) == it.keyLen {
			return true
		}
	}
	return false
}
