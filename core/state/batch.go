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

// Package state stages score storage writes until a call tree commits.
package state

import "github.com/tos-network/gscore/common"

// Entry is one pending key/value pair. A nil Value deletes the key.
type Entry struct {
	Key   common.Address
	Value []byte
}

// ScoreBatch is the ordered pending change set of one score. Keys keep the
// position of their first write; later writes replace the value in place.
type ScoreBatch struct {
	owner  common.Address
	index  map[common.Address]int
	keys   []common.Address
	values [][]byte
}

// NewScoreBatch returns an empty batch owned by score.
func NewScoreBatch(score common.Address) *ScoreBatch {
	return &ScoreBatch{
		owner: score,
		index: make(map[common.Address]int),
	}
}

// Address returns the owning score.
func (b *ScoreBatch) Address() common.Address { return b.owner }

// Get returns the pending value of key. ok is false when the batch holds
// no write for key; a pending deletion is reported as (nil, true).
func (b *ScoreBatch) Get(key common.Address) (value []byte, ok bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.values[i], true
}

// Set stages value under key. A nil value stages a deletion.
func (b *ScoreBatch) Set(key common.Address, value []byte) {
	value = common.CopyBytes(value)
	if i, ok := b.index[key]; ok {
		b.values[i] = value
		return
	}
	b.index[key] = len(b.keys)
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
}

// Delete stages the removal of key.
func (b *ScoreBatch) Delete(key common.Address) { b.Set(key, nil) }

// Len returns the number of distinct keys.
func (b *ScoreBatch) Len() int { return len(b.keys) }

// Keys returns the keys in insertion order.
func (b *ScoreBatch) Keys() []common.Address {
	return append([]common.Address(nil), b.keys...)
}

// Entries returns the pending pairs in insertion order.
func (b *ScoreBatch) Entries() []Entry {
	out := make([]Entry, len(b.keys))
	for i, k := range b.keys {
		out[i] = Entry{Key: k, Value: b.values[i]}
	}
	return out
}

// Iterator returns a cursor over the batch in insertion order. Every call
// starts a new pass.
func (b *ScoreBatch) Iterator() *BatchIterator {
	return &BatchIterator{batch: b, pos: -1}
}

// Clear drops every pending write.
func (b *ScoreBatch) Clear() {
	b.index = make(map[common.Address]int)
	b.keys = nil
	b.values = nil
}

// restore puts back a previous value of key.
func (b *ScoreBatch) restore(key common.Address, value []byte) {
	b.values[b.index[key]] = value
}

// dropLast removes the most recently inserted key.
func (b *ScoreBatch) dropLast() {
	n := len(b.keys) - 1
	delete(b.index, b.keys[n])
	b.keys = b.keys[:n]
	b.values = b.values[:n]
}

// BatchIterator walks a ScoreBatch. It follows the usual Next/Key/Value
// protocol and is finite.
type BatchIterator struct {
	batch *ScoreBatch
	pos   int
}

// Next advances the cursor and reports whether an entry is available.
func (it *BatchIterator) Next() bool {
	if it.pos+1 >= len(it.batch.keys) {
		it.pos = len(it.batch.keys)
		return false
	}
	it.pos++
	return true
}

func (it *BatchIterator) Key() common.Address { return it.batch.keys[it.pos] }
func (it *BatchIterator) Value() []byte       { return it.batch.values[it.pos] }

// Reset rewinds the cursor to the start.
func (it *BatchIterator) Reset() { it.pos = -1 }
