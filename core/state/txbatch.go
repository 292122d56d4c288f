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

package state

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/tos-network/gscore/common"
)

// StorageKey names one slot of score storage.
type StorageKey struct {
	Score common.Address
	Key   common.Address
}

// journalEntry is a reversible change to a TransactionBatch.
type journalEntry struct {
	score   common.Address
	key     common.Address
	created bool // the score batch itself was opened by this change
	inserts bool // key was new to the score batch
	prev    []byte
}

// TransactionBatch collects the score batches of one call tree. Scores are
// kept in first-touch order. Snapshots let a failed nested call roll back
// its own writes without touching the caller's.
type TransactionBatch struct {
	batches map[common.Address]*ScoreBatch
	order   []common.Address
	journal []journalEntry

	reads mapset.Set // StorageKey; nil unless tracking
}

// NewTransactionBatch returns an empty batch set.
func NewTransactionBatch() *TransactionBatch {
	return &TransactionBatch{batches: make(map[common.Address]*ScoreBatch)}
}

// Batch returns the pending batch of score, nil if it has none.
func (t *TransactionBatch) Batch(score common.Address) *ScoreBatch {
	return t.batches[score]
}

// Get returns the pending value of key in score's batch.
func (t *TransactionBatch) Get(score, key common.Address) ([]byte, bool) {
	b, ok := t.batches[score]
	if !ok {
		return nil, false
	}
	return b.Get(key)
}

// Set stages a write in score's batch, opening it on first touch.
func (t *TransactionBatch) Set(score, key common.Address, value []byte) {
	b, ok := t.batches[score]
	entry := journalEntry{score: score, key: key}
	if !ok {
		b = NewScoreBatch(score)
		t.batches[score] = b
		t.order = append(t.order, score)
		entry.created = true
	}
	prev, existed := b.Get(key)
	entry.inserts = !existed
	entry.prev = prev
	t.journal = append(t.journal, entry)
	b.Set(key, value)
}

// Delete stages the removal of key from score's storage.
func (t *TransactionBatch) Delete(score, key common.Address) { t.Set(score, key, nil) }

// Scores returns the touched scores in first-touch order.
func (t *TransactionBatch) Scores() []common.Address {
	return append([]common.Address(nil), t.order...)
}

// Batches returns the score batches in first-touch order.
func (t *TransactionBatch) Batches() []*ScoreBatch {
	out := make([]*ScoreBatch, len(t.order))
	for i, s := range t.order {
		out[i] = t.batches[s]
	}
	return out
}

// Len returns the number of pending writes across all scores.
func (t *TransactionBatch) Len() int {
	n := 0
	for _, b := range t.batches {
		n += b.Len()
	}
	return n
}

// Snapshot returns an identifier for the current state.
func (t *TransactionBatch) Snapshot() int { return len(t.journal) }

// RevertToSnapshot undoes every write made after the snapshot was taken.
func (t *TransactionBatch) RevertToSnapshot(id int) {
	if id < 0 {
		id = 0
	}
	for i := len(t.journal) - 1; i >= id; i-- {
		e := t.journal[i]
		b := t.batches[e.score]
		if e.inserts {
			b.dropLast()
		} else {
			b.restore(e.key, e.prev)
		}
		if e.created {
			delete(t.batches, e.score)
			t.order = t.order[:len(t.order)-1]
		}
	}
	if id < len(t.journal) {
		t.journal = t.journal[:id]
	}
}

// TrackReads makes the batch record every slot its call tree reads from
// committed storage. Recorded reads survive reverts and Discard: a failed
// execution still depended on them.
func (t *TransactionBatch) TrackReads() {
	if t.reads == nil {
		t.reads = mapset.NewThreadUnsafeSet()
	}
}

func (t *TransactionBatch) recordRead(score, key common.Address) {
	if t.reads != nil {
		t.reads.Add(StorageKey{Score: score, Key: key})
	}
}

// ReadSet returns the recorded reads, nil when tracking is off.
func (t *TransactionBatch) ReadSet() mapset.Set {
	if t.reads == nil {
		return nil
	}
	return t.reads.Clone()
}

// WriteSet returns the slots with pending writes.
func (t *TransactionBatch) WriteSet() mapset.Set {
	set := mapset.NewThreadUnsafeSet()
	for _, score := range t.order {
		for _, key := range t.batches[score].keys {
			set.Add(StorageKey{Score: score, Key: key})
		}
	}
	return set
}

// Discard drops every pending write.
func (t *TransactionBatch) Discard() {
	t.batches = make(map[common.Address]*ScoreBatch)
	t.order = nil
	t.journal = nil
}
