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
	"errors"
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	bloomfilter "github.com/holiman/bloomfilter/v2"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/rawdb"
)

// ErrNotFound is returned for keys absent from committed storage.
var ErrNotFound = errors.New("not found")

// Storage is the persistent engine behind score state.
type Storage interface {
	// Get returns the committed value of key, or ErrNotFound.
	Get(score, key common.Address) ([]byte, error)

	// Commit applies entries in order. A nil value deletes the key.
	Commit(score common.Address, entries []Entry) error
}

// AtomicStorage is implemented by engines able to commit the batches of
// several scores in one write.
type AtomicStorage interface {
	Storage
	CommitAll(batches []*ScoreBatch) error
}

// storageHasher feeds a database key into the bloom filter, which only
// needs a 64 bit digest of it.
type storageHasher []byte

func (h storageHasher) Write(p []byte) (n int, err error) { panic("not implemented") }
func (h storageHasher) Sum(b []byte) []byte               { panic("not implemented") }
func (h storageHasher) Reset()                            { panic("not implemented") }
func (h storageHasher) BlockSize() int                    { panic("not implemented") }
func (h storageHasher) Size() int                         { return 8 }

// Sum64 is FNV-1a over the whole key.
func (h storageHasher) Sum64() uint64 {
	v := uint64(14695981039346656037)
	for _, b := range h {
		v ^= uint64(b)
		v *= 1099511628211
	}
	return v
}

// KVStorage stores score state in an ethdb key-value store. A fastcache
// sits in front of reads and a bloom filter answers most lookups of keys
// that were never written.
type KVStorage struct {
	db    ethdb.KeyValueStore
	cache *fastcache.Cache

	lock   sync.RWMutex // guards filter
	filter *bloomfilter.Filter
}

// NewKVStorage wraps db. cacheBytes of zero disables the read cache and
// bloomBits of zero disables the lookup filter. The filter is warmed with
// every key already in db.
func NewKVStorage(db ethdb.KeyValueStore, cacheBytes int, bloomBits uint64) (*KVStorage, error) {
	s := &KVStorage{db: db}
	if cacheBytes > 0 {
		s.cache = fastcache.New(cacheBytes)
	}
	if bloomBits > 0 {
		filter, err := bloomfilter.New(bloomBits, 4)
		if err != nil {
			return nil, fmt.Errorf("storage filter: %w", err)
		}
		s.filter = filter
		warmed := 0
		if err := rawdb.IterateAllScoreKeys(db, func(key []byte) {
			filter.Add(storageHasher(key))
			warmed++
		}); err != nil {
			return nil, err
		}
		log.Debug("Warmed score storage filter", "keys", warmed, "bits", bloomBits)
	}
	return s, nil
}

// Get implements Storage.
func (s *KVStorage) Get(score, key common.Address) ([]byte, error) {
	dbKey := rawdb.ScoreStorageKey(score, key)
	if s.cache != nil {
		if v, ok := s.cache.HasGet(nil, dbKey); ok {
			storageCacheHitMeter.Mark(1)
			return v, nil
		}
		storageCacheMissMeter.Mark(1)
	}
	if s.filter != nil {
		s.lock.RLock()
		maybe := s.filter.Contains(storageHasher(dbKey))
		s.lock.RUnlock()
		if !maybe {
			storageFilterSkipMeter.Mark(1)
			return nil, ErrNotFound
		}
	}
	v, ok := rawdb.ReadScoreValue(s.db, score, key)
	if !ok {
		return nil, ErrNotFound
	}
	s.cacheSet(dbKey, v)
	return v, nil
}

// Commit implements Storage.
func (s *KVStorage) Commit(score common.Address, entries []Entry) error {
	batch := s.db.NewBatch()
	s.stage(batch, score, entries)
	return s.write(batch, len(entries))
}

// CommitAll implements AtomicStorage: every batch lands in a single write.
func (s *KVStorage) CommitAll(batches []*ScoreBatch) error {
	batch := s.db.NewBatch()
	n := 0
	for _, b := range batches {
		entries := b.Entries()
		s.stage(batch, b.Address(), entries)
		n += len(entries)
	}
	return s.write(batch, n)
}

func (s *KVStorage) stage(batch ethdb.Batch, score common.Address, entries []Entry) {
	for _, e := range entries {
		if e.Value == nil {
			rawdb.DeleteScoreValue(batch, score, e.Key)
		} else {
			rawdb.WriteScoreValue(batch, score, e.Key, e.Value)
		}
	}
}

func (s *KVStorage) write(batch ethdb.Batch, n int) error {
	if err := batch.Write(); err != nil {
		return err
	}
	// Only refresh the cache and filter once the write is durable.
	if err := batch.Replay(&cacheUpdater{s}); err != nil {
		return err
	}
	storageCommitMeter.Mark(int64(n))
	return nil
}

func (s *KVStorage) cacheSet(dbKey, v []byte) {
	if s.cache == nil {
		return
	}
	if len(dbKey)+len(v) < 64*1024 {
		s.cache.Set(dbKey, v)
	}
}

// cacheUpdater mirrors a written batch into the cache and filter.
type cacheUpdater struct{ s *KVStorage }

func (u *cacheUpdater) Put(key []byte, value []byte) error {
	if u.s.filter != nil {
		u.s.lock.Lock()
		u.s.filter.Add(storageHasher(key))
		u.s.lock.Unlock()
	}
	u.s.cacheSet(key, value)
	return nil
}

func (u *cacheUpdater) Delete(key []byte) error {
	if u.s.cache != nil {
		u.s.cache.Del(key)
	}
	return nil
}

// Database resolves score reads through the pending batches of a call tree
// down to committed storage, and commits those batches.
type Database struct {
	storage Storage
}

// NewDatabase creates a database over storage.
func NewDatabase(storage Storage) *Database {
	return &Database{storage: storage}
}

// Storage returns the underlying engine.
func (d *Database) Storage() Storage { return d.storage }

// Get returns the value of key as seen by the call tree owning tb. A
// pending deletion hides the committed value.
func (d *Database) Get(tb *TransactionBatch, score, key common.Address) ([]byte, error) {
	if tb != nil {
		if v, ok := tb.Get(score, key); ok {
			if v == nil {
				return nil, ErrNotFound
			}
			return v, nil
		}
		tb.recordRead(score, key)
	}
	return d.storage.Get(score, key)
}

// Commit applies tb to storage: one Commit per touched score in first-touch
// order, or a single atomic write when the engine supports it.
func (d *Database) Commit(tb *TransactionBatch) error {
	batches := tb.Batches()
	if len(batches) == 0 {
		return nil
	}
	if atomic, ok := d.storage.(AtomicStorage); ok {
		return atomic.CommitAll(batches)
	}
	for _, b := range batches {
		if err := d.storage.Commit(b.Address(), b.Entries()); err != nil {
			return fmt.Errorf("commit %v: %w", b.Address(), err)
		}
	}
	return nil
}
