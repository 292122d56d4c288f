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

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
)

// ReadScoreValue retrieves a committed storage value of score.
func ReadScoreValue(db ethdb.KeyValueReader, score, key common.Address) ([]byte, bool) {
	k := scoreStorageKey(score, key)
	if ok, _ := db.Has(k); !ok {
		return nil, false
	}
	data, err := db.Get(k)
	if err != nil {
		return nil, false
	}
	return data, true
}

// HasScoreValue checks if score has a committed value under key.
func HasScoreValue(db ethdb.KeyValueReader, score, key common.Address) bool {
	ok, _ := db.Has(scoreStorageKey(score, key))
	return ok
}

// WriteScoreValue stores a storage value of score.
func WriteScoreValue(db ethdb.KeyValueWriter, score, key common.Address, value []byte) {
	if err := db.Put(scoreStorageKey(score, key), value); err != nil {
		log.Crit("Failed to store score value", "err", err)
	}
}

// DeleteScoreValue removes a storage value of score.
func DeleteScoreValue(db ethdb.KeyValueWriter, score, key common.Address) {
	if err := db.Delete(scoreStorageKey(score, key)); err != nil {
		log.Crit("Failed to delete score value", "err", err)
	}
}

// IterateScoreStorage calls fn for every committed entry of score in key
// order until fn returns false.
func IterateScoreStorage(db ethdb.Iteratee, score common.Address, fn func(key common.Address, value []byte) bool) error {
	it := NewKeyLengthIterator(db.NewIterator(scoreStoragePrefixOf(score), nil), scoreStorageKeyLength)
	defer it.Release()
	for it.Next() {
		raw := it.Key()[len(scoreStoragePrefix)+common.AddressLength:]
		key, err := common.BytesToAddress(raw)
		if err != nil {
			continue
		}
		if !fn(key, common.CopyBytes(it.Value())) {
			break
		}
	}
	return it.Error()
}

// IterateAllScoreKeys calls fn with the database key of every committed
// storage entry. It is used to warm lookup filters on startup.
func IterateAllScoreKeys(db ethdb.Iteratee, fn func(dbKey []byte)) error {
	it := NewKeyLengthIterator(db.NewIterator(scoreStoragePrefix, nil), scoreStorageKeyLength)
	defer it.Release()
	for it.Next() {
		fn(it.Key())
	}
	return it.Error()
}

// ReadLastHeight retrieves the height of the last applied block.
func ReadLastHeight(db ethdb.KeyValueReader) (uint64, bool) {
	data, err := db.Get(lastHeightKey)
	if err != nil || len(data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(data), true
}

// WriteLastHeight stores the height of the last applied block.
func WriteLastHeight(db ethdb.KeyValueWriter, height uint64) {
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], height)
	if err := db.Put(lastHeightKey, enc[:]); err != nil {
		log.Crit("Failed to store last height", "err", err)
	}
}
