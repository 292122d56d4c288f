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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// ErrCorruptedDatabase is returned when the data directory cannot be opened
// because LevelDB found corrupted files in it.
var ErrCorruptedDatabase = errors.New("corrupted database")

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() ethdb.KeyValueStore {
	return memorydb.New()
}

// NewLevelDBDatabase creates a persistent key-value database backed by
// LevelDB at file.
func NewLevelDBDatabase(file string, cache int, handles int, namespace string, readonly bool) (ethdb.KeyValueStore, error) {
	db, err := leveldb.New(file, cache, handles, namespace, readonly)
	if lerrors.IsCorrupted(err) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedDatabase, file, err)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}
