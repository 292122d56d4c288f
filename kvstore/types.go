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

// Package kvstore implements typed score storage containers over the flat
// address-keyed storage of a score.
package kvstore

import (
	"errors"

	"github.com/tos-network/gscore/common"
)

var (
	ErrInvalidName      = errors.New("kvstore: name must not be empty")
	ErrIndexOutOfRange  = errors.New("kvstore: index out of range")
	ErrInvalidEncoding  = errors.New("kvstore: invalid stored value")
	ErrEmptyArray       = errors.New("kvstore: pop from empty array")
	ErrUnsupportedValue = errors.New("kvstore: unsupported value type")
)

// DB is the storage of one score. Get returns state.ErrNotFound for keys
// that were never written or have been deleted.
type DB interface {
	Get(key common.Address) ([]byte, error)
	Set(key common.Address, value []byte) error
	Delete(key common.Address) error
}
