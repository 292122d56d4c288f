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

package kvstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
)

// VarDB is a single typed storage variable.
type VarDB struct {
	db   DB
	slot common.Address
	typ  types.ValueType
}

// NewVarDB binds the variable called name in db.
func NewVarDB(db DB, name string, typ types.ValueType) *VarDB {
	return &VarDB{db: db, slot: slotForRecord(varTag, name, nil), typ: typ}
}

// Slot returns the storage key backing the variable.
func (v *VarDB) Slot() common.Address { return v.slot }

// Get returns the stored value, or the zero value of the variable's type
// when nothing is stored.
func (v *VarDB) Get() (types.Value, error) {
	raw, err := v.db.Get(v.slot)
	if errors.Is(err, state.ErrNotFound) {
		return zeroValue(v.typ)
	}
	if err != nil {
		return nil, err
	}
	return decodeValue(v.typ, raw)
}

// Set stores x, which must be of the variable's type.
func (v *VarDB) Set(x types.Value) error {
	if x == nil || x.Type() != v.typ {
		return fmt.Errorf("%w: %v stored into %v variable", types.ErrValueType, typeOf(x), v.typ)
	}
	raw, err := encodeValue(x)
	if err != nil {
		return err
	}
	return v.db.Set(v.slot, raw)
}

// Remove deletes the variable.
func (v *VarDB) Remove() error { return v.db.Delete(v.slot) }

// BigInt is Get for integer variables.
func (v *VarDB) BigInt() (*big.Int, error) {
	x, err := v.Get()
	if err != nil {
		return nil, err
	}
	i, ok := x.(types.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %v variable read as int", types.ErrValueType, v.typ)
	}
	return i.Big(), nil
}

// DictDB is a typed mapping. Keys may be any value type; nested mappings
// are reached through Sub.
type DictDB struct {
	db   DB
	name string
	typ  types.ValueType
}

// NewDictDB binds the mapping called name in db.
func NewDictDB(db DB, name string, typ types.ValueType) *DictDB {
	return &DictDB{db: db, name: name, typ: typ}
}

// At returns the entry of key.
func (d *DictDB) At(key types.Value) *VarDB {
	return &VarDB{db: d.db, slot: slotForRecord(dictTag, d.name, keyBytes(key)), typ: d.typ}
}

func (d *DictDB) Get(key types.Value) (types.Value, error) { return d.At(key).Get() }
func (d *DictDB) Set(key, x types.Value) error             { return d.At(key).Set(x) }
func (d *DictDB) Remove(key types.Value) error             { return d.At(key).Remove() }

// Sub returns the mapping nested under key.
func (d *DictDB) Sub(key types.Value) *DictDB {
	base := slotForRecord(dictTag, d.name, keyBytes(key))
	return &DictDB{db: d.db, name: string(base[:]), typ: d.typ}
}

// ArrayDB is a typed, append-only indexed list with pop.
type ArrayDB struct {
	db   DB
	base common.Address
	typ  types.ValueType
}

// NewArrayDB binds the array called name in db.
func NewArrayDB(db DB, name string, typ types.ValueType) *ArrayDB {
	return &ArrayDB{db: db, base: slotForRecord(arrayTag, name, nil), typ: typ}
}

// Len returns the number of elements.
func (a *ArrayDB) Len() (uint64, error) {
	raw, err := a.db.Get(metaSlot(a.base, "length"))
	if errors.Is(err, state.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: array length %x", ErrInvalidEncoding, raw)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (a *ArrayDB) setLen(n uint64) error {
	if n == 0 {
		return a.db.Delete(metaSlot(a.base, "length"))
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return a.db.Set(metaSlot(a.base, "length"), buf[:])
}

func (a *ArrayDB) element(i uint64) *VarDB {
	return &VarDB{db: a.db, slot: elementSlot(a.base, i), typ: a.typ}
}

// Get returns element i.
func (a *ArrayDB) Get(i uint64) (types.Value, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	if i >= n {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return a.element(i).Get()
}

// Set overwrites element i.
func (a *ArrayDB) Set(i uint64, x types.Value) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return a.element(i).Set(x)
}

// Push appends x.
func (a *ArrayDB) Push(x types.Value) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.element(n).Set(x); err != nil {
		return err
	}
	return a.setLen(n + 1)
}

// Pop removes and returns the last element.
func (a *ArrayDB) Pop() (types.Value, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrEmptyArray
	}
	last := a.element(n - 1)
	x, err := last.Get()
	if err != nil {
		return nil, err
	}
	if err := last.Remove(); err != nil {
		return nil, err
	}
	return x, a.setLen(n - 1)
}

func typeOf(x types.Value) types.ValueType {
	if x == nil {
		return types.TypeInvalid
	}
	return x.Type()
}
