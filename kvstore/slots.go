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

	"github.com/tos-network/gscore/common"
)

const (
	varTag   = "gscore.kv.var"
	dictTag  = "gscore.kv.dict"
	arrayTag = "gscore.kv.array"
)

// slotForRecord derives the storage key of a record. Every field is length
// prefixed so distinct (name, key) pairs never share a preimage.
func slotForRecord(tag, name string, key []byte) common.Address {
	var l [8]byte
	buf := make([]byte, 0, len(tag)+8+len(name)+8+len(key))
	buf = append(buf, tag...)
	binary.BigEndian.PutUint64(l[:], uint64(len(name)))
	buf = append(buf, l[:]...)
	buf = append(buf, name...)
	binary.BigEndian.PutUint64(l[:], uint64(len(key)))
	buf = append(buf, l[:]...)
	buf = append(buf, key...)
	return common.AddressFromData(common.KindEOA, buf)
}

func metaSlot(base common.Address, field string) common.Address {
	buf := make([]byte, 0, common.AddressLength+1+len(field))
	buf = append(buf, base[:]...)
	buf = append(buf, 0x00)
	buf = append(buf, field...)
	return common.AddressFromData(common.KindEOA, buf)
}

func elementSlot(base common.Address, index uint64) common.Address {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	buf := make([]byte, 0, common.AddressLength+1+len("element")+8)
	buf = append(buf, base[:]...)
	buf = append(buf, 0x00)
	buf = append(buf, "element"...)
	buf = append(buf, idx[:]...)
	return common.AddressFromData(common.KindEOA, buf)
}
