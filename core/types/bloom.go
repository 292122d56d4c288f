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

package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/gscore/params"
	"golang.org/x/crypto/sha3"
)

// Bloom represents a 2048 bit bloom filter over event log index keys.
type Bloom [params.BloomByteLength]byte

// BytesToBloom converts a byte slice to a bloom filter. It panics if b is
// larger than the bloom.
func BytesToBloom(b []byte) Bloom {
	var bloom Bloom
	bloom.SetBytes(b)
	return bloom
}

// SetBytes sets the content of b to the given bytes, right aligned.
// It panics if d is not of suitable size.
func (b *Bloom) SetBytes(d []byte) {
	if len(b) < len(d) {
		panic(fmt.Sprintf("bloom bytes too big %d %d", len(b), len(d)))
	}
	copy(b[params.BloomByteLength-len(d):], d)
}

// Add adds d to the filter. Future calls of Contains(d) will return true.
func (b *Bloom) Add(d []byte) {
	b.add(d, make([]byte, 6))
}

// add is internal version of Add, which takes a scratch buffer for reuse.
func (b *Bloom) add(d []byte, buf []byte) {
	i1, v1, i2, v2, i3, v3 := bloomValues(d, buf)
	b[i1] |= v1
	b[i2] |= v2
	b[i3] |= v3
}

// Contains reports whether d may have been added. False positives are
// possible, false negatives are not.
func (b Bloom) Contains(d []byte) bool {
	i1, v1, i2, v2, i3, v3 := bloomValues(d, make([]byte, 6))
	return v1 == v1&b[i1] &&
		v2 == v2&b[i2] &&
		v3 == v3&b[i3]
}

// Or folds other into b.
func (b *Bloom) Or(other Bloom) {
	for i := range b {
		b[i] |= other[i]
	}
}

// IsZero reports whether nothing was ever added.
func (b Bloom) IsZero() bool { return b == Bloom{} }

// Big converts b to a big integer.
// Note: Converting a bloom filter to a big.Int and then calling GetBytes
// does not return the same bytes, since big.Int will trim leading zeroes
func (b Bloom) Big() *big.Int {
	return new(big.Int).SetBytes(b[:])
}

// Bytes returns the backing byte slice of the bloom
func (b Bloom) Bytes() []byte {
	return b[:]
}

// MarshalText encodes b as a hex string with 0x prefix.
func (b Bloom) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

// UnmarshalText b as a hex string with 0x prefix.
func (b *Bloom) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Bloom", input, b[:])
}

// bloomValues returns the bytes (index-value pairs) to set for the given
// data. The three bit positions are the first three big-endian 16 bit words
// of SHA3-256(data), each reduced to 11 bits.
func bloomValues(data []byte, hashbuf []byte) (uint, byte, uint, byte, uint, byte) {
	sha := sha3.New256()
	sha.Write(data)
	hashbuf = sha.Sum(hashbuf[:0])
	// The actual bits to flip
	v1 := byte(1 << (hashbuf[1] & 0x7))
	v2 := byte(1 << (hashbuf[3] & 0x7))
	v3 := byte(1 << (hashbuf[5] & 0x7))
	// The indices for the bytes to OR in
	i1 := params.BloomByteLength - uint((uint16(hashbuf[0])<<8|uint16(hashbuf[1]))&2047)>>3 - 1
	i2 := params.BloomByteLength - uint((uint16(hashbuf[2])<<8|uint16(hashbuf[3]))&2047)>>3 - 1
	i3 := params.BloomByteLength - uint((uint16(hashbuf[4])<<8|uint16(hashbuf[5]))&2047)>>3 - 1

	return i1, v1, i2, v2, i3, v3
}

// IndexKey builds the bloom key of an indexed event slot: a single byte
// holding the slot position followed by the value's index encoding.
func IndexKey(slot int, v Value) []byte {
	enc := v.IndexBytes()
	key := make([]byte, 1+len(enc))
	key[0] = byte(slot)
	copy(key[1:], enc)
	return key
}

// CreateBloom folds the index keys of every log into a fresh filter.
func CreateBloom(logs []*EventLog) Bloom {
	var (
		bin Bloom
		buf = make([]byte, 6)
	)
	for _, l := range logs {
		for i, v := range l.Indexed {
			bin.add(IndexKey(i, v), buf)
		}
	}
	return bin
}
