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

package common

import (
	"math/big"
	"strings"
	"unicode"
)

// IntToBytes encodes v as the shortest signed big-endian two's complement
// integer. Zero encodes as a single zero byte, 128 as 0x0080 and -128 as 0x80.
func IntToBytes(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{0}
	}
	if v.Sign() > 0 {
		return v.FillBytes(make([]byte, (v.BitLen()+8)/8))
	}
	// -2^(8k-1) fits in k bytes, so size negatives by |v+1|.
	n := (new(big.Int).Add(v, big.NewInt(1)).BitLen() + 8) / 8
	mod := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
	return new(big.Int).Add(mod, v).FillBytes(make([]byte, n))
}

// BytesToInt decodes the IntToBytes form.
func BytesToInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return v
}

// BoolToBytes encodes a boolean the way IntToBytes encodes 0 and 1.
func BoolToBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// ToCamelCase converts snake_case keys to camelCase: "score_address"
// becomes "scoreAddress". Keys without underscores are returned unchanged.
func ToCamelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var sb strings.Builder
	sb.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			sb.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	return sb.String()
}

// Identity is the key transform that leaves names untouched.
func Identity(s string) string { return s }
