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
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/types"
)

// encodeValue returns the stored form of v. Integers and booleans use the
// same signed big-endian form as bloom index keys; addresses keep their kind
// byte.
func encodeValue(v types.Value) ([]byte, error) {
	switch x := v.(type) {
	case types.Int:
		return common.IntToBytes(x.Big()), nil
	case types.Bool:
		return common.BoolToBytes(bool(x)), nil
	case types.Str:
		return []byte(x), nil
	case types.Bytes:
		return common.CopyBytes(x), nil
	case types.Addr:
		return common.CopyBytes(x.Address().Bytes()), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func decodeValue(t types.ValueType, raw []byte) (types.Value, error) {
	switch t {
	case types.TypeInt:
		return types.BigValue(common.BytesToInt(raw)), nil
	case types.TypeBool:
		if len(raw) != 1 || raw[0] > 1 {
			return nil, fmt.Errorf("%w: bool %x", ErrInvalidEncoding, raw)
		}
		return types.BoolValue(raw[0] == 1), nil
	case types.TypeStr:
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: invalid utf-8", ErrInvalidEncoding)
		}
		return types.StrValue(string(raw)), nil
	case types.TypeBytes:
		return types.BytesValue(raw), nil
	case types.TypeAddress:
		addr, err := common.BytesToAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return types.AddressValue(addr), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, t)
}

// zeroValue is what a container yields for an absent key.
func zeroValue(t types.ValueType) (types.Value, error) {
	switch t {
	case types.TypeInt:
		return types.BigValue(new(big.Int)), nil
	case types.TypeBool:
		return types.BoolValue(false), nil
	case types.TypeStr:
		return types.StrValue(""), nil
	case types.TypeBytes:
		return types.BytesValue(nil), nil
	case types.TypeAddress:
		return types.AddressValue(common.Address{}), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, t)
}

// keyBytes serializes a dictionary key. Addresses keep their kind byte so
// an EOA and a contract sharing a body stay distinct keys.
func keyBytes(key types.Value) []byte {
	if a, ok := key.(types.Addr); ok {
		return a.Address().Bytes()
	}
	return key.IndexBytes()
}
