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
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/gscore/common"
)

// ValueType enumerates the primitive types a score may pass across its
// external boundary.
type ValueType uint8

const (
	TypeInvalid ValueType = iota
	TypeStr
	TypeAddress
	TypeInt
	TypeBool
	TypeBytes
)

var valueTypeNames = map[ValueType]string{
	TypeStr:     "str",
	TypeAddress: "Address",
	TypeInt:     "int",
	TypeBool:    "bool",
	TypeBytes:   "bytes",
}

// String returns the canonical name used in event signatures.
func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// ParseValueType resolves a canonical type name.
func ParseValueType(s string) (ValueType, error) {
	for t, name := range valueTypeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("%w: unknown type %q", ErrValueType, s)
}

var (
	ErrValueType     = errors.New("value type mismatch")
	ErrValueEncoding = errors.New("invalid value encoding")
)

// Value is a typed primitive carried by call arguments, return values and
// event logs.
type Value interface {
	Type() ValueType
	// IndexBytes is the encoding folded into the logs bloom.
	IndexBytes() []byte
	// JSON is the external representation handed to clients.
	JSON() interface{}
	String() string
}

type (
	Str   string
	Bool  bool
	Bytes []byte
	Addr  common.Address
	Int   struct{ v *big.Int }
)

func StrValue(s string) Value             { return Str(s) }
func BoolValue(b bool) Value              { return Bool(b) }
func BytesValue(b []byte) Value           { return Bytes(common.CopyBytes(b)) }
func AddressValue(a common.Address) Value { return Addr(a) }
func IntValue(i int64) Value              { return Int{v: big.NewInt(i)} }
func BigValue(i *big.Int) Value           { return Int{v: new(big.Int).Set(i)} }

func (Str) Type() ValueType      { return TypeStr }
func (s Str) IndexBytes() []byte { return []byte(s) }
func (s Str) JSON() interface{}  { return string(s) }
func (s Str) String() string     { return string(s) }

func (Bool) Type() ValueType { return TypeBool }
func (b Bool) IndexBytes() []byte {
	return common.BoolToBytes(bool(b))
}
func (b Bool) JSON() interface{} {
	if b {
		return "0x1"
	}
	return "0x0"
}
func (b Bool) String() string { return fmt.Sprint(bool(b)) }

func (Bytes) Type() ValueType      { return TypeBytes }
func (b Bytes) IndexBytes() []byte { return common.CopyBytes(b) }
func (b Bytes) JSON() interface{}  { return hexutil.Encode(b) }
func (b Bytes) String() string     { return hexutil.Encode(b) }

func (Addr) Type() ValueType { return TypeAddress }

// IndexBytes of an address is its 20 byte body.
func (a Addr) IndexBytes() []byte      { return common.Address(a).Body() }
func (a Addr) JSON() interface{}       { return common.Address(a).String() }
func (a Addr) String() string          { return common.Address(a).String() }
func (a Addr) Address() common.Address { return common.Address(a) }

func (Int) Type() ValueType { return TypeInt }
func (i Int) IndexBytes() []byte {
	return common.IntToBytes(i.v)
}
func (i Int) JSON() interface{} { return encodeInt(i.v) }
func (i Int) String() string {
	if i.v == nil {
		return "0"
	}
	return i.v.String()
}

// Big returns a copy of the integer.
func (i Int) Big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.v)
}

func encodeInt(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	if v.Sign() < 0 {
		return "-0x" + new(big.Int).Neg(v).Text(16)
	}
	return "0x" + v.Text(16)
}

// EqualValues reports whether a and b have the same type and content.
func EqualValues(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	if a.Type() == TypeAddress {
		return a.(Addr) == b.(Addr)
	}
	return bytes.Equal(a.IndexBytes(), b.IndexBytes())
}

// ValueOf wraps a native Go value. Values are passed through unchanged.
func ValueOf(x interface{}) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case string:
		return Str(v), nil
	case bool:
		return Bool(v), nil
	case []byte:
		return BytesValue(v), nil
	case common.Address:
		return Addr(v), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil integer", ErrValueType)
		}
		return BigValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case int32:
		return IntValue(int64(v)), nil
	case uint64:
		return Int{v: new(big.Int).SetUint64(v)}, nil
	case uint32:
		return IntValue(int64(v)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported Go type %T", ErrValueType, x)
	}
}

// ParseValue converts the external text form of a value to the given type.
// Integers and bytes are 0x-prefixed hex, booleans 0x0 or 0x1 and addresses
// use the hx/cx form.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case TypeStr:
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("%w: invalid utf-8 string", ErrValueEncoding)
		}
		return Str(s), nil
	case TypeAddress:
		a, err := common.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValueEncoding, err)
		}
		return Addr(a), nil
	case TypeInt:
		v, err := parseInt(s)
		if err != nil {
			return nil, err
		}
		return Int{v: v}, nil
	case TypeBool:
		switch s {
		case "0x1":
			return Bool(true), nil
		case "0x0":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("%w: invalid bool %q", ErrValueEncoding, s)
	case TypeBytes:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValueEncoding, err)
		}
		return Bytes(b), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrValueType, t)
	}
}

func parseInt(s string) (*big.Int, error) {
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	if !strings.HasPrefix(body, "0x") || len(body) == 2 {
		return nil, fmt.Errorf("%w: invalid integer %q", ErrValueEncoding, s)
	}
	v, ok := new(big.Int).SetString(body[2:], 16)
	if !ok {
		return nil, fmt.Errorf("%w: invalid integer %q", ErrValueEncoding, s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// Persisted form: a type tag followed by a compact payload. Addresses keep
// their kind byte here, unlike IndexBytes.
type storedValue struct {
	Type uint8
	Data []byte
}

func toStored(v Value) storedValue {
	sv := storedValue{Type: uint8(v.Type())}
	if a, ok := v.(Addr); ok {
		sv.Data = common.Address(a).Bytes()
	} else {
		sv.Data = v.IndexBytes()
	}
	return sv
}

func fromStored(sv storedValue) (Value, error) {
	switch ValueType(sv.Type) {
	case TypeStr:
		return Str(sv.Data), nil
	case TypeAddress:
		a, err := common.BytesToAddress(sv.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValueEncoding, err)
		}
		return Addr(a), nil
	case TypeInt:
		return Int{v: common.BytesToInt(sv.Data)}, nil
	case TypeBool:
		if len(sv.Data) != 1 || sv.Data[0] > 1 {
			return nil, fmt.Errorf("%w: bool payload %x", ErrValueEncoding, sv.Data)
		}
		return Bool(sv.Data[0] == 1), nil
	case TypeBytes:
		return Bytes(common.CopyBytes(sv.Data)), nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrValueEncoding, sv.Type)
	}
}

// EncodeValue returns the persisted byte form of v.
func EncodeValue(v Value) []byte {
	sv := toStored(v)
	out := make([]byte, 1+len(sv.Data))
	out[0] = sv.Type
	copy(out[1:], sv.Data)
	return out
}

// DecodeValue parses the EncodeValue form.
func DecodeValue(b []byte) (Value, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrValueEncoding)
	}
	return fromStored(storedValue{Type: b[0], Data: b[1:]})
}

func valuesJSON(vs []Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = v.JSON()
	}
	return out
}
