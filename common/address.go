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
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// AddressBodyLength is the length of an address without its kind tag.
	AddressBodyLength = 20
	// AddressLength is the full length of an address: one kind byte plus the body.
	AddressLength = 1 + AddressBodyLength
)

// AddressKind tags an address as an externally-owned account or a contract.
type AddressKind byte

const (
	KindEOA      AddressKind = 0x00
	KindContract AddressKind = 0x01
)

// Prefix returns the two letter textual prefix of the kind.
func (k AddressKind) Prefix() string {
	if k == KindContract {
		return "cx"
	}
	return "hx"
}

func (k AddressKind) String() string {
	switch k {
	case KindEOA:
		return "EOA"
	case KindContract:
		return "CONTRACT"
	default:
		return fmt.Sprintf("AddressKind(%d)", byte(k))
	}
}

var (
	ErrAddressLength = errors.New("address: invalid length")
	ErrAddressPrefix = errors.New("address: invalid prefix")
	ErrAddressKind   = errors.New("address: invalid kind")
)

// Address identifies an account. Byte 0 holds the kind, bytes 1..20 the body.
// The zero value is the all-zero EOA address.
type Address [AddressLength]byte

// NewAddress builds an address from a kind and a 20 byte body. Longer bodies
// are cropped from the left, shorter ones left-padded with zeros.
func NewAddress(kind AddressKind, body []byte) Address {
	var a Address
	a[0] = byte(kind)
	if len(body) > AddressBodyLength {
		body = body[len(body)-AddressBodyLength:]
	}
	copy(a[AddressLength-len(body):], body)
	return a
}

// AddressFromData derives an address of the given kind from the last 20
// bytes of the SHA3-256 digest of data.
func AddressFromData(kind AddressKind, data []byte) Address {
	digest := sha3.Sum256(data)
	return NewAddress(kind, digest[len(digest)-AddressBodyLength:])
}

// BytesToAddress decodes the 21 byte binary form of an address.
func BytesToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: have %d want %d", ErrAddressLength, len(b), AddressLength)
	}
	if AddressKind(b[0]) != KindEOA && AddressKind(b[0]) != KindContract {
		return a, fmt.Errorf("%w: %#x", ErrAddressKind, b[0])
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress parses the "hx…" / "cx…" textual form.
func ParseAddress(s string) (Address, error) {
	var a Address
	if len(s) != 2+2*AddressBodyLength {
		return a, fmt.Errorf("%w: %q", ErrAddressLength, s)
	}
	var kind AddressKind
	switch strings.ToLower(s[:2]) {
	case "hx":
		kind = KindEOA
	case "cx":
		kind = KindContract
	default:
		return a, fmt.Errorf("%w: %q", ErrAddressPrefix, s)
	}
	body, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("address: %v", err)
	}
	return NewAddress(kind, body), nil
}

// MustParseAddress is ParseAddress that panics on failure. Meant for tests
// and package level constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsAddress reports whether s is a well formed textual address.
func IsAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

func (a Address) Kind() AddressKind { return AddressKind(a[0]) }

// IsContract reports whether a is a contract address.
func (a Address) IsContract() bool { return a.Kind() == KindContract }

// Body returns a copy of the 20 byte body.
func (a Address) Body() []byte {
	b := make([]byte, AddressBodyLength)
	copy(b, a[1:])
	return b
}

// Bytes returns the 21 byte binary form.
func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string {
	return a.Kind().Prefix() + hex.EncodeToString(a[1:])
}

// Cmp orders addresses by their binary form.
func (a Address) Cmp(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Format implements fmt.Formatter so %v, %s and %x print sensibly.
func (a Address) Format(s fmt.State, c rune) {
	switch c {
	case 'x':
		fmt.Fprint(s, hex.EncodeToString(a[:]))
	default:
		fmt.Fprint(s, a.String())
	}
}
