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
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gscore/common"
)

// EventLog is one event emitted by a score. Indexed[0] holds the event
// signature; the remaining indexed values and Data follow the declared
// parameter order.
type EventLog struct {
	ScoreAddress common.Address
	Indexed      []Value
	Data         []Value
}

// Signature returns the event signature or "" for a malformed log.
func (l *EventLog) Signature() string {
	if len(l.Indexed) == 0 {
		return ""
	}
	if s, ok := l.Indexed[0].(Str); ok {
		return string(s)
	}
	return ""
}

// ToMap converts the log to its external mapping. keyFn renames the
// snake_case keys, e.g. common.ToCamelCase.
func (l *EventLog) ToMap(keyFn func(string) string) map[string]interface{} {
	if keyFn == nil {
		keyFn = common.Identity
	}
	return map[string]interface{}{
		keyFn("score_address"): l.ScoreAddress.String(),
		keyFn("indexed"):       valuesJSON(l.Indexed),
		keyFn("data"):          valuesJSON(l.Data),
	}
}

// Equal reports whether two logs carry the same address and values.
func (l *EventLog) Equal(o *EventLog) bool {
	if l.ScoreAddress != o.ScoreAddress || len(l.Indexed) != len(o.Indexed) || len(l.Data) != len(o.Data) {
		return false
	}
	for i := range l.Indexed {
		if !EqualValues(l.Indexed[i], o.Indexed[i]) {
			return false
		}
	}
	for i := range l.Data {
		if !EqualValues(l.Data[i], o.Data[i]) {
			return false
		}
	}
	return true
}

type storedEventLog struct {
	ScoreAddress []byte
	Indexed      []storedValue
	Data         []storedValue
}

// EncodeRLP implements rlp.Encoder.
func (l *EventLog) EncodeRLP(w io.Writer) error {
	enc := storedEventLog{
		ScoreAddress: l.ScoreAddress.Bytes(),
		Indexed:      make([]storedValue, len(l.Indexed)),
		Data:         make([]storedValue, len(l.Data)),
	}
	for i, v := range l.Indexed {
		enc.Indexed[i] = toStored(v)
	}
	for i, v := range l.Data {
		enc.Data[i] = toStored(v)
	}
	return rlp.Encode(w, &enc)
}

// DecodeRLP implements rlp.Decoder.
func (l *EventLog) DecodeRLP(s *rlp.Stream) error {
	var dec storedEventLog
	if err := s.Decode(&dec); err != nil {
		return err
	}
	addr, err := common.BytesToAddress(dec.ScoreAddress)
	if err != nil {
		return err
	}
	indexed, err := decodeStoredValues(dec.Indexed)
	if err != nil {
		return err
	}
	data, err := decodeStoredValues(dec.Data)
	if err != nil {
		return err
	}
	l.ScoreAddress, l.Indexed, l.Data = addr, indexed, data
	return nil
}

func decodeStoredValues(in []storedValue) ([]Value, error) {
	out := make([]Value, len(in))
	for i, sv := range in {
		v, err := fromStored(sv)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
