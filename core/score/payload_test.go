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

package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

func TestDecodePayloads(t *testing.T) {
	data, err := MakeCall("transfer", map[string]string{"_to": owner.String(), "_value": "0x10"})
	require.NoError(t, err)
	call, err := DecodeCall(data)
	require.NoError(t, err)
	assert.Equal(t, "transfer", call.Method)
	assert.Equal(t, "0x10", call.Params["_value"])

	data, err = MakeDeploy(params.ContentTypeBuiltin, []byte("stub"), nil)
	require.NoError(t, err)
	deploy, err := DecodeDeploy(data)
	require.NoError(t, err)
	assert.Equal(t, params.ContentTypeBuiltin, deploy.ContentType)
	assert.Equal(t, []byte("stub"), []byte(deploy.Content))

	for _, bad := range []string{"", "{", `{"params":{}}`, `[1,2]`} {
		if _, err := DecodeCall([]byte(bad)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("call %q: expected ErrInvalidPayload, got %v", bad, err)
		}
	}
	for _, bad := range []string{"", `{"contentType":"x"}`, `{"content":"0x01"}`, `{"contentType":"x","content":"zz"}`} {
		if _, err := DecodeDeploy([]byte(bad)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("deploy %q: expected ErrInvalidPayload, got %v", bad, err)
		}
	}
}

func TestConvertParams(t *testing.T) {
	ps := []vm.Param{
		{Name: "to", Type: types.TypeAddress},
		{Name: "value", Type: types.TypeInt},
		{Name: "memo", Type: types.TypeStr},
		{Name: "flag", Type: types.TypeBool},
		{Name: "data", Type: types.TypeBytes},
	}
	vals, err := ConvertParams(ps, map[string]string{
		"to":    owner.String(),
		"value": "-0x10",
		"memo":  "hi",
		"flag":  "0x1",
		"data":  "0xcafe",
	})
	require.NoError(t, err)
	require.Len(t, vals, 5)
	assert.Equal(t, owner, vals[0].(types.Addr).Address())
	assert.Equal(t, int64(-16), vals[1].(types.Int).Big().Int64())
	assert.Equal(t, types.Str("hi"), vals[2])
	assert.Equal(t, types.Bool(true), vals[3])
	assert.Equal(t, types.Bytes{0xca, 0xfe}, vals[4])

	tests := map[string]map[string]string{
		"missing":  {"to": owner.String()},
		"unknown":  {"to": owner.String(), "value": "0x1", "memo": "", "flag": "0x0", "data": "0x", "extra": "1"},
		"bad addr": {"to": "hx12", "value": "0x1", "memo": "", "flag": "0x0", "data": "0x"},
		"bad int":  {"to": owner.String(), "value": "ten", "memo": "", "flag": "0x0", "data": "0x"},
	}
	for name, raw := range tests {
		if _, err := ConvertParams(ps, raw); !errors.Is(err, vm.ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}
	vals, err = ConvertParams(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestMethodValidate(t *testing.T) {
	intParam := []vm.Param{{Name: "n", Type: types.TypeInt}}
	tests := []struct {
		name string
		m    Method
		ok   bool
	}{
		{"plain", Method{Name: "m", Fn: noop}, true},
		{"payable fallback", Method{Name: FallbackMethod, Payable: true, Fn: noop}, true},
		{"unnamed", Method{Fn: noop}, false},
		{"no body", Method{Name: "m"}, false},
		{"readonly payable", Method{Name: "m", ReadOnly: true, Payable: true, Fn: noop}, false},
		{"fallback params", Method{Name: FallbackMethod, Payable: true, Params: intParam, Fn: noop}, false},
		{"fallback not payable", Method{Name: FallbackMethod, Fn: noop}, false},
		{"duplicate param", Method{Name: "m", Params: append(intParam, intParam...), Fn: noop}, false},
		{"invalid param type", Method{Name: "m", Params: []vm.Param{{Name: "x", Type: types.TypeInvalid}}, Fn: noop}, false},
	}
	for _, tt := range tests {
		err := tt.m.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidScore) {
			t.Errorf("%s: expected ErrInvalidScore, got %v", tt.name, err)
		}
	}
}

func TestBuiltinLoader(t *testing.T) {
	l := NewBuiltinLoader()
	l.Register("stub", newStub)
	l.Register("broken", newBroken)
	assert.Equal(t, []string{"broken", "stub"}, l.Names())

	s, err := l.Load(params.ContentTypeBuiltin, []byte("stub"))
	require.NoError(t, err)
	assert.Len(t, s.Methods(), 2)

	if _, err := l.Load("application/zip", []byte("stub")); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
	if _, err := l.Load(params.ContentTypeBuiltin, []byte("missing")); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
}
