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

package vm

import (
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/params"
)

// newTestContext builds a writable INVOKE frame with a generous budget.
// Options override individual fields.
func newTestContext(opts ...func(*Context)) *Context {
	origin := common.AddressFromData(common.KindEOA, []byte("origin"))
	ctx := &Context{
		Type:     Invoke,
		FuncType: Writable,
		Tx:       &types.Transaction{Hash: common.Sha3Hash([]byte("tx")), From: origin},
		Msg:      types.NewMessage(origin, big.NewInt(0)),
		Block:    &types.Block{Height: 1, Hash: common.Sha3Hash([]byte("block"))},
		Steps:    NewStepCounter(1_000_000, params.DefaultStepCosts),
		Logs:     NewLogBuffer(),
		Traces:   new(TraceBuffer),
		Batch:    state.NewTransactionBatch(),
		Current:  common.AddressFromData(common.KindContract, []byte("address")),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

func withFuncType(ft FuncType) func(*Context) {
	return func(c *Context) { c.FuncType = ft }
}

func withSteps(limit uint64) func(*Context) {
	return func(c *Context) { c.Steps = NewStepCounter(limit, params.DefaultStepCosts) }
}

func param(name string, t types.ValueType) Param { return Param{Name: name, Type: t} }

var (
	nameAddrAge = []Param{
		param("name", types.TypeStr),
		param("address", types.TypeAddress),
		param("age", types.TypeInt),
	}
	testEvents = []EventSchema{
		{Name: "ZeroIndexEvent", Params: nameAddrAge, Indexed: 0},
		{Name: "OneIndexEvent", Params: nameAddrAge, Indexed: 1},
		{Name: "AddressIndexEvent", Params: []Param{param("address", types.TypeAddress)}, Indexed: 1},
		{Name: "BoolIndexEvent", Params: []Param{param("yes_no", types.TypeBool)}, Indexed: 1},
		{Name: "IntIndexEvent", Params: []Param{param("amount", types.TypeInt)}, Indexed: 1},
		{Name: "BytesIndexEvent", Params: []Param{param("data", types.TypeBytes)}, Indexed: 1},
		{Name: "MixedEvent", Params: []Param{
			param("i_data", types.TypeBytes),
			param("address", types.TypeAddress),
			param("amount", types.TypeInt),
			param("data", types.TypeBytes),
			param("text", types.TypeStr),
		}, Indexed: 2},
		{Name: "FourIndexEvent", Params: []Param{
			param("name", types.TypeStr),
			param("address", types.TypeAddress),
			param("age", types.TypeInt),
			param("phone_number", types.TypeStr),
		}, Indexed: 4},
	}
)

func mustEventRegistry() *EventRegistry {
	r, err := NewEventRegistry(testEvents...)
	if err != nil {
		panic(err)
	}
	return r
}

func bloomKey(slot byte, data []byte) []byte {
	return append([]byte{slot}, data...)
}
