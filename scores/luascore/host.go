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

package luascore

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/kvstore"
	"github.com/tos-network/gscore/params"
	lua "github.com/yuin/gopher-lua"
)

// Integers within this bound are exchanged with Lua as numbers; larger ones
// as decimal strings.
const maxExactInt = 1 << 53

// callArgsMax bounds the positional arguments of tos.call.
const callArgsMax = 64

// call is the state of one invocation. The first host error raised inside
// the interpreter is kept so the frame fails with it rather than with the
// interpreter's rendering of it.
type call struct {
	L     *lua.LState
	host  score.Host
	score *Score
	err   error
}

// raise aborts the running script with err.
func (c *call) raise(err error) {
	if c.err == nil {
		c.err = err
	}
	c.L.RaiseError("%s", err.Error())
}

func (c *call) argError(n int, format string, args ...interface{}) {
	c.raise(fmt.Errorf("%w: argument #%d: %s", vm.ErrArgumentType, n, fmt.Sprintf(format, args...)))
}

// failure maps an interpreter error to the error the frame fails with.
func (c *call) failure(ctx context.Context, err error) error {
	switch {
	case c.err != nil:
		return c.err
	case ctx.Err() != nil:
		timeoutMeter.Mark(1)
		return fmt.Errorf("%w: %v", vm.ErrExecutionTimeout, ctx.Err())
	default:
		return fmt.Errorf("%w: %v", vm.ErrScore, err)
	}
}

// bind installs the tos module for the frame.
func (c *call) bind() {
	L, h := c.L, c.host
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get":      c.get,
		"set":      c.set,
		"delete":   c.delete,
		"dict_get": c.dictGet,
		"dict_set": c.dictSet,
		"emit":     c.emit,
		"call":     c.invoke,
		"transfer": c.transfer,
		"balance":  c.balance,
		"revert":   c.revert,
		"require":  c.require,
		"sha3":     c.sha3,
	})
	mod.RawSetString("address", lua.LString(h.Address().String()))
	mod.RawSetString("owner", lua.LString(h.Owner().String()))
	if msg := h.Msg(); msg != nil {
		mod.RawSetString("caller", lua.LString(msg.Sender.String()))
		mod.RawSetString("value", bigToLua(msg.Value))
	}
	if b := h.Block(); b != nil {
		block := L.NewTable()
		block.RawSetString("height", lua.LNumber(b.Height))
		block.RawSetString("timestamp", lua.LNumber(b.Timestamp))
		block.RawSetString("hash", lua.LString(b.Hash.Hex()))
		mod.RawSetString("block", block)
	}
	if tx := h.Tx(); tx != nil {
		t := L.NewTable()
		t.RawSetString("origin", lua.LString(tx.From.String()))
		t.RawSetString("hash", lua.LString(tx.Hash.Hex()))
		t.RawSetString("timestamp", lua.LNumber(tx.Timestamp))
		mod.RawSetString("tx", t)
	}
	L.SetGlobal("tos", mod)
}

// valueType reads an optional type name argument.
func (c *call) valueType(n int, def types.ValueType) types.ValueType {
	name, ok := c.L.Get(n).(lua.LString)
	if !ok {
		return def
	}
	t, err := types.ParseValueType(string(name))
	if err != nil {
		c.argError(n, "%v", err)
	}
	return t
}

// tos.get(key [, type]) returns the stored variable, the type's zero value
// when unset.
func (c *call) get(L *lua.LState) int {
	key := L.CheckString(1)
	v, err := kvstore.NewVarDB(c.host.DB(), key, c.valueType(2, types.TypeStr)).Get()
	if err != nil {
		c.raise(err)
	}
	L.Push(toLua(v))
	return 1
}

// tos.set(key, value [, type])
func (c *call) set(L *lua.LState) int {
	key := L.CheckString(1)
	v := c.value(2, c.valueType(3, inferType(L.Get(2))))
	if err := kvstore.NewVarDB(c.host.DB(), key, v.Type()).Set(v); err != nil {
		c.raise(err)
	}
	return 0
}

// tos.delete(key)
func (c *call) delete(L *lua.LState) int {
	if err := kvstore.NewVarDB(c.host.DB(), L.CheckString(1), types.TypeStr).Remove(); err != nil {
		c.raise(err)
	}
	return 0
}

// tos.dict_get(name, key [, type])
func (c *call) dictGet(L *lua.LState) int {
	name := L.CheckString(1)
	key := c.value(2, inferType(L.Get(2)))
	v, err := kvstore.NewDictDB(c.host.DB(), name, c.valueType(3, types.TypeStr)).Get(key)
	if err != nil {
		c.raise(err)
	}
	L.Push(toLua(v))
	return 1
}

// tos.dict_set(name, key, value [, type])
func (c *call) dictSet(L *lua.LState) int {
	name := L.CheckString(1)
	key := c.value(2, inferType(L.Get(2)))
	v := c.value(3, c.valueType(4, inferType(L.Get(3))))
	if err := kvstore.NewDictDB(c.host.DB(), name, v.Type()).Set(key, v); err != nil {
		c.raise(err)
	}
	return 0
}

// tos.emit(event, ...) converts the arguments by the declared schema.
func (c *call) emit(L *lua.LState) int {
	name := L.CheckString(1)
	schema := c.score.event(name)
	if schema == nil {
		c.raise(fmt.Errorf("%w: %s is not declared", vm.ErrEventLog, name))
	}
	if n := L.GetTop() - 1; n != len(schema.Params) {
		c.raise(fmt.Errorf("%w: %s takes %d arguments, got %d", vm.ErrEventLog, name, len(schema.Params), n))
	}
	args := make([]interface{}, len(schema.Params))
	for i, p := range schema.Params {
		args[i] = c.value(i+2, eventType(L.Get(i+2), p.Type))
	}
	if err := c.host.Emit(name, vm.Positional(args...)); err != nil {
		c.raise(err)
	}
	return 0
}

// tos.call(to, method [, args [, value]]) invokes another score. The array
// part of args is passed positionally and the rest by name.
func (c *call) invoke(L *lua.LState) int {
	to := c.address(1)
	method := L.CheckString(2)
	var args vm.Args
	if tbl, ok := L.Get(3).(*lua.LTable); ok {
		args.Named = make(map[string]interface{})
		tbl.ForEach(func(k, v lua.LValue) {
			val, err := fromLua(v, inferType(v))
			if err != nil {
				c.argError(3, "%v: %v", k, err)
			}
			switch key := k.(type) {
			case lua.LNumber:
				if key < 1 || key != lua.LNumber(math.Trunc(float64(key))) || key > callArgsMax {
					c.argError(3, "bad positional index %v", key)
				}
				for len(args.Positional) < int(key) {
					args.Positional = append(args.Positional, nil)
				}
				args.Positional[int(key)-1] = val
			default:
				args.Named[lua.LVAsString(key)] = val
			}
		})
	}
	var value *big.Int
	if L.GetTop() >= 4 {
		value = c.bigInt(4)
	}
	ret, err := c.host.Call(to, method, args, value)
	if err != nil {
		c.raise(err)
	}
	if ret == nil {
		L.Push(lua.LNil)
	} else {
		L.Push(toLua(ret))
	}
	return 1
}

// tos.transfer(to, amount)
func (c *call) transfer(L *lua.LState) int {
	if err := c.host.Transfer(c.address(1), c.bigInt(2)); err != nil {
		c.raise(err)
	}
	return 0
}

// tos.balance(addr)
func (c *call) balance(L *lua.LState) int {
	bal, err := c.host.Balance(c.address(1))
	if err != nil {
		c.raise(err)
	}
	L.Push(bigToLua(bal))
	return 1
}

// tos.revert(code [, message])
func (c *call) revert(L *lua.LState) int {
	code := L.CheckInt64(1)
	if code < 0 {
		c.argError(1, "negative revert code")
	}
	c.raise(c.host.Revert(uint64(code), L.OptString(2, "")))
	return 0
}

// tos.require(cond [, message [, code]])
func (c *call) require(L *lua.LState) int {
	if lua.LVAsBool(L.Get(1)) {
		return 0
	}
	code := L.OptInt64(3, 0)
	if code < 0 {
		c.argError(3, "negative revert code")
	}
	c.raise(c.host.Revert(uint64(code), L.OptString(2, "requirement failed")))
	return 0
}

// tos.sha3(data) returns the hex digest of a string.
func (c *call) sha3(L *lua.LState) int {
	data := L.CheckString(1)
	if err := c.host.Context().Steps.Apply(params.StepAPICall, 1); err != nil {
		c.raise(err)
	}
	L.Push(lua.LString(common.Sha3Hash([]byte(data)).Hex()))
	return 1
}

func (c *call) value(n int, t types.ValueType) types.Value {
	v, err := fromLua(c.L.Get(n), t)
	if err != nil {
		c.argError(n, "%v", err)
	}
	return v
}

func (c *call) address(n int) common.Address {
	return c.value(n, types.TypeAddress).(types.Addr).Address()
}

func (c *call) bigInt(n int) *big.Int {
	return c.value(n, types.TypeInt).(types.Int).Big()
}

// inferType guesses the runtime type of an untyped Lua value. Strings that
// parse as addresses are addresses.
func inferType(v lua.LValue) types.ValueType {
	switch x := v.(type) {
	case lua.LNumber:
		return types.TypeInt
	case lua.LBool:
		return types.TypeBool
	case lua.LString:
		if _, err := common.ParseAddress(string(x)); err == nil {
			return types.TypeAddress
		}
	}
	return types.TypeStr
}

// eventType is the type an event argument binds as. Strings stand for str,
// bytes and addresses, and for ints only beyond the exact number range, so a
// numeric string given for an int parameter stays a str.
func eventType(v lua.LValue, declared types.ValueType) types.ValueType {
	s, ok := v.(lua.LString)
	if !ok {
		return inferType(v)
	}
	switch declared {
	case types.TypeStr, types.TypeBytes, types.TypeAddress:
		return declared
	case types.TypeInt:
		if i, ok := new(big.Int).SetString(string(s), 10); ok && new(big.Int).Abs(i).Cmp(big.NewInt(maxExactInt)) > 0 {
			return types.TypeInt
		}
	}
	return types.TypeStr
}

func bigToLua(v *big.Int) lua.LValue {
	if v == nil {
		return lua.LNumber(0)
	}
	if v.IsInt64() && v.Int64() <= maxExactInt && v.Int64() >= -maxExactInt {
		return lua.LNumber(v.Int64())
	}
	return lua.LString(v.String())
}

func toLua(v types.Value) lua.LValue {
	switch x := v.(type) {
	case types.Int:
		return bigToLua(x.Big())
	case types.Bool:
		return lua.LBool(x)
	case types.Str:
		return lua.LString(x)
	case types.Addr:
		return lua.LString(x.String())
	case types.Bytes:
		return lua.LString(x.String())
	}
	return lua.LNil
}

// fromLua converts v to a value of type t. Integers are accepted as exact
// numbers or as decimal or 0x-prefixed strings; bytes as 0x-prefixed hex.
func fromLua(v lua.LValue, t types.ValueType) (types.Value, error) {
	switch t {
	case types.TypeInt:
		switch x := v.(type) {
		case lua.LNumber:
			f := float64(x)
			if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
				return nil, fmt.Errorf("%w: %v is not an exact integer", types.ErrValueType, f)
			}
			return types.IntValue(int64(f)), nil
		case lua.LString:
			i, ok := new(big.Int).SetString(string(x), 0)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not an integer", types.ErrValueType, string(x))
			}
			return types.BigValue(i), nil
		}
	case types.TypeBool:
		if b, ok := v.(lua.LBool); ok {
			return types.BoolValue(bool(b)), nil
		}
	case types.TypeStr:
		if s, ok := v.(lua.LString); ok {
			return types.ParseValue(types.TypeStr, string(s))
		}
	case types.TypeAddress, types.TypeBytes:
		if s, ok := v.(lua.LString); ok {
			return types.ParseValue(t, string(s))
		}
	}
	return nil, fmt.Errorf("%w: %s is not convertible to %v", types.ErrValueType, v.Type(), t)
}
