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
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/icx"
	"github.com/tos-network/gscore/params"
	lua "github.com/yuin/gopher-lua"
)

const tokenScript = `
local BALANCES = "balances"

local function balance_of(owner)
  return tos.dict_get(BALANCES, owner, "int")
end

score = {
  install = {"_name:str", "_supply:int"},
  events = {
    Transfer = {params = {"_from:Address", "_to:Address", "_value:int"}, indexed = 2},
    Deposit  = {params = {"_from:Address", "_value:int"}, indexed = 1},
    Registered = {params = {"name:str", "addr:Address", "age:int"}, indexed = 1},
  },
  methods = {
    name = {returns = "str", readonly = true, fn = function() return tos.get("name") end},
    balanceOf = {params = {"_owner:Address"}, returns = "int", readonly = true, fn = balance_of},
    transfer = {
      params = {"_to:Address", "_value:int"},
      fn = function(to, value)
        tos.require(value >= 0, "negative value", 1)
        local from = tos.caller
        local bal = balance_of(from)
        tos.require(bal >= value, "insufficient balance", 2)
        tos.dict_set(BALANCES, from, bal - value, "int")
        tos.dict_set(BALANCES, to, balance_of(to) + value, "int")
        tos.emit("Transfer", from, to, value)
      end,
    },
    forward = {
      params = {"_to:Address", "_value:int"},
      fn = function(to, value) tos.call(tos.address, "transfer", {to, value}) end,
    },
    digest = {params = {"data:str"}, returns = "str", readonly = true, fn = function(d) return tos.sha3(d) end},
    spin = {fn = function() while true do end end},
    register = {
      params = {"age:str"},
      fn = function(age) tos.emit("Registered", "name", tos.caller, age) end,
    },
    registerAge = {
      params = {"age:int"},
      fn = function(age) tos.emit("Registered", "name", tos.caller, age) end,
    },
    fallback = {
      payable = true,
      fn = function() tos.emit("Deposit", tos.caller, tos.value) end,
    },
  },
  on_install = function(name, supply)
    tos.set("name", name)
    tos.dict_set(BALANCES, tos.owner, supply, "int")
  end,
}
`

var (
	alice = common.AddressFromData(common.KindEOA, []byte("alice"))
	bob   = common.AddressFromData(common.KindEOA, []byte("bob"))

	testBlock = &types.Block{Height: 1, Hash: common.Sha3Hash([]byte("block-1")), Timestamp: 1_700_000_000_000_000}
)

type luaEnv struct {
	t      *testing.T
	engine *core.Engine
	score  common.Address
	nonce  uint64
}

func newLuaEnv(t *testing.T, timeout time.Duration) *luaEnv {
	t.Helper()
	cfg := params.DefaultConfig
	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	storage, err := state.NewKVStorage(memorydb.New(), 1<<20, 1<<16)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	db := state.NewDatabase(storage)
	loader := score.NewMuxLoader()
	loader.Handle(params.ContentTypeBuiltin, score.NewBuiltinLoader())
	loader.Handle(params.ContentTypeLua, NewLoader(timeout))
	registry, err := score.NewRegistry(db, loader, cfg.RegistryCacheSize)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	engine := core.NewEngine(&cfg, db, registry, icx.NewLedger(db))
	addrs, err := engine.Genesis(context.Background(), &core.Genesis{
		Timestamp: 1,
		Accounts: []core.GenesisAccount{
			{Address: alice, Balance: (*hexutil.Big)(big.NewInt(params.ICX))},
		},
		Scores: []core.GenesisScore{{
			Owner:       alice,
			ContentType: params.ContentTypeLua,
			Content:     []byte(tokenScript),
			Params:      map[string]string{"_name": "Lua Token", "_supply": "0x3e8"},
		}},
	})
	if err != nil {
		t.Fatalf("genesis failed: %v", err)
	}
	return &luaEnv{t: t, engine: engine, score: addrs[0]}
}

func (env *luaEnv) call(from common.Address, method string, args map[string]string, value *big.Int) *types.Receipt {
	env.t.Helper()
	env.nonce++
	tx := &types.Transaction{
		From:      from,
		To:        env.score,
		Value:     value,
		StepLimit: params.InvokeStepLimit,
		Timestamp: testBlock.Timestamp + env.nonce,
		Nonce:     env.nonce,
	}
	if method != "" {
		data, err := score.MakeCall(method, args)
		require.NoError(env.t, err)
		tx.DataType, tx.Data = params.DataTypeCall, data
	}
	tx.Hash = tx.ComputeHash()
	receipt, err := env.engine.ApplyTransaction(context.Background(), testBlock, tx, 0)
	if err != nil {
		env.t.Fatalf("apply failed: %v", err)
	}
	return receipt
}

func (env *luaEnv) query(method string, args map[string]string) types.Value {
	env.t.Helper()
	v, err := env.engine.Query(context.Background(), testBlock, &core.QueryRequest{From: alice, To: env.score, Method: method, Params: args})
	if err != nil {
		env.t.Fatalf("query %s failed: %v", method, err)
	}
	return v
}

func (env *luaEnv) balanceOf(owner common.Address) int64 {
	env.t.Helper()
	v := env.query("balanceOf", map[string]string{"_owner": owner.String()})
	i, ok := v.(types.Int)
	if !ok {
		env.t.Fatalf("balanceOf returned %v", spew.Sdump(v))
	}
	return i.Big().Int64()
}

func TestLuaTokenTransfer(t *testing.T) {
	env := newLuaEnv(t, 0)

	assert.Equal(t, "Lua Token", env.query("name", nil).String())
	assert.Equal(t, int64(1000), env.balanceOf(alice))

	receipt := env.call(alice, "transfer", map[string]string{"_to": bob.String(), "_value": "0x64"}, nil)
	if receipt.Failed() {
		t.Fatalf("transfer failed: %v", spew.Sdump(receipt.Failure))
	}
	require.Len(t, receipt.EventLogs, 1)
	assert.Equal(t, "Transfer(Address,Address,int)", receipt.EventLogs[0].Signature())
	assert.True(t, receipt.LogsBloom.Contains(types.IndexKey(2, types.AddressValue(bob))))
	assert.Equal(t, int64(900), env.balanceOf(alice))
	assert.Equal(t, int64(100), env.balanceOf(bob))
}

func TestLuaRevert(t *testing.T) {
	env := newLuaEnv(t, 0)

	receipt := env.call(bob, "transfer", map[string]string{"_to": alice.String(), "_value": "0x1"}, nil)
	require.True(t, receipt.Failed())
	assert.Equal(t, vm.CodeScoreError+2, receipt.Failure.Code)
	assert.Empty(t, receipt.EventLogs)

	// The nested frame runs with the score as sender, which holds nothing.
	receipt = env.call(alice, "forward", map[string]string{"_to": bob.String(), "_value": "0x1"}, nil)
	require.True(t, receipt.Failed())
	assert.Equal(t, vm.CodeScoreError+2, receipt.Failure.Code)
	assert.Equal(t, int64(1000), env.balanceOf(alice))
}

func TestLuaFallback(t *testing.T) {
	env := newLuaEnv(t, 0)

	receipt := env.call(alice, "", nil, big.NewInt(5))
	if receipt.Failed() {
		t.Fatalf("deposit failed: %v", spew.Sdump(receipt.Failure))
	}
	var sigs []string
	for _, l := range receipt.EventLogs {
		sigs = append(sigs, l.Signature())
	}
	assert.Contains(t, sigs, "Deposit(Address,int)")

	bal, err := env.engine.Balance(context.Background(), env.score)
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.Int64())
}

func TestLuaEmitTypeMismatch(t *testing.T) {
	env := newLuaEnv(t, 0)

	// A numeric string is still a str, even for an int parameter.
	receipt := env.call(alice, "register", map[string]string{"age": "10"}, nil)
	require.True(t, receipt.Failed())
	assert.Equal(t, vm.CodeInvalidParameter, receipt.Failure.Code)
	assert.Empty(t, receipt.EventLogs)
	assert.False(t, receipt.LogsBloom.Contains(types.IndexKey(1, types.StrValue("name"))))

	receipt = env.call(alice, "registerAge", map[string]string{"age": "0xa"}, nil)
	if receipt.Failed() {
		t.Fatalf("register failed: %v", spew.Sdump(receipt.Failure))
	}
	require.Len(t, receipt.EventLogs, 1)
	assert.True(t, types.EqualValues(types.IntValue(10), receipt.EventLogs[0].Data[1]))

	// Beyond 2^53 ints reach Lua as decimal strings and bind back as ints.
	huge := new(big.Int).Add(big.NewInt(1<<53), big.NewInt(1))
	receipt = env.call(alice, "registerAge", map[string]string{"age": hexutil.EncodeBig(huge)}, nil)
	if receipt.Failed() {
		t.Fatalf("register failed: %v", spew.Sdump(receipt.Failure))
	}
	require.Len(t, receipt.EventLogs, 1)
	assert.True(t, types.EqualValues(types.BigValue(huge), receipt.EventLogs[0].Data[1]))
}

func TestLuaDigest(t *testing.T) {
	env := newLuaEnv(t, 0)
	v := env.query("digest", map[string]string{"data": "abc"})
	assert.Equal(t, common.Sha3Hash([]byte("abc")).Hex(), v.String())
}

func TestLuaTimeout(t *testing.T) {
	env := newLuaEnv(t, 50*time.Millisecond)

	receipt := env.call(alice, "spin", nil, nil)
	require.True(t, receipt.Failed())
	assert.Equal(t, vm.CodeTimeout, receipt.Failure.Code)
	assert.Equal(t, int64(1000), env.balanceOf(alice))
}

func TestLoadRejected(t *testing.T) {
	l := NewLoader(time.Second)
	tests := []struct {
		name        string
		contentType string
		src         string
		want        error
	}{
		{"content type", params.ContentTypeBuiltin, tokenScript, score.ErrInvalidContent},
		{"syntax", params.ContentTypeLua, "score = {", score.ErrInvalidContent},
		{"runtime", params.ContentTypeLua, "error('boom')", score.ErrInvalidContent},
		{"no table", params.ContentTypeLua, "x = 1", score.ErrInvalidScore},
		{"no fn", params.ContentTypeLua, "score = {methods = {m = {}}}", score.ErrInvalidScore},
		{"bad type", params.ContentTypeLua, "score = {install = {'x:float'}}", score.ErrInvalidScore},
		{"bad param", params.ContentTypeLua, "score = {install = {'x'}}", score.ErrInvalidScore},
		{"bad hook", params.ContentTypeLua, "score = {on_install = 1}", score.ErrInvalidScore},
		{"sandbox", params.ContentTypeLua, "pcall(print)", score.ErrInvalidContent},
	}
	for _, tt := range tests {
		if _, err := l.Load(tt.contentType, []byte(tt.src)); !errors.Is(err, tt.want) {
			t.Errorf("%s: have %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestLoadDeclarations(t *testing.T) {
	s, err := NewLoader(0).Load(params.ContentTypeLua, []byte(tokenScript))
	require.NoError(t, err)

	assert.Equal(t, []vm.Param{{Name: "_name", Type: types.TypeStr}, {Name: "_supply", Type: types.TypeInt}}, s.InstallParams())

	var names []string
	for _, m := range s.Methods() {
		names = append(names, m.Name)
		require.NoError(t, m.Validate(), m.Name)
	}
	assert.Equal(t, []string{"balanceOf", "digest", "fallback", "forward", "name", "register", "registerAge", "spin", "transfer"}, names)

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "Deposit(Address,int)", events[0].Signature())
	assert.Equal(t, "Registered(str,Address,int)", events[1].Signature())
	assert.Equal(t, 2, events[2].Indexed)
}

func TestValueConversion(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 60)
	lv := toLua(types.BigValue(huge))
	require.Equal(t, lua.LString(huge.String()), lv)
	v, err := fromLua(lv, types.TypeInt)
	require.NoError(t, err)
	assert.True(t, types.EqualValues(types.BigValue(huge), v))

	v, err = fromLua(lua.LString("0x10"), types.TypeInt)
	require.NoError(t, err)
	assert.Equal(t, int64(16), v.(types.Int).Big().Int64())

	assert.Equal(t, lua.LNumber(-7), toLua(types.IntValue(-7)))
	if _, err := fromLua(lua.LNumber(1.5), types.TypeInt); !errors.Is(err, types.ErrValueType) {
		t.Fatalf("fractional int accepted: %v", err)
	}
	if _, err := fromLua(lua.LNumber(1), types.TypeStr); !errors.Is(err, types.ErrValueType) {
		t.Fatalf("number accepted as str: %v", err)
	}

	b, err := fromLua(toLua(types.BytesValue([]byte{1, 2})), types.TypeBytes)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, []byte(b.(types.Bytes)))

	assert.Equal(t, types.TypeAddress, inferType(lua.LString(alice.String())))
	assert.Equal(t, types.TypeStr, inferType(lua.LString("alice")))
	assert.Equal(t, types.TypeInt, inferType(lua.LNumber(3)))

	assert.Equal(t, types.TypeStr, eventType(lua.LString("10"), types.TypeInt))
	assert.Equal(t, types.TypeInt, eventType(lua.LString(huge.String()), types.TypeInt))
	assert.Equal(t, types.TypeBytes, eventType(lua.LString("0x0102"), types.TypeBytes))
	assert.Equal(t, types.TypeStr, eventType(lua.LString(alice.String()), types.TypeStr))
	assert.Equal(t, types.TypeInt, eventType(lua.LNumber(1), types.TypeStr))
}
