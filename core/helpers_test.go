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

package core

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/icx"
	"github.com/tos-network/gscore/kvstore"
	"github.com/tos-network/gscore/params"
	"github.com/tos-network/gscore/scores/token"
)

var (
	alice = common.AddressFromData(common.KindEOA, []byte("alice"))
	bob   = common.AddressFromData(common.KindEOA, []byte("bob"))

	oneICX = big.NewInt(params.ICX)
)

// relay is a test score exercising nested calls, reverts and metering.
type relay struct{}

func newRelay() score.Score { return relay{} }

func (relay) InstallParams() []vm.Param                 { return nil }
func (relay) OnInstall(score.Host, []types.Value) error { return nil }
func (relay) OnUpdate(score.Host, []types.Value) error  { return nil }
func (relay) Events() []vm.EventSchema {
	return []vm.EventSchema{{Name: "Set", Params: []vm.Param{{Name: "value", Type: types.TypeStr}}, Indexed: 1}}
}

func (relay) Methods() []score.Method {
	str := []vm.Param{{Name: "value", Type: types.TypeStr}}
	target := []vm.Param{{Name: "target", Type: types.TypeAddress}, {Name: "value", Type: types.TypeStr}}
	return []score.Method{
		{Name: "set", Params: str, Fn: relaySet},
		{Name: "get", Returns: types.TypeStr, ReadOnly: true, Fn: func(h score.Host, _ []types.Value) (types.Value, error) {
			return kvstore.NewVarDB(h.DB(), "value", types.TypeStr).Get()
		}},
		{Name: "fail", Params: str, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			if _, err := relaySet(h, args); err != nil {
				return nil, err
			}
			return nil, h.Revert(7, "boom")
		}},
		{Name: "forward", Params: target, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			to := args[0].(types.Addr).Address()
			return h.Call(to, "set", vm.Positional(args[1]), nil)
		}},
		{Name: "forwardFail", Params: target, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			to := args[0].(types.Addr).Address()
			return h.Call(to, "fail", vm.Positional(args[1]), nil)
		}},
		{Name: "swallow", Params: target, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			to := args[0].(types.Addr).Address()
			if _, err := h.Call(to, "fail", vm.Positional(args[1]), nil); err == nil {
				return nil, h.Revert(1, "nested call unexpectedly succeeded")
			}
			return relaySet(h, args[1:])
		}},
		{Name: "recurse", Fn: func(h score.Host, _ []types.Value) (types.Value, error) {
			return h.Call(h.Address(), "recurse", vm.Args{}, nil)
		}},
		{Name: "spin", Params: []vm.Param{{Name: "count", Type: types.TypeInt}}, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			arr := kvstore.NewArrayDB(h.DB(), "spin", types.TypeBytes)
			n := args[0].(types.Int).Big().Int64()
			for i := int64(0); i < n; i++ {
				if err := arr.Push(types.BytesValue(make([]byte, 1024))); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}},
		{Name: "spinLen", Returns: types.TypeInt, ReadOnly: true, Fn: func(h score.Host, _ []types.Value) (types.Value, error) {
			n, err := kvstore.NewArrayDB(h.DB(), "spin", types.TypeBytes).Len()
			if err != nil {
				return nil, err
			}
			return types.IntValue(int64(n)), nil
		}},
		{Name: "sneakyWrite", Returns: types.TypeStr, ReadOnly: true, Fn: func(h score.Host, _ []types.Value) (types.Value, error) {
			return nil, kvstore.NewVarDB(h.DB(), "value", types.TypeStr).Set(types.StrValue("sneaky"))
		}},
		{Name: "readVia", Params: []vm.Param{{Name: "target", Type: types.TypeAddress}}, Returns: types.TypeStr, ReadOnly: true, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			return h.Call(args[0].(types.Addr).Address(), "get", vm.Args{}, nil)
		}},
		{Name: "pay", Params: []vm.Param{{Name: "to", Type: types.TypeAddress}}, Payable: true, Fn: func(h score.Host, args []types.Value) (types.Value, error) {
			return nil, h.Transfer(args[0].(types.Addr).Address(), h.Msg().Value)
		}},
	}
}

func relaySet(h score.Host, args []types.Value) (types.Value, error) {
	if err := kvstore.NewVarDB(h.DB(), "value", types.TypeStr).Set(args[0]); err != nil {
		return nil, err
	}
	return nil, h.Emit("Set", vm.Positional(args[0]))
}

type testEnv struct {
	t      *testing.T
	engine *Engine
	block  *types.Block
	nonce  uint64
}

func newTestEnv(t *testing.T, opts ...func(*params.Config)) *testEnv {
	t.Helper()
	cfg := params.DefaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	storage, err := state.NewKVStorage(memorydb.New(), 1<<20, 1<<16)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	db := state.NewDatabase(storage)
	loader := score.NewBuiltinLoader()
	token.Register(loader)
	loader.Register("relay", newRelay)
	registry, err := score.NewRegistry(db, loader, cfg.RegistryCacheSize)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	env := &testEnv{
		t:      t,
		engine: NewEngine(&cfg, db, registry, icx.NewLedger(db)),
		block:  &types.Block{Height: 1, Hash: common.Sha3Hash([]byte("block-1")), Timestamp: 1_700_000_000_000_000},
	}
	_, err = env.engine.Genesis(context.Background(), &Genesis{
		Timestamp: 1,
		Accounts: []GenesisAccount{
			{Address: alice, Balance: (*hexutil.Big)(new(big.Int).Mul(big.NewInt(100), oneICX))},
		},
	})
	if err != nil {
		t.Fatalf("genesis failed: %v", err)
	}
	return env
}

func (env *testEnv) tx(from, to common.Address, dataType string, data []byte, value *big.Int) *types.Transaction {
	env.nonce++
	tx := &types.Transaction{
		From:      from,
		To:        to,
		Value:     value,
		StepLimit: params.InvokeStepLimit,
		Timestamp: env.block.Timestamp + env.nonce,
		Nonce:     env.nonce,
		DataType:  dataType,
		Data:      data,
	}
	tx.Hash = tx.ComputeHash()
	return tx
}

func (env *testEnv) apply(tx *types.Transaction) *types.Receipt {
	env.t.Helper()
	receipt, err := env.engine.ApplyTransaction(context.Background(), env.block, tx, 0)
	if err != nil {
		env.t.Fatalf("apply failed: %v", err)
	}
	return receipt
}

func (env *testEnv) call(from, to common.Address, method string, args map[string]string, value *big.Int) *types.Receipt {
	env.t.Helper()
	data, err := score.MakeCall(method, args)
	if err != nil {
		env.t.Fatalf("encode call: %v", err)
	}
	return env.apply(env.tx(from, to, params.DataTypeCall, data, value))
}

func (env *testEnv) deploy(from common.Address, name string, args map[string]string) common.Address {
	env.t.Helper()
	data, err := score.MakeDeploy(params.ContentTypeBuiltin, []byte(name), args)
	if err != nil {
		env.t.Fatalf("encode deploy: %v", err)
	}
	receipt := env.apply(env.tx(from, params.ZeroScoreAddress, params.DataTypeDeploy, data, nil))
	if receipt.Failed() || receipt.ScoreAddress == nil {
		env.t.Fatalf("deploy of %s failed: %+v", name, receipt.Failure)
	}
	return *receipt.ScoreAddress
}

func (env *testEnv) query(to common.Address, method string, args map[string]string) (types.Value, error) {
	return env.engine.Query(context.Background(), env.block, &QueryRequest{From: alice, To: to, Method: method, Params: args})
}

func (env *testEnv) mustQuery(to common.Address, method string, args map[string]string) types.Value {
	env.t.Helper()
	v, err := env.query(to, method, args)
	if err != nil {
		env.t.Fatalf("query %s failed: %v", method, err)
	}
	return v
}

func (env *testEnv) balance(addr common.Address) *big.Int {
	env.t.Helper()
	bal, err := env.engine.Balance(context.Background(), addr)
	if err != nil {
		env.t.Fatalf("balance failed: %v", err)
	}
	return bal
}

func requireBalance(t *testing.T, env *testEnv, addr common.Address, want *big.Int) {
	t.Helper()
	if got := env.balance(addr); got.Cmp(want) != 0 {
		t.Fatalf("balance of %v mismatch: have %v, want %v", addr, got, want)
	}
}

func tokenParams() map[string]string {
	return map[string]string{
		"_name":          "Test Token",
		"_symbol":        "TST",
		"_decimals":      "0x2",
		"_initialSupply": "0x3e8",
	}
}
