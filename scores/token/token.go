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

// Package token implements a builtin fungible token score with the usual
// balance, transfer and allowance methods. It also accepts native currency
// deposits through its fallback and pays them back on withdraw.
package token

import (
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/kvstore"
)

// Name is the builtin content name of the token score.
const Name = "token"

// Revert codes.
const (
	CodeNegativeValue uint64 = iota + 1
	CodeInsufficientBalance
	CodeInsufficientAllowance
	CodeOnlyOwner
)

var (
	addrT  = types.TypeAddress
	intT   = types.TypeInt
	strT   = types.TypeStr
	bytesT = types.TypeBytes
)

// Token is stateless; every call reads and writes through the host.
type Token struct{}

// New is the builtin constructor.
func New() score.Score { return Token{} }

// Register adds the token to a builtin loader.
func Register(l *score.BuiltinLoader) { l.Register(Name, New) }

func (Token) InstallParams() []vm.Param {
	return []vm.Param{
		{Name: "_name", Type: strT},
		{Name: "_symbol", Type: strT},
		{Name: "_decimals", Type: intT},
		{Name: "_initialSupply", Type: intT},
	}
}

func (Token) Events() []vm.EventSchema {
	return []vm.EventSchema{
		{Name: "Transfer", Params: []vm.Param{
			{Name: "_from", Type: addrT},
			{Name: "_to", Type: addrT},
			{Name: "_value", Type: intT},
			{Name: "_data", Type: bytesT},
		}, Indexed: 3},
		{Name: "Approval", Params: []vm.Param{
			{Name: "_owner", Type: addrT},
			{Name: "_spender", Type: addrT},
			{Name: "_value", Type: intT},
		}, Indexed: 2},
		{Name: "Deposit", Params: []vm.Param{
			{Name: "_from", Type: addrT},
			{Name: "_value", Type: intT},
		}, Indexed: 1},
	}
}

func (Token) Methods() []score.Method {
	return []score.Method{
		{Name: "name", Returns: strT, ReadOnly: true, Fn: getter("name", strT)},
		{Name: "symbol", Returns: strT, ReadOnly: true, Fn: getter("symbol", strT)},
		{Name: "decimals", Returns: intT, ReadOnly: true, Fn: getter("decimals", intT)},
		{Name: "totalSupply", Returns: intT, ReadOnly: true, Fn: getter("totalSupply", intT)},
		{Name: "balanceOf", Params: []vm.Param{{Name: "_owner", Type: addrT}}, Returns: intT, ReadOnly: true, Fn: balanceOf},
		{Name: "allowance", Params: []vm.Param{{Name: "_owner", Type: addrT}, {Name: "_spender", Type: addrT}}, Returns: intT, ReadOnly: true, Fn: allowance},
		{Name: "transfer", Params: []vm.Param{{Name: "_to", Type: addrT}, {Name: "_value", Type: intT}}, Fn: transfer},
		{Name: "approve", Params: []vm.Param{{Name: "_spender", Type: addrT}, {Name: "_value", Type: intT}}, Fn: approve},
		{Name: "transferFrom", Params: []vm.Param{{Name: "_from", Type: addrT}, {Name: "_to", Type: addrT}, {Name: "_value", Type: intT}}, Fn: transferFrom},
		{Name: "mint", Params: []vm.Param{{Name: "_to", Type: addrT}, {Name: "_value", Type: intT}}, Fn: mint},
		{Name: "depositOf", Params: []vm.Param{{Name: "_owner", Type: addrT}}, Returns: intT, ReadOnly: true, Fn: depositOf},
		{Name: "withdraw", Params: []vm.Param{{Name: "_value", Type: intT}}, Fn: withdraw},
		{Name: score.FallbackMethod, Payable: true, Fn: deposit},
	}
}

func (Token) OnInstall(h score.Host, args []types.Value) error {
	db := h.DB()
	for i, name := range []string{"name", "symbol", "decimals"} {
		if err := kvstore.NewVarDB(db, name, args[i].Type()).Set(args[i]); err != nil {
			return err
		}
	}
	decimals := bigOf(args[2])
	supply := bigOf(args[3])
	if decimals.Sign() < 0 || supply.Sign() < 0 {
		return h.Revert(CodeNegativeValue, "negative decimals or supply")
	}
	total := new(big.Int).Mul(supply, new(big.Int).Exp(big.NewInt(10), decimals, nil))
	if err := kvstore.NewVarDB(db, "totalSupply", intT).Set(types.BigValue(total)); err != nil {
		return err
	}
	owner := h.Msg().Sender
	if err := balances(h).Set(types.AddressValue(owner), types.BigValue(total)); err != nil {
		return err
	}
	return h.Emit("Transfer", vm.Positional(common.Address{}, owner, total, []byte("mint")))
}

func (Token) OnUpdate(h score.Host, args []types.Value) error { return nil }

func balances(h score.Host) *kvstore.DictDB { return kvstore.NewDictDB(h.DB(), "balances", intT) }
func allowances(h score.Host) *kvstore.DictDB {
	return kvstore.NewDictDB(h.DB(), "allowances", intT)
}
func deposits(h score.Host) *kvstore.DictDB { return kvstore.NewDictDB(h.DB(), "deposits", intT) }

func bigOf(v types.Value) *big.Int { return v.(types.Int).Big() }

func getter(name string, typ types.ValueType) func(score.Host, []types.Value) (types.Value, error) {
	return func(h score.Host, _ []types.Value) (types.Value, error) {
		return kvstore.NewVarDB(h.DB(), name, typ).Get()
	}
}

func balanceOf(h score.Host, args []types.Value) (types.Value, error) {
	return balances(h).Get(args[0])
}

func allowance(h score.Host, args []types.Value) (types.Value, error) {
	return allowances(h).Sub(args[0]).Get(args[1])
}

func depositOf(h score.Host, args []types.Value) (types.Value, error) {
	return deposits(h).Get(args[0])
}

// move transfers value between two token holders.
func move(h score.Host, from, to common.Address, value *big.Int) error {
	if value.Sign() < 0 {
		return h.Revert(CodeNegativeValue, "negative value")
	}
	bals := balances(h)
	fromBal, err := bals.Get(types.AddressValue(from))
	if err != nil {
		return err
	}
	left := new(big.Int).Sub(bigOf(fromBal), value)
	if left.Sign() < 0 {
		return h.Revert(CodeInsufficientBalance, "insufficient balance")
	}
	if err := bals.Set(types.AddressValue(from), types.BigValue(left)); err != nil {
		return err
	}
	toBal, err := bals.Get(types.AddressValue(to))
	if err != nil {
		return err
	}
	if err := bals.Set(types.AddressValue(to), types.BigValue(new(big.Int).Add(bigOf(toBal), value))); err != nil {
		return err
	}
	return h.Emit("Transfer", vm.Positional(from, to, value, []byte{}))
}

func transfer(h score.Host, args []types.Value) (types.Value, error) {
	to := args[0].(types.Addr).Address()
	return nil, move(h, h.Msg().Sender, to, bigOf(args[1]))
}

func approve(h score.Host, args []types.Value) (types.Value, error) {
	value := bigOf(args[1])
	if value.Sign() < 0 {
		return nil, h.Revert(CodeNegativeValue, "negative value")
	}
	owner := types.AddressValue(h.Msg().Sender)
	if err := allowances(h).Sub(owner).Set(args[0], args[1]); err != nil {
		return nil, err
	}
	return nil, h.Emit("Approval", vm.Positional(owner, args[0], value))
}

func transferFrom(h score.Host, args []types.Value) (types.Value, error) {
	from, to, value := args[0].(types.Addr).Address(), args[1].(types.Addr).Address(), bigOf(args[2])
	entry := allowances(h).Sub(args[0]).At(types.AddressValue(h.Msg().Sender))
	allowed, err := entry.BigInt()
	if err != nil {
		return nil, err
	}
	left := new(big.Int).Sub(allowed, value)
	if left.Sign() < 0 {
		return nil, h.Revert(CodeInsufficientAllowance, "insufficient allowance")
	}
	if err := entry.Set(types.BigValue(left)); err != nil {
		return nil, err
	}
	return nil, move(h, from, to, value)
}

func mint(h score.Host, args []types.Value) (types.Value, error) {
	if h.Msg().Sender != h.Owner() {
		return nil, h.Revert(CodeOnlyOwner, "only owner can mint")
	}
	value := bigOf(args[1])
	if value.Sign() < 0 {
		return nil, h.Revert(CodeNegativeValue, "negative value")
	}
	supply := kvstore.NewVarDB(h.DB(), "totalSupply", intT)
	total, err := supply.BigInt()
	if err != nil {
		return nil, err
	}
	if err := supply.Set(types.BigValue(total.Add(total, value))); err != nil {
		return nil, err
	}
	bal, err := balances(h).Get(args[0])
	if err != nil {
		return nil, err
	}
	if err := balances(h).Set(args[0], types.BigValue(new(big.Int).Add(bigOf(bal), value))); err != nil {
		return nil, err
	}
	return nil, h.Emit("Transfer", vm.Positional(common.Address{}, args[0], value, []byte("mint")))
}

func deposit(h score.Host, _ []types.Value) (types.Value, error) {
	msg := h.Msg()
	sender := types.AddressValue(msg.Sender)
	prev, err := deposits(h).Get(sender)
	if err != nil {
		return nil, err
	}
	if err := deposits(h).Set(sender, types.BigValue(new(big.Int).Add(bigOf(prev), msg.Value))); err != nil {
		return nil, err
	}
	return nil, h.Emit("Deposit", vm.Positional(msg.Sender, msg.Value))
}

func withdraw(h score.Host, args []types.Value) (types.Value, error) {
	value := bigOf(args[0])
	if value.Sign() < 0 {
		return nil, h.Revert(CodeNegativeValue, "negative value")
	}
	sender := types.AddressValue(h.Msg().Sender)
	prev, err := deposits(h).Get(sender)
	if err != nil {
		return nil, err
	}
	left := new(big.Int).Sub(bigOf(prev), value)
	if left.Sign() < 0 {
		return nil, h.Revert(CodeInsufficientBalance, "insufficient deposit")
	}
	if err := deposits(h).Set(sender, types.BigValue(left)); err != nil {
		return nil, err
	}
	return nil, h.Transfer(h.Msg().Sender, value)
}
