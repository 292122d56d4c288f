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

package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
)

var (
	owner   = common.AddressFromData(common.KindEOA, []byte("owner"))
	spender = common.AddressFromData(common.KindEOA, []byte("spender"))
	holder  = common.AddressFromData(common.KindEOA, []byte("holder"))
	self    = common.AddressFromData(common.KindContract, []byte("token"))
)

type memDB map[common.Address][]byte

func (m memDB) Get(key common.Address) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, state.ErrNotFound
	}
	return v, nil
}

func (m memDB) Set(key common.Address, value []byte) error {
	m[key] = common.CopyBytes(value)
	return nil
}

func (m memDB) Delete(key common.Address) error {
	delete(m, key)
	return nil
}

type emission struct {
	name string
	args vm.Args
}

type payout struct {
	to     common.Address
	amount *big.Int
}

// fakeHost runs the token without an engine. Emitted events and native
// transfers are recorded instead of executed.
type fakeHost struct {
	db        memDB
	events    *vm.EventRegistry
	msg       *types.Message
	emitted   []emission
	transfers []payout
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	events, err := vm.NewEventRegistry(New().Events()...)
	if err != nil {
		t.Fatalf("invalid token events: %v", err)
	}
	return &fakeHost{db: memDB{}, events: events, msg: types.NewMessage(owner, nil)}
}

func (h *fakeHost) as(sender common.Address, value *big.Int) *fakeHost {
	h.msg = types.NewMessage(sender, value)
	return h
}

func (h *fakeHost) Address() common.Address { return self }
func (h *fakeHost) Owner() common.Address   { return owner }
func (h *fakeHost) Msg() *types.Message     { return h.msg }
func (h *fakeHost) Tx() *types.Transaction  { return nil }
func (h *fakeHost) Block() *types.Block     { return nil }
func (h *fakeHost) DB() score.DB            { return h.db }
func (h *fakeHost) Context() *vm.Context    { return nil }

func (h *fakeHost) Emit(event string, args vm.Args) error {
	if _, ok := h.events.Lookup(event); !ok {
		return vm.ErrEventLog
	}
	h.emitted = append(h.emitted, emission{event, args})
	return nil
}

func (h *fakeHost) Call(common.Address, string, vm.Args, *big.Int) (types.Value, error) {
	return nil, errors.New("not supported")
}

func (h *fakeHost) Transfer(to common.Address, amount *big.Int) error {
	h.transfers = append(h.transfers, payout{to, amount})
	return nil
}

func (h *fakeHost) Balance(common.Address) (*big.Int, error) { return new(big.Int), nil }

func (h *fakeHost) Revert(code uint64, msg string) error { return vm.NewRevert(code, msg) }

func (h *fakeHost) call(t *testing.T, method string, args ...types.Value) (types.Value, error) {
	t.Helper()
	for _, m := range New().Methods() {
		if m.Name == method {
			return m.Fn(h, args)
		}
	}
	t.Fatalf("token has no method %q", method)
	return nil, nil
}

func (h *fakeHost) balanceOf(t *testing.T, addr common.Address) int64 {
	t.Helper()
	v, err := h.call(t, "balanceOf", types.AddressValue(addr))
	require.NoError(t, err)
	return v.(types.Int).Big().Int64()
}

func installed(t *testing.T) *fakeHost {
	t.Helper()
	h := newFakeHost(t)
	err := New().OnInstall(h, []types.Value{
		types.StrValue("Test"), types.StrValue("TST"), types.IntValue(1), types.IntValue(50),
	})
	require.NoError(t, err)
	return h
}

func revertCode(err error) uint64 {
	var r *vm.RevertError
	if errors.As(err, &r) {
		return r.Code
	}
	return 0
}

func TestDeclarations(t *testing.T) {
	tok := New()
	for _, m := range tok.Methods() {
		m := m
		if err := m.Validate(); err != nil {
			t.Errorf("method %s: %v", m.Name, err)
		}
	}
	_, err := vm.NewEventRegistry(tok.Events()...)
	require.NoError(t, err)

	l := score.NewBuiltinLoader()
	Register(l)
	assert.Equal(t, []string{Name}, l.Names())
}

func TestInstall(t *testing.T) {
	h := installed(t)

	v, err := h.call(t, "totalSupply")
	require.NoError(t, err)
	assert.Equal(t, int64(500), v.(types.Int).Big().Int64())
	assert.Equal(t, int64(500), h.balanceOf(t, owner))

	v, err = h.call(t, "symbol")
	require.NoError(t, err)
	assert.Equal(t, "TST", v.String())

	require.Len(t, h.emitted, 1)
	assert.Equal(t, "Transfer", h.emitted[0].name)

	err = New().OnInstall(newFakeHost(t), []types.Value{
		types.StrValue("Bad"), types.StrValue("BAD"), types.IntValue(-1), types.IntValue(1),
	})
	assert.Equal(t, CodeNegativeValue, revertCode(err))
}

func TestTransfer(t *testing.T) {
	h := installed(t)

	_, err := h.call(t, "transfer", types.AddressValue(holder), types.IntValue(20))
	require.NoError(t, err)
	assert.Equal(t, int64(480), h.balanceOf(t, owner))
	assert.Equal(t, int64(20), h.balanceOf(t, holder))

	_, err = h.as(holder, nil).call(t, "transfer", types.AddressValue(owner), types.IntValue(21))
	assert.Equal(t, CodeInsufficientBalance, revertCode(err))

	_, err = h.call(t, "transfer", types.AddressValue(owner), types.IntValue(-1))
	assert.Equal(t, CodeNegativeValue, revertCode(err))
}

func TestAllowance(t *testing.T) {
	h := installed(t)

	_, err := h.call(t, "approve", types.AddressValue(spender), types.IntValue(30))
	require.NoError(t, err)
	v, err := h.call(t, "allowance", types.AddressValue(owner), types.AddressValue(spender))
	require.NoError(t, err)
	assert.Equal(t, int64(30), v.(types.Int).Big().Int64())

	h.as(spender, nil)
	_, err = h.call(t, "transferFrom", types.AddressValue(owner), types.AddressValue(holder), types.IntValue(25))
	require.NoError(t, err)
	assert.Equal(t, int64(25), h.balanceOf(t, holder))

	_, err = h.call(t, "transferFrom", types.AddressValue(owner), types.AddressValue(holder), types.IntValue(6))
	assert.Equal(t, CodeInsufficientAllowance, revertCode(err))

	v, err = h.call(t, "allowance", types.AddressValue(owner), types.AddressValue(spender))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.(types.Int).Big().Int64())
}

func TestMint(t *testing.T) {
	h := installed(t)

	_, err := h.as(holder, nil).call(t, "mint", types.AddressValue(holder), types.IntValue(10))
	assert.Equal(t, CodeOnlyOwner, revertCode(err))

	_, err = h.as(owner, nil).call(t, "mint", types.AddressValue(holder), types.IntValue(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.balanceOf(t, holder))
	v, err := h.call(t, "totalSupply")
	require.NoError(t, err)
	assert.Equal(t, int64(510), v.(types.Int).Big().Int64())
}

func TestDepositWithdraw(t *testing.T) {
	h := installed(t)

	_, err := h.as(holder, big.NewInt(70)).call(t, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "Deposit", h.emitted[len(h.emitted)-1].name)

	h.as(holder, nil)
	_, err = h.call(t, "withdraw", types.IntValue(71))
	assert.Equal(t, CodeInsufficientBalance, revertCode(err))
	assert.Empty(t, h.transfers)

	_, err = h.call(t, "withdraw", types.IntValue(30))
	require.NoError(t, err)
	require.Len(t, h.transfers, 1)
	assert.Equal(t, holder, h.transfers[0].to)
	assert.Equal(t, int64(30), h.transfers[0].amount.Int64())

	v, err := h.call(t, "depositOf", types.AddressValue(holder))
	require.NoError(t, err)
	assert.Equal(t, int64(40), v.(types.Int).Big().Int64())
}
