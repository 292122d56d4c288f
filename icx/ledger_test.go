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

package icx

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

var (
	alice = common.AddressFromData(common.KindEOA, []byte("alice"))
	bob   = common.AddressFromData(common.KindEOA, []byte("bob"))
	score = common.AddressFromData(common.KindContract, []byte("score"))
)

func newTestLedger(t *testing.T) (*Ledger, *state.Database) {
	t.Helper()
	storage, err := state.NewKVStorage(memorydb.New(), 1<<20, 1<<16)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	db := state.NewDatabase(storage)
	return NewLedger(db), db
}

func newTestContext(typ vm.ContextType) *vm.Context {
	return &vm.Context{
		Type:   typ,
		Msg:    types.NewMessage(alice, new(big.Int)),
		Steps:  vm.NewStepCounter(1_000_000_000, params.DefaultStepCosts),
		Logs:   vm.NewLogBuffer(),
		Traces: new(vm.TraceBuffer),
		Batch:  state.NewTransactionBatch(),
	}
}

// fund mints to alice in a genesis tree and commits it.
func fund(t *testing.T, l *Ledger, db *state.Database, amount int64) {
	t.Helper()
	g := newTestContext(vm.Genesis)
	if err := l.Mint(g, alice, big.NewInt(amount)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := db.Commit(g.Batch); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

func TestMintGenesisOnly(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 1000)

	ctx := newTestContext(vm.Invoke)
	bal, err := l.Balance(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, int64(1000), bal.Int64())
	supply, err := l.TotalSupply(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1000), supply.Int64())

	if err := l.Mint(ctx, alice, big.NewInt(1)); !errors.Is(err, ErrMintOutsideGenesis) || !errors.Is(err, vm.ErrAccessDenied) {
		t.Fatalf("expected mint rejection, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 1000)

	ctx := newTestContext(vm.Invoke)
	ctx.Current = score
	require.NoError(t, l.Transfer(ctx, alice, bob, big.NewInt(400)))

	a, _ := l.Balance(ctx, alice)
	b, _ := l.Balance(ctx, bob)
	require.Equal(t, int64(600), a.Int64())
	require.Equal(t, int64(400), b.Int64())

	logs := ctx.Logs.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, params.ICXTransferEventSig, logs[0].Signature())
	require.Equal(t, score, logs[0].ScoreAddress)
	require.Len(t, logs[0].Indexed, 4)
	require.True(t, ctx.Logs.Contains(types.IndexKey(1, types.AddressValue(alice))))
	require.True(t, ctx.Logs.Contains(types.IndexKey(3, types.IntValue(400))))

	traces := ctx.Traces.Traces()
	require.Len(t, traces, 1)
	require.Equal(t, vm.TraceTransfer, traces[0].Type)

	// Nothing is visible to storage before commit.
	fresh := newTestContext(vm.Query)
	b, _ = l.Balance(fresh, bob)
	require.Equal(t, int64(0), b.Int64())

	require.NoError(t, db.Commit(ctx.Batch))
	b, _ = l.Balance(fresh, bob)
	require.Equal(t, int64(400), b.Int64())
}

func TestTransferInsufficient(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 10)

	ctx := newTestContext(vm.Invoke)
	err := l.Transfer(ctx, alice, bob, big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) || !errors.Is(err, vm.ErrOutOfBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	require.Equal(t, 0, ctx.Logs.Len())
	require.Equal(t, 0, ctx.Batch.Len())
}

func TestTransferDrainsAccount(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 10)

	ctx := newTestContext(vm.Invoke)
	require.NoError(t, l.Transfer(ctx, alice, bob, big.NewInt(10)))
	require.NoError(t, db.Commit(ctx.Batch))

	_, err := db.Storage().Get(params.ICXEngineAddress, alice)
	require.ErrorIs(t, err, state.ErrNotFound)
}

func TestTransferRejected(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 10)

	query := newTestContext(vm.Query)
	if err := l.Transfer(query, alice, bob, big.NewInt(1)); !errors.Is(err, vm.ErrWriteProtected) {
		t.Fatalf("expected write protection in query, got %v", err)
	}
	readonly := newTestContext(vm.Invoke)
	readonly.FuncType = vm.ReadOnly
	if err := l.Transfer(readonly, alice, bob, big.NewInt(1)); !errors.Is(err, vm.ErrWriteProtected) {
		t.Fatalf("expected write protection in readonly frame, got %v", err)
	}
	ctx := newTestContext(vm.Invoke)
	for _, amount := range []*big.Int{nil, big.NewInt(-1), new(big.Int).Lsh(big.NewInt(1), 256)} {
		if err := l.Transfer(ctx, alice, bob, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	require.NoError(t, l.Transfer(ctx, alice, bob, new(big.Int)))
	require.Equal(t, 0, ctx.Logs.Len())
}

func TestTransferOutOfStep(t *testing.T) {
	l, db := newTestLedger(t)
	fund(t, l, db, 10)

	ctx := newTestContext(vm.Invoke)
	ctx.Steps = vm.NewStepCounter(1, params.DefaultStepCosts)
	require.ErrorIs(t, l.Transfer(ctx, alice, bob, big.NewInt(1)), vm.ErrOutOfStep)
	require.Equal(t, 0, ctx.Logs.Len())
	require.Equal(t, 0, ctx.Batch.Len())
}
