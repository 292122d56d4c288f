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

package parallel

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/icx"
	"github.com/tos-network/gscore/params"
	"github.com/tos-network/gscore/scores/token"
)

var (
	accounts = []common.Address{
		common.AddressFromData(common.KindEOA, []byte("a")),
		common.AddressFromData(common.KindEOA, []byte("b")),
		common.AddressFromData(common.KindEOA, []byte("c")),
		common.AddressFromData(common.KindEOA, []byte("d")),
		common.AddressFromData(common.KindEOA, []byte("e")),
		common.AddressFromData(common.KindEOA, []byte("f")),
	}
	testBlock = &types.Block{Height: 7, Hash: common.Sha3Hash([]byte("block-7")), Timestamp: 1_700_000_000_000_000}
)

func icxAmount(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.ICX)) }

// newTestEngine returns an engine whose genesis funds the first half of
// accounts and deploys one token owned by accounts[0].
func newTestEngine(t *testing.T) (*core.Engine, common.Address) {
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
	loader := score.NewBuiltinLoader()
	token.Register(loader)
	registry, err := score.NewRegistry(db, loader, cfg.RegistryCacheSize)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	engine := core.NewEngine(&cfg, db, registry, icx.NewLedger(db))

	g := &core.Genesis{
		Timestamp: 1,
		Scores: []core.GenesisScore{{
			Owner:       accounts[0],
			ContentType: params.ContentTypeBuiltin,
			Content:     []byte(token.Name),
			Params:      map[string]string{"_name": "T", "_symbol": "T", "_decimals": "0x0", "_initialSupply": "0x3e8"},
		}},
	}
	for _, acc := range accounts[:3] {
		g.Accounts = append(g.Accounts, core.GenesisAccount{Address: acc, Balance: (*hexutil.Big)(icxAmount(10))})
	}
	addrs, err := engine.Genesis(context.Background(), g)
	if err != nil {
		t.Fatalf("genesis failed: %v", err)
	}
	return engine, addrs[0]
}

type txMaker struct {
	t     *testing.T
	nonce uint64
}

func (m *txMaker) transfer(from, to common.Address, value *big.Int) *types.Transaction {
	m.nonce++
	tx := &types.Transaction{
		From:      from,
		To:        to,
		Value:     value,
		StepLimit: params.InvokeStepLimit,
		Timestamp: testBlock.Timestamp + m.nonce,
		Nonce:     m.nonce,
	}
	tx.Hash = tx.ComputeHash()
	return tx
}

func (m *txMaker) call(from, to common.Address, method string, args map[string]string) *types.Transaction {
	data, err := score.MakeCall(method, args)
	require.NoError(m.t, err)
	tx := m.transfer(from, to, nil)
	tx.DataType = params.DataTypeCall
	tx.Data = data
	tx.Hash = tx.ComputeHash()
	return tx
}

// testBlockTxs mixes independent transfers with chains where a later
// transaction spends what an earlier one received.
func testBlockTxs(t *testing.T, tok common.Address) []*types.Transaction {
	m := &txMaker{t: t}
	a, b, c, d, e, f := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]
	return []*types.Transaction{
		m.transfer(a, d, icxAmount(1)),
		m.transfer(b, e, icxAmount(2)),
		m.transfer(d, f, icxAmount(1)), // funded by tx 0
		m.transfer(e, f, icxAmount(5)), // fails: only 2 received
		m.transfer(c, a, icxAmount(3)),
		m.call(a, tok, "transfer", map[string]string{"_to": b.String(), "_value": "0x64"}),
		m.call(b, tok, "transfer", map[string]string{"_to": c.String(), "_value": "0x32"}), // funded by tx 5
		m.call(c, tok, "transfer", map[string]string{"_to": d.String(), "_value": "0x33"}), // fails: only 50 received
		m.transfer(f, c, icxAmount(1)),
	}
}

func TestExecuteBlockMatchesSerial(t *testing.T) {
	serial, tok := newTestEngine(t)
	concurrent, tok2 := newTestEngine(t)
	require.Equal(t, tok, tok2)

	txs := testBlockTxs(t, tok)
	want, err := serial.ApplyBlock(context.Background(), testBlock, txs)
	require.NoError(t, err)

	x := NewExecutor(concurrent, 4)
	have, err := x.ExecuteBlock(context.Background(), testBlock, txs)
	require.NoError(t, err)
	require.Len(t, have, len(want))

	for i := range want {
		w, h := want[i], have[i]
		if w.Status != h.Status {
			t.Fatalf("tx %d: status mismatch: have %d, want %d", i, h.Status, w.Status)
		}
		assert.Equal(t, w.TxIndex, h.TxIndex, "tx %d", i)
		assert.Equal(t, w.StepUsed, h.StepUsed, "tx %d", i)
		assert.Equal(t, w.LogsBloom, h.LogsBloom, "tx %d", i)
		assert.Equal(t, len(w.EventLogs), len(h.EventLogs), "tx %d", i)
		if w.Failure != nil {
			require.NotNil(t, h.Failure, "tx %d", i)
			assert.Equal(t, w.Failure.Code, h.Failure.Code, "tx %d", i)
		}
	}
	assert.True(t, have[3].Failed())
	assert.True(t, have[7].Failed())
	assert.False(t, have[2].Failed())
	assert.False(t, have[6].Failed())

	for _, acc := range accounts {
		wb, err := serial.Balance(context.Background(), acc)
		require.NoError(t, err)
		hb, err := concurrent.Balance(context.Background(), acc)
		require.NoError(t, err)
		if wb.Cmp(hb) != 0 {
			t.Errorf("balance of %v mismatch: have %v, want %v", acc, hb, wb)
		}
		wt, err := serial.Query(context.Background(), testBlock, &core.QueryRequest{To: tok, Method: "balanceOf", Params: map[string]string{"_owner": acc.String()}})
		require.NoError(t, err)
		ht, err := concurrent.Query(context.Background(), testBlock, &core.QueryRequest{To: tok, Method: "balanceOf", Params: map[string]string{"_owner": acc.String()}})
		require.NoError(t, err)
		assert.True(t, types.EqualValues(wt, ht), "token balance of %v", acc)
	}
}

func TestExecuteBlockSmall(t *testing.T) {
	engine, _ := newTestEngine(t)
	m := &txMaker{t: t}
	x := NewExecutor(engine, 4)

	receipts, err := x.ExecuteBlock(context.Background(), testBlock, nil)
	require.NoError(t, err)
	assert.Empty(t, receipts)

	receipts, err = x.ExecuteBlock(context.Background(), testBlock, []*types.Transaction{m.transfer(accounts[0], accounts[5], icxAmount(1))})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.False(t, receipts[0].Failed())
}

func TestNewExecutorWorkers(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.Equal(t, 3, NewExecutor(engine, 3).Workers())
	assert.Equal(t, params.DefaultContextPoolSize, NewExecutor(engine, 1<<20).Workers())
	assert.Positive(t, NewExecutor(engine, 0).Workers())
}

func TestQueryAll(t *testing.T) {
	engine, tok := newTestEngine(t)
	x := NewExecutor(engine, 4)

	reqs := []*core.QueryRequest{
		{To: tok, Method: "symbol"},
		{To: tok, Method: "balanceOf", Params: map[string]string{"_owner": accounts[0].String()}},
		{To: tok, Method: "transfer", Params: map[string]string{"_to": accounts[1].String(), "_value": "0x1"}},
		{To: accounts[1], Method: "symbol"},
	}
	out, err := x.QueryAll(context.Background(), testBlock, reqs)
	require.NoError(t, err)
	require.Len(t, out, len(reqs))

	require.NoError(t, out[0].Err)
	assert.Equal(t, "T", out[0].Value.String())
	require.NoError(t, out[1].Err)
	assert.Equal(t, int64(1000), out[1].Value.(types.Int).Big().Int64())
	assert.Error(t, out[2].Err)
	assert.Error(t, out[3].Err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = x.QueryAll(ctx, testBlock, reqs)
	assert.ErrorIs(t, err, context.Canceled)
}
