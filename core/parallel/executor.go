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

// Package parallel executes the transactions of a block concurrently while
// producing the same receipts and state as serial execution.
//
// Every transaction first runs against the state committed before the
// block, recording the slots it reads. Results are then merged in block
// order; a transaction that read a slot written by an earlier transaction
// of the block is executed again on top of the merged state.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/core"
	"github.com/tos-network/gscore/core/types"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the minimum number of transactions for the parallel path.
const parallelThreshold = 2

// Executor runs blocks and query batches on a bounded set of workers.
type Executor struct {
	engine  *core.Engine
	workers int
}

// NewExecutor creates an executor over engine. A non-positive workers uses
// one worker per CPU. The count never exceeds the engine's context pool.
func NewExecutor(engine *core.Engine, workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if max := engine.ContextFactory().Max(); workers > max {
		workers = max
	}
	return &Executor{engine: engine, workers: workers}
}

// Workers returns the concurrency limit.
func (x *Executor) Workers() int { return x.workers }

// ExecuteBlock applies txs and returns their receipts in block order.
func (x *Executor) ExecuteBlock(ctx context.Context, block *types.Block, txs []*types.Transaction) ([]*types.Receipt, error) {
	if len(txs) < parallelThreshold || x.workers < 2 {
		return x.engine.ApplyBlock(ctx, block, txs)
	}
	start := time.Now()
	defer blockTimer.UpdateSince(start)

	results := make([]*core.ExecutionResult, len(txs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			res, err := x.engine.ExecuteTracked(gctx, block, tx, uint64(i))
			if err != nil {
				return fmt.Errorf("could not execute tx %d [%v]: %w", i, tx.Hash.Hex(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	txsMeter.Mark(int64(len(txs)))

	// Serial merge in block order.
	var (
		receipts = make([]*types.Receipt, len(txs))
		written  = mapset.NewThreadUnsafeSet()
		redone   int
	)
	for i, res := range results {
		if conflicts(res, written) {
			var err error
			if res, err = x.engine.ExecuteTracked(ctx, block, txs[i], uint64(i)); err != nil {
				return nil, fmt.Errorf("could not re-execute tx %d [%v]: %w", i, txs[i].Hash.Hex(), err)
			}
			redone++
		}
		if err := x.engine.Commit(res); err != nil {
			return nil, err
		}
		if !res.Failed() {
			for key := range res.Batch.WriteSet().Iter() {
				written.Add(key)
			}
		}
		receipts[i] = res.Receipt
	}
	reexecMeter.Mark(int64(redone))
	log.Debug("Executed block in parallel", "height", block.Height, "txs", len(txs), "reexecuted", redone, "workers", x.workers, "elapsed", time.Since(start))
	return receipts, nil
}

// conflicts reports whether res depended on a slot in written.
func conflicts(res *core.ExecutionResult, written mapset.Set) bool {
	if written.Cardinality() == 0 {
		return false
	}
	reads := res.Batch.ReadSet()
	if reads == nil {
		return true
	}
	return reads.Intersect(written).Cardinality() > 0
}

// QueryResult is the outcome of one query of a batch.
type QueryResult struct {
	Value types.Value
	Err   error
}

// QueryAll runs reqs concurrently against committed state. A failing query
// only fails its own result; the error return is reserved for ctx.
func (x *Executor) QueryAll(ctx context.Context, block *types.Block, reqs []*core.QueryRequest) ([]QueryResult, error) {
	out := make([]QueryResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(x.workers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := x.engine.Query(ctx, block, req)
			out[i] = QueryResult{Value: v, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	queriesMeter.Mark(int64(len(reqs)))
	return out, nil
}
