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

// Package core implements the score execution engine: it turns ordered
// transactions into receipts by running score code inside metered,
// journaled call trees and commits their state changes.
package core

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/icx"
	"github.com/tos-network/gscore/params"
)

// Engine executes transactions and queries against a state database. It
// is safe for concurrent use; the context factory bounds how many call
// trees run at once.
type Engine struct {
	config   *params.Config
	db       *state.Database
	registry *score.Registry
	ledger   *icx.Ledger
	factory  *vm.ContextFactory
}

// NewEngine creates an engine. config must have been sanitized.
func NewEngine(config *params.Config, db *state.Database, registry *score.Registry, ledger *icx.Ledger) *Engine {
	return &Engine{
		config:   config,
		db:       db,
		registry: registry,
		ledger:   ledger,
		factory:  vm.NewContextFactory(config.ContextPoolSize),
	}
}

func (e *Engine) Config() *params.Config             { return e.config }
func (e *Engine) Database() *state.Database          { return e.db }
func (e *Engine) Registry() *score.Registry          { return e.registry }
func (e *Engine) Ledger() *icx.Ledger                { return e.ledger }
func (e *Engine) ContextFactory() *vm.ContextFactory { return e.factory }

// ExecutionResult is the outcome of running one transaction without
// committing it.
type ExecutionResult struct {
	Receipt *types.Receipt
	Return  types.Value
	Err     error // execution failure recorded in the receipt

	// Batch holds the pending writes; it is empty when Err is set.
	Batch *state.TransactionBatch
}

// Failed reports whether execution failed.
func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// acquire obtains a top-level frame, waiting at most the configured timeout.
func (e *Engine) acquire(ctx context.Context, typ vm.ContextType, limit uint64) (*vm.Context, error) {
	if e.config.ContextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ContextTimeout)
		defer cancel()
	}
	frame, err := e.factory.Create(ctx, typ)
	if err != nil {
		return nil, err
	}
	frame.Steps = vm.NewStepCounter(limit, e.config.StepCosts)
	frame.Batch = state.NewTransactionBatch()
	frame.Registry = e.registry
	frame.Currency = e.ledger
	return frame, nil
}

// Execute runs tx at position index of block without committing. The
// returned error is reserved for conditions that prevent execution
// altogether, such as an exhausted context pool; failures of the
// transaction itself are reported in the result and its receipt.
func (e *Engine) Execute(ctx context.Context, block *types.Block, tx *types.Transaction, index uint64) (*ExecutionResult, error) {
	return e.execute(ctx, block, tx, index, false)
}

// ExecuteTracked is Execute with read tracking enabled, so the result's
// batch reports every committed slot the transaction depended on.
func (e *Engine) ExecuteTracked(ctx context.Context, block *types.Block, tx *types.Transaction, index uint64) (*ExecutionResult, error) {
	return e.execute(ctx, block, tx, index, true)
}

func (e *Engine) execute(ctx context.Context, block *types.Block, tx *types.Transaction, index uint64, trackReads bool) (*ExecutionResult, error) {
	limit := tx.StepLimit
	if limit > e.config.InvokeStepLimit {
		limit = e.config.InvokeStepLimit
	}
	frame, err := e.acquire(ctx, vm.Invoke, limit)
	if err != nil {
		return nil, err
	}
	defer e.factory.Destroy(frame)

	if trackReads {
		frame.Batch.TrackReads()
	}
	frame.Tx = tx
	frame.Block = block
	frame.Msg = types.NewMessage(tx.From, tx.ValueOrZero())

	start := time.Now()
	rt := newRuntime(e, frame)
	ret, scoreAddr, execErr := rt.apply(tx)

	receipt := &types.Receipt{
		TxHash:       tx.Hash,
		TxIndex:      index,
		BlockHeight:  block.Height,
		BlockHash:    block.Hash,
		To:           tx.To,
		ScoreAddress: scoreAddr,
		Status:       types.ReceiptStatusSuccessful,
		StepUsed:     frame.Steps.Used(),
		StepLimit:    limit,
	}
	if execErr != nil {
		frame.Batch.Discard()
		frame.Logs.Reset()
		receipt.Status = types.ReceiptStatusFailed
		receipt.ScoreAddress = nil
		receipt.Failure = &types.Failure{Code: vm.FailureCode(execErr), Message: execErr.Error()}
		if errors.Is(execErr, vm.ErrOutOfStep) {
			receipt.StepUsed = limit
		}
		ret = nil
	}
	receipt.EventLogs = frame.Logs.Logs()
	receipt.LogsBloom = frame.Logs.Bloom()

	invokeTimer.UpdateSince(start)
	stepMeter.Mark(int64(receipt.StepUsed))
	if execErr != nil {
		failedMeter.Mark(1)
		log.Debug("Transaction failed", "hash", tx.Hash, "index", index, "code", receipt.Failure.Code, "steps", receipt.StepUsed, "err", execErr)
	} else {
		if scoreAddr != nil {
			log.Info("Score deployed", "score", *scoreAddr, "owner", tx.From, "hash", tx.Hash)
		}
		log.Debug("Transaction executed", "hash", tx.Hash, "index", index, "steps", receipt.StepUsed, "logs", len(receipt.EventLogs))
	}
	for _, t := range frame.Traces.Traces() {
		log.Trace("Execution trace", "hash", tx.Hash, "type", t.Type, "from", t.From, "to", t.To, "method", t.Method, "reason", t.Reason)
	}
	return &ExecutionResult{
		Receipt: receipt,
		Return:  ret,
		Err:     execErr,
		Batch:   frame.Batch,
	}, nil
}

// Commit writes the pending changes of an execution result.
func (e *Engine) Commit(res *ExecutionResult) error {
	if res.Failed() {
		return nil
	}
	n := res.Batch.Len()
	if err := e.db.Commit(res.Batch); err != nil {
		return fmt.Errorf("commit tx %v: %w", res.Receipt.TxHash, err)
	}
	commitEntriesMeter.Mark(int64(n))
	return nil
}

// ApplyTransaction executes tx and commits its changes when it succeeds.
// A failed transaction still yields a receipt and leaves state untouched.
func (e *Engine) ApplyTransaction(ctx context.Context, block *types.Block, tx *types.Transaction, index uint64) (*types.Receipt, error) {
	res, err := e.Execute(ctx, block, tx, index)
	if err != nil {
		return nil, err
	}
	if err := e.Commit(res); err != nil {
		return nil, err
	}
	return res.Receipt, nil
}

// ApplyBlock applies txs in order and returns their receipts.
func (e *Engine) ApplyBlock(ctx context.Context, block *types.Block, txs []*types.Transaction) ([]*types.Receipt, error) {
	receipts := make([]*types.Receipt, 0, len(txs))
	for i, tx := range txs {
		receipt, err := e.ApplyTransaction(ctx, block, tx, uint64(i))
		if err != nil {
			return nil, fmt.Errorf("could not apply tx %d [%v]: %w", i, tx.Hash.Hex(), err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// QueryRequest names a read-only method call.
type QueryRequest struct {
	From   common.Address    `json:"from"`
	To     common.Address    `json:"to"`
	Method string            `json:"method"`
	Params map[string]string `json:"params,omitempty"`
}

// Query runs a read-only method in a QUERY context. Nothing it does is
// ever committed.
func (e *Engine) Query(ctx context.Context, block *types.Block, req *QueryRequest) (types.Value, error) {
	frame, err := e.acquire(ctx, vm.Query, e.config.QueryStepLimit)
	if err != nil {
		return nil, err
	}
	defer e.factory.Destroy(frame)

	frame.Block = block
	frame.Msg = types.NewMessage(req.From, nil)
	frame.Tx = &types.Transaction{From: req.From, To: req.To}

	start := time.Now()
	defer queryTimer.UpdateSince(start)
	return newRuntime(e, frame).query(req)
}

// Balance returns the committed native balance of addr.
func (e *Engine) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	frame, err := e.acquire(ctx, vm.Query, e.config.QueryStepLimit)
	if err != nil {
		return nil, err
	}
	defer e.factory.Destroy(frame)
	return e.ledger.Balance(frame, addr)
}
