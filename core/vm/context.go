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

// Package vm holds the execution context of score calls: the per-frame
// context, the per-thread frame stack, the bounded context factory, step
// metering and event log emission.
package vm

import (
	"fmt"
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
)

// ContextType is the mode a call tree runs in.
type ContextType uint8

const (
	Genesis ContextType = iota
	Invoke
	Query
)

func (t ContextType) String() string {
	switch t {
	case Genesis:
		return "GENESIS"
	case Invoke:
		return "INVOKE"
	case Query:
		return "QUERY"
	default:
		return fmt.Sprintf("ContextType(%d)", uint8(t))
	}
}

// FuncType tells whether the executing method may change state.
type FuncType uint8

const (
	Writable FuncType = iota
	ReadOnly
)

func (t FuncType) String() string {
	if t == ReadOnly {
		return "READONLY"
	}
	return "WRITABLE"
}

// ScoreResolver is the view of the score registry a frame needs to resolve
// nested calls.
type ScoreResolver interface {
	IsDeployed(ctx *Context, addr common.Address) (bool, error)
	Owner(ctx *Context, addr common.Address) (common.Address, error)
}

// Currency moves native value. A successful Transfer emits the reserved
// transfer event on ctx.
type Currency interface {
	Transfer(ctx *Context, from, to common.Address, amount *big.Int) error
	Balance(ctx *Context, addr common.Address) (*big.Int, error)
}

// Context is one call frame. The step counter, log buffer, traces and
// transaction batch belong to the top frame of a call tree; nested frames
// share them.
type Context struct {
	Type     ContextType
	FuncType FuncType

	Tx    *types.Transaction
	Msg   *types.Message
	Block *types.Block

	Steps  *StepCounter
	Logs   *LogBuffer
	Traces *TraceBuffer
	Batch  *state.TransactionBatch

	Registry ScoreResolver
	Currency Currency

	// Current is the score whose code runs in this frame; zero for
	// transfers between accounts.
	Current common.Address
	Depth   int

	parent *Context
	pooled bool
}

// ReadOnly reports whether the frame must reject state and log mutations.
func (c *Context) ReadOnly() bool {
	return c.Type == Query || c.FuncType == ReadOnly
}

// Parent returns the calling frame, nil for the top frame.
func (c *Context) Parent() *Context { return c.parent }

// Root returns the top frame of the call tree.
func (c *Context) Root() *Context {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Nested derives the frame of a call from c into the score at to. The
// callee cannot be writable when the caller is read-only.
func (c *Context) Nested(to common.Address, msg *types.Message, funcType FuncType) *Context {
	if c.ReadOnly() {
		funcType = ReadOnly
	}
	return &Context{
		Type:     c.Type,
		FuncType: funcType,
		Tx:       c.Tx,
		Msg:      msg,
		Block:    c.Block,
		Steps:    c.Steps,
		Logs:     c.Logs,
		Traces:   c.Traces,
		Batch:    c.Batch,
		Registry: c.Registry,
		Currency: c.Currency,
		Current:  to,
		Depth:    c.Depth + 1,
		parent:   c,
	}
}

// Snapshot marks the shared buffers so a failed nested call can be undone.
type Snapshot struct {
	logs  int
	batch int
}

// Snapshot captures the log buffer and batch positions.
func (c *Context) Snapshot() Snapshot {
	snap := Snapshot{logs: c.Logs.Snapshot(), batch: -1}
	if c.Batch != nil {
		snap.batch = c.Batch.Snapshot()
	}
	return snap
}

// RevertToSnapshot drops logs and writes made after snap was taken.
func (c *Context) RevertToSnapshot(snap Snapshot) {
	c.Logs.RevertToSnapshot(snap.logs)
	if c.Batch != nil && snap.batch >= 0 {
		c.Batch.RevertToSnapshot(snap.batch)
	}
}

// Reset clears every field so the frame can be recycled.
func (c *Context) Reset() {
	pooled := c.pooled
	*c = Context{pooled: pooled}
}

func (c *Context) String() string {
	return fmt.Sprintf("Context{type=%v func=%v score=%v depth=%d}", c.Type, c.FuncType, c.Current, c.Depth)
}
