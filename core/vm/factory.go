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

package vm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/semaphore"
)

// ContextFactory hands out top-level frames from a bounded pool. It is the
// only process-wide shared resource of the runtime; nested frames are
// derived with Context.Nested and do not count against the pool.
type ContextFactory struct {
	max  int64
	sem  *semaphore.Weighted
	pool sync.Pool
	live atomic.Int64
}

// NewContextFactory creates a factory allowing at most max live frames.
func NewContextFactory(max int) *ContextFactory {
	if max <= 0 {
		max = 1
	}
	return &ContextFactory{
		max:  int64(max),
		sem:  semaphore.NewWeighted(int64(max)),
		pool: sync.Pool{New: func() any { return new(Context) }},
	}
}

// Create waits for a free slot and returns a fresh frame of the given type.
// It fails with ErrContextPoolExhausted once ctx is done.
func (f *ContextFactory) Create(ctx context.Context, typ ContextType) (*Context, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		contextPoolExhaustedMeter.Mark(1)
		return nil, fmt.Errorf("%w: %v", ErrContextPoolExhausted, err)
	}
	return f.take(typ), nil
}

// TryCreate returns a frame without waiting.
func (f *ContextFactory) TryCreate(typ ContextType) (*Context, error) {
	if !f.sem.TryAcquire(1) {
		contextPoolExhaustedMeter.Mark(1)
		log.Debug("Context pool exhausted", "max", f.max)
		return nil, ErrContextPoolExhausted
	}
	return f.take(typ), nil
}

func (f *ContextFactory) take(typ ContextType) *Context {
	c := f.pool.Get().(*Context)
	c.Reset()
	c.pooled = true
	c.Type = typ
	if typ == Query {
		c.FuncType = ReadOnly
	}
	c.Logs = NewLogBuffer()
	c.Traces = new(TraceBuffer)
	contextLiveGauge.Update(f.live.Add(1))
	return c
}

// Destroy returns c to the pool. Frames not obtained from the factory and
// frames already destroyed are ignored.
func (f *ContextFactory) Destroy(c *Context) {
	if c == nil || !c.pooled {
		return
	}
	c.Reset()
	c.pooled = false
	f.pool.Put(c)
	contextLiveGauge.Update(f.live.Add(-1))
	f.sem.Release(1)
}

// Live returns the number of frames handed out and not yet destroyed.
func (f *ContextFactory) Live() int { return int(f.live.Load()) }

// Max returns the pool capacity.
func (f *ContextFactory) Max() int { return int(f.max) }
