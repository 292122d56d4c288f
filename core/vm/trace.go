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
	"fmt"
	"math/big"

	"github.com/tos-network/gscore/common"
)

// TraceType classifies diagnostic records.
type TraceType uint8

const (
	TraceCall TraceType = iota
	TraceTransfer
	TraceRevert
	TraceDeploy
)

func (t TraceType) String() string {
	switch t {
	case TraceCall:
		return "call"
	case TraceTransfer:
		return "transfer"
	case TraceRevert:
		return "revert"
	case TraceDeploy:
		return "deploy"
	}
	return fmt.Sprintf("TraceType(%d)", uint8(t))
}

// Trace is a diagnostic record of an inter-account interaction.
type Trace struct {
	Type   TraceType
	From   common.Address
	To     common.Address
	Value  *big.Int
	Method string
	Reason string
}

// TraceBuffer collects traces of a call tree. Unlike logs, traces survive
// a reverted nested call so the failure stays visible.
type TraceBuffer struct {
	traces []Trace
}

// Add appends a record.
func (b *TraceBuffer) Add(t Trace) { b.traces = append(b.traces, t) }

// Traces returns the records in order.
func (b *TraceBuffer) Traces() []Trace {
	out := make([]Trace, len(b.traces))
	copy(out, b.traces)
	return out
}

func (b *TraceBuffer) Len() int { return len(b.traces) }
