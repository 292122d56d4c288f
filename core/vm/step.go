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

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/tos-network/gscore/params"
)

// StepCounter meters the work of one call tree. Every frame of the tree
// shares the same counter, so nested calls draw from the caller's budget.
// used never exceeds limit: a charge that would cross it fails and leaves
// the counter untouched.
type StepCounter struct {
	limit uint64
	used  uint64
	costs params.StepCosts
}

// NewStepCounter returns a counter with the given ceiling. costs may be nil
// if only raw Consume calls are made.
func NewStepCounter(limit uint64, costs params.StepCosts) *StepCounter {
	return &StepCounter{limit: limit, costs: costs}
}

// Consume charges amount steps.
func (s *StepCounter) Consume(amount uint64) error {
	total, overflow := math.SafeAdd(s.used, amount)
	if overflow || total > s.limit {
		return fmt.Errorf("%w: used %d, requested %d, limit %d", ErrOutOfStep, s.used, amount, s.limit)
	}
	s.used = total
	return nil
}

// Apply charges count units of the configured cost of t.
func (s *StepCounter) Apply(t params.StepType, count uint64) error {
	amount, overflow := math.SafeMul(s.costs.Cost(t), count)
	if overflow {
		return fmt.Errorf("%w: %v cost overflows", ErrOutOfStep, t)
	}
	return s.Consume(amount)
}

// Cost returns the configured unit cost of t.
func (s *StepCounter) Cost(t params.StepType) uint64 { return s.costs.Cost(t) }

func (s *StepCounter) Used() uint64  { return s.used }
func (s *StepCounter) Limit() uint64 { return s.limit }

// Remaining returns the steps left before the limit is hit.
func (s *StepCounter) Remaining() uint64 { return s.limit - s.used }
