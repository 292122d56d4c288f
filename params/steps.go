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

package params

import "fmt"

// StepType identifies an operation with a configured step cost.
type StepType int

const (
	StepDefault StepType = iota
	StepContractCall
	StepContractCreate
	StepContractUpdate
	StepContractDestruct
	StepContractSet
	StepGet
	StepSet
	StepReplace
	StepDelete
	StepInput
	StepEventLog
	StepAPICall
	stepTypeCount
)

var stepTypeNames = [stepTypeCount]string{
	StepDefault:          "default",
	StepContractCall:     "contractCall",
	StepContractCreate:   "contractCreate",
	StepContractUpdate:   "contractUpdate",
	StepContractDestruct: "contractDestruct",
	StepContractSet:      "contractSet",
	StepGet:              "get",
	StepSet:              "set",
	StepReplace:          "replace",
	StepDelete:           "delete",
	StepInput:            "input",
	StepEventLog:         "eventLog",
	StepAPICall:          "apiCall",
}

func (t StepType) String() string {
	if t < 0 || t >= stepTypeCount {
		return fmt.Sprintf("StepType(%d)", int(t))
	}
	return stepTypeNames[t]
}

// StepTypeFromString resolves a configuration key to its step type.
func StepTypeFromString(s string) (StepType, bool) {
	for i, name := range stepTypeNames {
		if name == s {
			return StepType(i), true
		}
	}
	return 0, false
}

// StepCosts maps every step type to its unit cost. Costs are unsigned:
// refunds are not modelled so the counter only grows.
type StepCosts map[string]uint64

// Cost returns the configured cost of t, zero when unset.
func (c StepCosts) Cost(t StepType) uint64 {
	return c[t.String()]
}

// Validate rejects unknown keys.
func (c StepCosts) Validate() error {
	for k := range c {
		if _, ok := StepTypeFromString(k); !ok {
			return fmt.Errorf("unknown step type %q", k)
		}
	}
	return nil
}

// Copy returns an independent copy of c.
func (c StepCosts) Copy() StepCosts {
	cp := make(StepCosts, len(c))
	for k, v := range c {
		cp[k] = v
	}
	return cp
}

// DefaultStepCosts mirrors the mainnet step table.
var DefaultStepCosts = StepCosts{
	"default":          100_000,
	"contractCall":     25_000,
	"contractCreate":   1_000_000_000,
	"contractUpdate":   1_600_000_000,
	"contractDestruct": 0,
	"contractSet":      30_000,
	"get":              0,
	"set":              320,
	"replace":          80,
	"delete":           0,
	"input":            200,
	"eventLog":         100,
	"apiCall":          10_000,
}
