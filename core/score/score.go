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

// Package score defines the contract model of the runtime: scores expose
// typed external methods and declare their events, are instantiated by a
// Loader from deployment content and are resolved through a Registry.
package score

import (
	"fmt"
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/kvstore"
)

// FallbackMethod receives plain value transfers to a score.
const FallbackMethod = "fallback"

// Method is an external entry point of a score.
type Method struct {
	Name     string
	Params   []vm.Param
	Returns  types.ValueType // TypeInvalid when nothing is returned
	ReadOnly bool
	Payable  bool
	Fn       func(h Host, args []types.Value) (types.Value, error)
}

// FuncType returns the frame type the method runs under.
func (m *Method) FuncType() vm.FuncType {
	if m.ReadOnly {
		return vm.ReadOnly
	}
	return vm.Writable
}

// Validate checks the declaration.
func (m *Method) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: unnamed method", ErrInvalidScore)
	}
	if m.Fn == nil {
		return fmt.Errorf("%w: method %s has no body", ErrInvalidScore, m.Name)
	}
	if m.ReadOnly && m.Payable {
		return fmt.Errorf("%w: read-only method %s cannot be payable", ErrInvalidScore, m.Name)
	}
	if m.Name == FallbackMethod && (len(m.Params) > 0 || m.ReadOnly || !m.Payable) {
		return fmt.Errorf("%w: fallback must be payable, writable and take no parameters", ErrInvalidScore)
	}
	seen := make(map[string]struct{}, len(m.Params))
	for _, p := range m.Params {
		if _, err := types.ParseValueType(p.Type.String()); err != nil || p.Name == "" {
			return fmt.Errorf("%w: %s has an invalid parameter %q", ErrInvalidScore, m.Name, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s repeats parameter %q", ErrInvalidScore, m.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Score is a contract implementation. Instances hold no state of their
// own; everything persistent goes through Host.DB.
type Score interface {
	Methods() []Method
	Events() []vm.EventSchema
	InstallParams() []vm.Param
	OnInstall(h Host, args []types.Value) error
	OnUpdate(h Host, args []types.Value) error
}

// DB is the storage of the executing score.
type DB = kvstore.DB

// Host is the runtime as seen by executing score code.
type Host interface {
	// Address is the executing score.
	Address() common.Address
	// Owner is the deployer of the executing score.
	Owner() common.Address
	Msg() *types.Message
	Tx() *types.Transaction
	Block() *types.Block
	DB() DB

	// Emit records one of the score's declared events.
	Emit(event string, args vm.Args) error
	// Call invokes a method of another score, sending value along.
	Call(to common.Address, method string, args vm.Args, value *big.Int) (types.Value, error)
	// Transfer sends native currency from the executing score.
	Transfer(to common.Address, amount *big.Int) error
	Balance(addr common.Address) (*big.Int, error)
	// Revert returns the error that aborts the call with a user code.
	Revert(code uint64, msg string) error

	Context() *vm.Context
}
