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

package core

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/kvstore"
	"github.com/tos-network/gscore/params"
)

// host is the score.Host of one frame.
type host struct {
	rt    *runtime
	frame *vm.Context
	info  *score.Info
}

var _ score.Host = (*host)(nil)

func (h *host) Address() common.Address { return h.info.Address }
func (h *host) Owner() common.Address   { return h.info.Owner }
func (h *host) Msg() *types.Message     { return h.frame.Msg }
func (h *host) Tx() *types.Transaction  { return h.frame.Tx }
func (h *host) Block() *types.Block     { return h.frame.Block }
func (h *host) Context() *vm.Context    { return h.frame }

func (h *host) DB() score.DB {
	return &scoreDB{db: h.rt.engine.db, frame: h.frame, score: h.info.Address}
}

func (h *host) Emit(event string, args vm.Args) error {
	schema, ok := h.info.Events.Lookup(event)
	if !ok {
		return fmt.Errorf("%w: %s is not declared by %v", vm.ErrEventLog, event, h.info.Address)
	}
	return vm.EmitEventLog(h.frame, h.info.Address, schema, args)
}

func (h *host) Call(to common.Address, method string, args vm.Args, value *big.Int) (types.Value, error) {
	return h.rt.call(h.frame, to, method, args, value)
}

func (h *host) Transfer(to common.Address, amount *big.Int) error {
	if err := h.frame.Steps.Apply(params.StepAPICall, 1); err != nil {
		return err
	}
	return h.rt.engine.ledger.Transfer(h.frame, h.info.Address, to, amount)
}

func (h *host) Balance(addr common.Address) (*big.Int, error) {
	if err := h.frame.Steps.Apply(params.StepAPICall, 1); err != nil {
		return nil, err
	}
	return h.rt.engine.ledger.Balance(h.frame, addr)
}

func (h *host) Revert(code uint64, msg string) error { return vm.NewRevert(code, msg) }

// scoreDB is the metered storage view of one score in one frame.
type scoreDB struct {
	db    *state.Database
	frame *vm.Context
	score common.Address
}

func (d *scoreDB) Get(key common.Address) ([]byte, error) {
	v, err := d.db.Get(d.frame.Batch, d.score, key)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return nil, err
	}
	if cerr := d.frame.Steps.Apply(kvstore.ReadSteps(v)); cerr != nil {
		return nil, cerr
	}
	return v, err
}

func (d *scoreDB) Set(key common.Address, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return d.write(key, value)
}

func (d *scoreDB) Delete(key common.Address) error { return d.write(key, nil) }

func (d *scoreDB) write(key common.Address, value []byte) error {
	if d.frame.ReadOnly() {
		return fmt.Errorf("%w: storage write in %v/%v frame", vm.ErrWriteProtected, d.frame.Type, d.frame.FuncType)
	}
	prev, err := d.db.Get(d.frame.Batch, d.score, key)
	existed := err == nil
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return err
	}
	if err := d.frame.Steps.Apply(kvstore.WriteSteps(prev, existed, value)); err != nil {
		return err
	}
	d.frame.Batch.Set(d.score, key, value)
	return nil
}
