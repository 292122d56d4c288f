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
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

// runtime drives one call tree. Frames of the tree are pushed on its
// container while their score code runs.
type runtime struct {
	engine *Engine
	root   *vm.Context
	stack  *vm.Container
}

func newRuntime(e *Engine, root *vm.Context) *runtime {
	return &runtime{
		engine: e,
		root:   root,
		stack:  vm.NewContainer(e.config.MaxCallDepth),
	}
}

// apply executes a transaction in the root frame.
func (rt *runtime) apply(tx *types.Transaction) (types.Value, *common.Address, error) {
	frame := rt.root
	if err := frame.Steps.Apply(params.StepDefault, 1); err != nil {
		return nil, nil, err
	}
	if err := frame.Steps.Apply(params.StepInput, uint64(len(tx.Data))); err != nil {
		return nil, nil, err
	}
	if tx.From.IsContract() {
		return nil, nil, fmt.Errorf("%w: sender %v is a contract", vm.ErrAccessDenied, tx.From)
	}
	if err := rt.stack.Push(frame); err != nil {
		return nil, nil, err
	}
	defer rt.stack.Clear()

	switch tx.DataType {
	case params.DataTypeDeploy:
		if tx.ValueOrZero().Sign() != 0 {
			return nil, nil, fmt.Errorf("%w: deploy cannot carry value", vm.ErrInvalidParams)
		}
		payload, err := score.DecodeDeploy(tx.Data)
		if err != nil {
			return nil, nil, err
		}
		addr := tx.To
		if addr == params.ZeroScoreAddress {
			addr = score.NewScoreAddress(tx.From, tx.Timestamp, tx.Nonce)
		}
		if err := rt.deploy(frame, tx.From, addr, payload.ContentType, payload.Content, payload.Params); err != nil {
			return nil, nil, err
		}
		return nil, &addr, nil

	case params.DataTypeCall:
		payload, err := score.DecodeCall(tx.Data)
		if err != nil {
			return nil, nil, err
		}
		info, m, err := rt.resolve(frame, tx.To, payload.Method, frame.Msg.Value)
		if err != nil {
			return nil, nil, err
		}
		args, err := score.ConvertParams(m.Params, payload.Params)
		if err != nil {
			return nil, nil, err
		}
		frame.Current = tx.To
		if err := rt.engine.ledger.Transfer(frame, tx.From, tx.To, frame.Msg.Value); err != nil {
			return nil, nil, err
		}
		ret, err := rt.invoke(frame, info, m, args)
		return ret, nil, err

	case "", params.DataTypeMessage:
		if !tx.To.IsContract() {
			return nil, nil, rt.engine.ledger.Transfer(frame, tx.From, tx.To, frame.Msg.Value)
		}
		info, m, err := rt.resolve(frame, tx.To, score.FallbackMethod, frame.Msg.Value)
		if err != nil {
			return nil, nil, err
		}
		frame.Current = tx.To
		if err := rt.engine.ledger.Transfer(frame, tx.From, tx.To, frame.Msg.Value); err != nil {
			return nil, nil, err
		}
		_, err = rt.invoke(frame, info, m, nil)
		return nil, nil, err
	}
	return nil, nil, fmt.Errorf("%w: unknown data type %q", score.ErrInvalidPayload, tx.DataType)
}

// query runs a read-only method in the root frame.
func (rt *runtime) query(req *QueryRequest) (types.Value, error) {
	frame := rt.root
	if err := rt.stack.Push(frame); err != nil {
		return nil, err
	}
	defer rt.stack.Clear()

	info, m, err := rt.resolve(frame, req.To, req.Method, nil)
	if err != nil {
		return nil, err
	}
	if !m.ReadOnly {
		return nil, fmt.Errorf("%w: %s is not read-only", vm.ErrAccessDenied, m.Name)
	}
	args, err := score.ConvertParams(m.Params, req.Params)
	if err != nil {
		return nil, err
	}
	frame.Current = req.To
	return rt.invoke(frame, info, m, args)
}

// resolve finds an external method of the score at addr able to accept
// value.
func (rt *runtime) resolve(frame *vm.Context, addr common.Address, method string, value *big.Int) (*score.Info, *score.Method, error) {
	info, err := rt.engine.registry.Get(frame, addr)
	if err != nil {
		return nil, nil, err
	}
	m, ok := info.Method(method)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %v has no method %q", vm.ErrMethodNotFound, addr, method)
	}
	if value != nil && value.Sign() > 0 && !m.Payable {
		return nil, nil, fmt.Errorf("%w: %s", vm.ErrMethodNotPayable, method)
	}
	return info, m, nil
}

// invoke runs m of info in frame, which must be the active frame.
func (rt *runtime) invoke(frame *vm.Context, info *score.Info, m *score.Method, args []types.Value) (types.Value, error) {
	if err := frame.Steps.Apply(params.StepContractCall, 1); err != nil {
		return nil, err
	}
	if m.ReadOnly {
		frame.FuncType = vm.ReadOnly
	}
	frame.Traces.Add(vm.Trace{Type: vm.TraceCall, From: frame.Msg.Sender, To: info.Address, Value: frame.Msg.Value, Method: m.Name})

	ret, err := m.Fn(&host{rt: rt, frame: frame, info: info}, args)
	if err != nil {
		return nil, err
	}
	switch {
	case m.Returns == types.TypeInvalid:
		ret = nil
	case ret == nil || ret.Type() != m.Returns:
		return nil, fmt.Errorf("%w: %s returned %v, declared %v", vm.ErrScore, m.Name, ret, m.Returns)
	}
	return ret, nil
}

// call performs a nested score call from the active frame. A failed call
// leaves no writes or logs behind, while the caller may go on.
func (rt *runtime) call(caller *vm.Context, to common.Address, method string, args vm.Args, value *big.Int) (types.Value, error) {
	if value == nil {
		value = new(big.Int)
	}
	active, err := rt.stack.Current()
	if err != nil {
		return nil, err
	}
	if active != caller {
		return nil, fmt.Errorf("%w: caller %v is suspended at depth %d", vm.ErrNoActiveContext, caller.Current, caller.Depth)
	}
	if caller.ReadOnly() && value.Sign() > 0 {
		return nil, fmt.Errorf("%w: value sent from read-only frame", vm.ErrWriteProtected)
	}
	info, m, err := rt.resolve(caller, to, method, value)
	if err != nil {
		return nil, err
	}
	if caller.ReadOnly() && !m.ReadOnly {
		return nil, fmt.Errorf("%w: %s is not read-only", vm.ErrWriteProtected, method)
	}
	values, err := vm.BindParams(m.Params, args, vm.ErrInvalidParams)
	if err != nil {
		return nil, err
	}
	child := caller.Nested(to, types.NewMessage(caller.Current, value), m.FuncType())
	if err := rt.stack.Push(child); err != nil {
		return nil, fmt.Errorf("%w: depth %d", err, child.Depth)
	}
	defer rt.leave(child)

	snap := caller.Snapshot()
	ret, err := func() (types.Value, error) {
		if value.Sign() > 0 {
			if err := rt.engine.ledger.Transfer(caller, caller.Current, to, value); err != nil {
				return nil, err
			}
		}
		return rt.invoke(child, info, m, values)
	}()
	if err != nil {
		caller.RevertToSnapshot(snap)
		caller.Traces.Add(vm.Trace{Type: vm.TraceRevert, From: caller.Current, To: to, Value: value, Method: method, Reason: err.Error()})
		return nil, err
	}
	return ret, nil
}

// leave pops child, which must be the active frame.
func (rt *runtime) leave(child *vm.Context) {
	top, err := rt.stack.Pop()
	if err != nil || top != child {
		log.Error("Frame stack out of order", "depth", child.Depth, "score", child.Current, "err", err)
	}
}

// deploy installs or updates the score at addr and runs its hook.
func (rt *runtime) deploy(frame *vm.Context, owner, addr common.Address, contentType string, content []byte, raw map[string]string) error {
	if err := frame.Steps.Apply(params.StepContractSet, uint64(len(content))); err != nil {
		return err
	}
	info, update, err := rt.engine.registry.Deploy(frame, addr, owner, contentType, content)
	if err != nil {
		return err
	}
	hook, step := info.Score.OnInstall, params.StepContractCreate
	if update {
		hook, step = info.Score.OnUpdate, params.StepContractUpdate
	}
	if err := frame.Steps.Apply(step, 1); err != nil {
		return err
	}
	args, err := score.ConvertParams(info.Score.InstallParams(), raw)
	if err != nil {
		return err
	}
	frame.Current = addr
	frame.Traces.Add(vm.Trace{Type: vm.TraceDeploy, From: owner, To: addr})
	if err := hook(&host{rt: rt, frame: frame, info: info}, args); err != nil {
		return err
	}
	deployMeter.Mark(1)
	return nil
}
