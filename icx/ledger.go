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

// Package icx implements the native currency ledger. Balances live in the
// storage of the ICX engine system score and move through the call tree's
// transaction batch, so a failed transaction never leaves a partial
// transfer behind.
package icx

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

var (
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", vm.ErrOutOfBalance)
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", vm.ErrInvalidParams)
	ErrBalanceOverflow     = fmt.Errorf("%w: balance overflow", vm.ErrInvalidParams)
	ErrMintOutsideGenesis  = fmt.Errorf("%w: mint outside genesis", vm.ErrAccessDenied)
)

// totalSupplyKey holds the minted supply inside the engine's storage.
var totalSupplyKey = common.AddressFromData(common.KindContract, []byte("icx.totalSupply"))

// Ledger is the vm.Currency backed by score storage.
type Ledger struct {
	db *state.Database
}

// NewLedger creates a ledger reading committed balances from db.
func NewLedger(db *state.Database) *Ledger {
	return &Ledger{db: db}
}

var _ vm.Currency = (*Ledger)(nil)

// Balance returns the balance of addr as seen by ctx.
func (l *Ledger) Balance(ctx *vm.Context, addr common.Address) (*big.Int, error) {
	if ctx == nil {
		return nil, vm.ErrNoActiveContext
	}
	bal, err := l.read(ctx, addr)
	if err != nil {
		return nil, err
	}
	return bal.ToBig(), nil
}

// TotalSupply returns the amount minted at genesis.
func (l *Ledger) TotalSupply(ctx *vm.Context) (*big.Int, error) {
	if ctx == nil {
		return nil, vm.ErrNoActiveContext
	}
	supply, err := l.read(ctx, totalSupplyKey)
	if err != nil {
		return nil, err
	}
	return supply.ToBig(), nil
}

// Transfer moves amount from one account to another and emits the reserved
// transfer event. A zero amount is a no-op.
func (l *Ledger) Transfer(ctx *vm.Context, from, to common.Address, amount *big.Int) error {
	if ctx == nil {
		return vm.ErrNoActiveContext
	}
	if ctx.ReadOnly() {
		return fmt.Errorf("%w: transfer in %v/%v context", vm.ErrWriteProtected, ctx.Type, ctx.FuncType)
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	if value.IsZero() {
		return nil
	}
	fromBal, err := l.read(ctx, from)
	if err != nil {
		return err
	}
	if fromBal.Lt(value) {
		return fmt.Errorf("%w: %v has %v, needs %v", ErrInsufficientBalance, from, fromBal, value)
	}
	var toBal *uint256.Int
	if from != to {
		if toBal, err = l.read(ctx, to); err != nil {
			return err
		}
		if _, overflow := new(uint256.Int).AddOverflow(toBal, value); overflow {
			return ErrBalanceOverflow
		}
	}
	score := ctx.Current
	if score == (common.Address{}) {
		score = from
	}
	// Emission charges steps and may fail, so balances are written after it.
	if err := vm.EmitTransferEvent(ctx, score, from, to, value.ToBig()); err != nil {
		return err
	}
	if toBal != nil {
		l.write(ctx, from, new(uint256.Int).Sub(fromBal, value))
		l.write(ctx, to, new(uint256.Int).Add(toBal, value))
	}
	ctx.Traces.Add(vm.Trace{Type: vm.TraceTransfer, From: from, To: to, Value: value.ToBig()})
	log.Trace("ICX transferred", "from", from, "to", to, "amount", value)
	return nil
}

// Mint credits to with new currency. Only the genesis context may mint.
func (l *Ledger) Mint(ctx *vm.Context, to common.Address, amount *big.Int) error {
	if ctx == nil {
		return vm.ErrNoActiveContext
	}
	if ctx.Type != vm.Genesis {
		return ErrMintOutsideGenesis
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	supply, err := l.read(ctx, totalSupplyKey)
	if err != nil {
		return err
	}
	bal, err := l.read(ctx, to)
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, value)
	if overflow {
		return ErrBalanceOverflow
	}
	l.write(ctx, totalSupplyKey, newSupply)
	l.write(ctx, to, new(uint256.Int).Add(bal, value))
	log.Debug("ICX minted", "to", to, "amount", value)
	return nil
}

func (l *Ledger) read(ctx *vm.Context, addr common.Address) (*uint256.Int, error) {
	raw, err := l.db.Get(ctx.Batch, params.ICXEngineAddress, addr)
	if errors.Is(err, state.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(raw), nil
}

func (l *Ledger) write(ctx *vm.Context, addr common.Address, v *uint256.Int) {
	if v.IsZero() {
		ctx.Batch.Delete(params.ICXEngineAddress, addr)
		return
	}
	ctx.Batch.Set(params.ICXEngineAddress, addr, v.Bytes())
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("%w: %v exceeds 256 bits", ErrInvalidAmount, amount)
	}
	return v, nil
}
