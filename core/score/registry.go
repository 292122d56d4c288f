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

package score

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

// deployRecord is the persisted form of a deployment, stored in the
// storage of params.ZeroScoreAddress under the score's address.
type deployRecord struct {
	Owner       []byte
	ContentType string
	Content     []byte
	TxHash      common.Hash
}

func (r *deployRecord) owner() common.Address {
	addr, err := common.BytesToAddress(r.Owner)
	if err != nil {
		return common.Address{}
	}
	return addr
}

// Registry resolves score addresses to loaded implementations. Records are
// read through the caller's transaction batch, so a score deployed earlier
// in the same call tree is visible before commit. Loaded scores are cached
// by record content.
type Registry struct {
	db     *state.Database
	loader Loader
	cache  *lru.ARCCache // hash(address, record) -> *Info
}

// NewRegistry creates a registry caching up to size loaded scores.
func NewRegistry(db *state.Database, loader Loader, size int) (*Registry, error) {
	if size <= 0 {
		size = params.DefaultRegistryCacheSize
	}
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Registry{db: db, loader: loader, cache: cache}, nil
}

var _ vm.ScoreResolver = (*Registry)(nil)

func (r *Registry) record(ctx *vm.Context, addr common.Address) ([]byte, *deployRecord, error) {
	raw, err := r.db.Get(ctx.Batch, params.ZeroScoreAddress, addr)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %v", vm.ErrScoreNotFound, addr)
	}
	if err != nil {
		return nil, nil, err
	}
	rec := new(deployRecord)
	if err := rlp.DecodeBytes(raw, rec); err != nil {
		return nil, nil, fmt.Errorf("invalid deployment record of %v: %w", addr, err)
	}
	return raw, rec, nil
}

// Get returns the deployed score at addr.
func (r *Registry) Get(ctx *vm.Context, addr common.Address) (*Info, error) {
	if ctx == nil {
		return nil, vm.ErrNoActiveContext
	}
	if !addr.IsContract() {
		return nil, fmt.Errorf("%w: %v is not a contract address", vm.ErrScoreNotFound, addr)
	}
	raw, rec, err := r.record(ctx, addr)
	if err != nil {
		return nil, err
	}
	key := common.Sha3Hash(addr[:], raw)
	if cached, ok := r.cache.Get(key); ok {
		registryHitMeter.Mark(1)
		return cached.(*Info), nil
	}
	registryMissMeter.Mark(1)
	s, err := r.loader.Load(rec.ContentType, rec.Content)
	if err != nil {
		return nil, err
	}
	info, err := newInfo(addr, rec, s)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, info)
	return info, nil
}

// IsDeployed reports whether a deployment record exists for addr.
func (r *Registry) IsDeployed(ctx *vm.Context, addr common.Address) (bool, error) {
	if ctx == nil {
		return false, vm.ErrNoActiveContext
	}
	_, _, err := r.record(ctx, addr)
	if errors.Is(err, vm.ErrScoreNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Owner returns the deployer of addr.
func (r *Registry) Owner(ctx *vm.Context, addr common.Address) (common.Address, error) {
	if ctx == nil {
		return common.Address{}, vm.ErrNoActiveContext
	}
	_, rec, err := r.record(ctx, addr)
	if err != nil {
		return common.Address{}, err
	}
	return rec.owner(), nil
}

// Deploy loads and validates the content, then stages the deployment record
// of addr in ctx's batch. Redeploying an existing score is an update and is
// restricted to its owner; update reports which case applied.
func (r *Registry) Deploy(ctx *vm.Context, addr, owner common.Address, contentType string, content []byte) (info *Info, update bool, err error) {
	if ctx == nil {
		return nil, false, vm.ErrNoActiveContext
	}
	if ctx.ReadOnly() {
		return nil, false, fmt.Errorf("%w: deploy in %v context", vm.ErrWriteProtected, ctx.Type)
	}
	if !addr.IsContract() || params.IsSystemAddress(addr) {
		return nil, false, fmt.Errorf("%w: cannot deploy to %v", vm.ErrAccessDenied, addr)
	}
	prevOwner, err := r.Owner(ctx, addr)
	switch {
	case err == nil:
		if prevOwner != owner {
			return nil, false, fmt.Errorf("%w: %v owns %v", ErrNotOwner, prevOwner, addr)
		}
		update = true
	case !errors.Is(err, vm.ErrScoreNotFound):
		return nil, false, err
	}
	s, err := r.loader.Load(contentType, content)
	if err != nil {
		return nil, false, err
	}
	rec := &deployRecord{
		Owner:       owner.Bytes(),
		ContentType: contentType,
		Content:     common.CopyBytes(content),
	}
	if ctx.Tx != nil {
		rec.TxHash = ctx.Tx.Hash
	}
	if info, err = newInfo(addr, rec, s); err != nil {
		return nil, false, err
	}
	raw, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return nil, false, err
	}
	ctx.Batch.Set(params.ZeroScoreAddress, addr, raw)
	r.cache.Add(common.Sha3Hash(addr[:], raw), info)
	log.Debug("Score deployment staged", "score", addr, "owner", owner, "type", contentType, "update", update)
	return info, update, nil
}
