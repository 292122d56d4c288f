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
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
	"github.com/tos-network/gscore/params"
)

// GenesisAccount is an initial native balance.
type GenesisAccount struct {
	Address common.Address `json:"address"`
	Balance *hexutil.Big   `json:"balance"`
}

// GenesisScore is a score installed at genesis. A zero Address derives one
// from the owner and the position in the list.
type GenesisScore struct {
	Address     common.Address    `json:"address,omitempty"`
	Owner       common.Address    `json:"owner"`
	ContentType string            `json:"contentType"`
	Content     hexutil.Bytes     `json:"content"`
	Params      map[string]string `json:"params,omitempty"`
}

// Genesis is the initial state of a database.
type Genesis struct {
	Timestamp uint64           `json:"timestamp"`
	Accounts  []GenesisAccount `json:"accounts"`
	Scores    []GenesisScore   `json:"scores"`
}

// LoadGenesis reads a JSON genesis file.
func LoadGenesis(file string) (*Genesis, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	g := new(Genesis)
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("invalid genesis file %s: %w", file, err)
	}
	return g, nil
}

// Block returns the genesis block metadata.
func (g *Genesis) Block() *types.Block {
	return &types.Block{Height: 0, Timestamp: g.Timestamp}
}

// Genesis mints the initial balances and installs the initial scores in a
// GENESIS context, then commits everything at once. It returns the
// addresses of the installed scores.
func (e *Engine) Genesis(ctx context.Context, g *Genesis) ([]common.Address, error) {
	frame, err := e.acquire(ctx, vm.Genesis, params.GenesisStepLimit)
	if err != nil {
		return nil, err
	}
	defer e.factory.Destroy(frame)
	frame.Block = g.Block()
	frame.Tx = &types.Transaction{Timestamp: g.Timestamp}

	for _, acc := range g.Accounts {
		if acc.Balance == nil {
			continue
		}
		if err := e.ledger.Mint(frame, acc.Address, (*big.Int)(acc.Balance)); err != nil {
			return nil, fmt.Errorf("genesis allocation to %v: %w", acc.Address, err)
		}
	}
	rt := newRuntime(e, frame)
	if err := rt.stack.Push(frame); err != nil {
		return nil, err
	}
	defer rt.stack.Clear()

	addrs := make([]common.Address, 0, len(g.Scores))
	for i, s := range g.Scores {
		addr := s.Address
		if addr == (common.Address{}) {
			addr = score.NewScoreAddress(s.Owner, g.Timestamp, uint64(i))
		}
		frame.Msg = types.NewMessage(s.Owner, nil)
		frame.Tx.From = s.Owner
		if err := rt.deploy(frame, s.Owner, addr, s.ContentType, s.Content, s.Params); err != nil {
			return nil, fmt.Errorf("genesis score %d: %w", i, err)
		}
		addrs = append(addrs, addr)
	}
	if err := e.db.Commit(frame.Batch); err != nil {
		return nil, err
	}
	log.Info("Applied genesis", "accounts", len(g.Accounts), "scores", len(addrs), "logs", frame.Logs.Len())
	return addrs, nil
}
