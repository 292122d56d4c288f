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
	"encoding/binary"
	"fmt"

	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/vm"
)

// Info is a deployed score together with its loaded implementation.
type Info struct {
	Address     common.Address
	Owner       common.Address
	ContentType string
	Content     []byte
	TxHash      common.Hash

	Score  Score
	Events *vm.EventRegistry

	methods map[string]*Method
	names   []string
}

// newInfo validates the declarations of s.
func newInfo(addr common.Address, rec *deployRecord, s Score) (*Info, error) {
	events, err := vm.NewEventRegistry(s.Events()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	install := vm.EventSchema{Name: "install", Params: s.InstallParams()}
	if err := install.Validate(); err != nil {
		return nil, fmt.Errorf("%w: install parameters: %v", ErrInvalidScore, err)
	}
	info := &Info{
		Address:     addr,
		Owner:       rec.owner(),
		ContentType: rec.ContentType,
		Content:     common.CopyBytes(rec.Content),
		TxHash:      rec.TxHash,
		Score:       s,
		Events:      events,
		methods:     make(map[string]*Method),
	}
	for _, m := range s.Methods() {
		m := m
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := info.methods[m.Name]; dup {
			return nil, fmt.Errorf("%w: method %s declared twice", ErrInvalidScore, m.Name)
		}
		info.methods[m.Name] = &m
		info.names = append(info.names, m.Name)
	}
	return info, nil
}

// Method returns the external method called name.
func (i *Info) Method(name string) (*Method, bool) {
	m, ok := i.methods[name]
	return m, ok
}

// MethodNames lists the methods in declaration order.
func (i *Info) MethodNames() []string {
	return append([]string(nil), i.names...)
}

// NewScoreAddress derives the address of a score deployed by deployer.
func NewScoreAddress(deployer common.Address, timestamp, nonce uint64) common.Address {
	var buf [common.AddressLength + 16]byte
	copy(buf[:], deployer[:])
	binary.BigEndian.PutUint64(buf[common.AddressLength:], timestamp)
	binary.BigEndian.PutUint64(buf[common.AddressLength+8:], nonce)
	return common.AddressFromData(common.KindContract, buf[:])
}
