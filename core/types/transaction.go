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

package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gscore/common"
)

// Transaction is an ordered, validated transaction as handed to the runtime.
// Data holds the JSON payload whose meaning depends on DataType.
type Transaction struct {
	Hash      common.Hash     `json:"txHash"`
	From      common.Address  `json:"from"`
	To        common.Address  `json:"to"`
	Value     *big.Int        `json:"value,omitempty"`
	StepLimit uint64          `json:"stepLimit"`
	Timestamp uint64          `json:"timestamp"`
	Nonce     uint64          `json:"nonce,omitempty"`
	DataType  string          `json:"dataType,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type txHashFields struct {
	From      []byte
	To        []byte
	Value     *big.Int
	StepLimit uint64
	Timestamp uint64
	Nonce     uint64
	DataType  string
	Data      []byte
}

// ComputeHash derives the transaction hash from its content.
func (tx *Transaction) ComputeHash() common.Hash {
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	enc, _ := rlp.EncodeToBytes(&txHashFields{
		From:      tx.From.Bytes(),
		To:        tx.To.Bytes(),
		Value:     value,
		StepLimit: tx.StepLimit,
		Timestamp: tx.Timestamp,
		Nonce:     tx.Nonce,
		DataType:  tx.DataType,
		Data:      tx.Data,
	})
	return common.Sha3Hash(enc)
}

// ValueOrZero returns the transferred amount, never nil.
func (tx *Transaction) ValueOrZero() *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}
	return tx.Value
}

// Message is the sender and value of the current call frame. For the top
// frame it equals the transaction's origin and value; nested calls replace
// it with the calling score.
type Message struct {
	Sender common.Address
	Value  *big.Int
}

// NewMessage builds a message, normalizing a nil value to zero.
func NewMessage(sender common.Address, value *big.Int) *Message {
	if value == nil {
		value = new(big.Int)
	}
	return &Message{Sender: sender, Value: value}
}

// Block carries the metadata of the block the transaction is executed in.
type Block struct {
	Height    uint64      `json:"height"`
	Hash      common.Hash `json:"hash"`
	Timestamp uint64      `json:"timestamp"`
	PrevHash  common.Hash `json:"prevHash"`
}
