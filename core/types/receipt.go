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
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gscore/common"
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Failure is the reason recorded for a failed transaction.
type Failure struct {
	Code    uint64
	Message string
}

// Receipt represents the results of a transaction.
type Receipt struct {
	TxHash      common.Hash
	TxIndex     uint64
	BlockHeight uint64
	BlockHash   common.Hash
	To          common.Address

	// ScoreAddress is set when the transaction deployed a score.
	ScoreAddress *common.Address

	Status    uint64
	StepUsed  uint64
	StepLimit uint64
	EventLogs []*EventLog
	LogsBloom Bloom
	Failure   *Failure
}

// Failed reports whether the receipt records a failure.
func (r *Receipt) Failed() bool { return r.Status != ReceiptStatusSuccessful }

// ToMap returns the client facing form of the receipt.
func (r *Receipt) ToMap(keyFn func(string) string) map[string]interface{} {
	if keyFn == nil {
		keyFn = common.Identity
	}
	logs := make([]interface{}, len(r.EventLogs))
	for i, l := range r.EventLogs {
		logs[i] = l.ToMap(keyFn)
	}
	m := map[string]interface{}{
		keyFn("tx_hash"):      r.TxHash.Hex(),
		keyFn("tx_index"):     hexutil.EncodeUint64(r.TxIndex),
		keyFn("block_height"): hexutil.EncodeUint64(r.BlockHeight),
		keyFn("block_hash"):   r.BlockHash.Hex(),
		keyFn("to"):           r.To.String(),
		keyFn("status"):       hexutil.EncodeUint64(r.Status),
		keyFn("step_used"):    hexutil.EncodeUint64(r.StepUsed),
		keyFn("step_limit"):   hexutil.EncodeUint64(r.StepLimit),
		keyFn("event_logs"):   logs,
		keyFn("logs_bloom"):   hexutil.Encode(r.LogsBloom[:]),
	}
	if r.ScoreAddress != nil {
		m[keyFn("score_address")] = r.ScoreAddress.String()
	}
	if r.Failure != nil {
		m[keyFn("failure")] = map[string]interface{}{
			keyFn("code"):    hexutil.EncodeUint64(r.Failure.Code),
			keyFn("message"): r.Failure.Message,
		}
	}
	return m
}

// storedReceiptRLP is the persisted layout of a receipt. The field order is
// part of the on-disk format.
type storedReceiptRLP struct {
	Status       uint64
	TxHash       common.Hash
	TxIndex      uint64
	BlockHeight  uint64
	BlockHash    common.Hash
	To           []byte
	ScoreAddress []byte
	StepUsed     uint64
	StepLimit    uint64
	Bloom        Bloom
	Logs         []*EventLog
	FailureCode  uint64
	FailureMsg   string
}

// ReceiptForStorage is a wrapper around a Receipt with RLP serialization
// that omits nothing: the logs bloom is stored rather than recomputed.
type ReceiptForStorage Receipt

// EncodeRLP implements rlp.Encoder.
func (r *ReceiptForStorage) EncodeRLP(w io.Writer) error {
	enc := &storedReceiptRLP{
		Status:      r.Status,
		TxHash:      r.TxHash,
		TxIndex:     r.TxIndex,
		BlockHeight: r.BlockHeight,
		BlockHash:   r.BlockHash,
		To:          r.To.Bytes(),
		StepUsed:    r.StepUsed,
		StepLimit:   r.StepLimit,
		Bloom:       r.LogsBloom,
		Logs:        r.EventLogs,
	}
	if enc.Logs == nil {
		enc.Logs = []*EventLog{}
	}
	if r.ScoreAddress != nil {
		enc.ScoreAddress = r.ScoreAddress.Bytes()
	}
	if r.Failure != nil {
		enc.FailureCode = r.Failure.Code
		enc.FailureMsg = r.Failure.Message
	}
	return rlp.Encode(w, enc)
}

// DecodeRLP implements rlp.Decoder.
func (r *ReceiptForStorage) DecodeRLP(s *rlp.Stream) error {
	var dec storedReceiptRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	to, err := common.BytesToAddress(dec.To)
	if err != nil {
		return fmt.Errorf("receipt to: %w", err)
	}
	r.Status = dec.Status
	r.TxHash = dec.TxHash
	r.TxIndex = dec.TxIndex
	r.BlockHeight = dec.BlockHeight
	r.BlockHash = dec.BlockHash
	r.To = to
	r.StepUsed = dec.StepUsed
	r.StepLimit = dec.StepLimit
	r.LogsBloom = dec.Bloom
	r.EventLogs = dec.Logs
	r.ScoreAddress = nil
	if len(dec.ScoreAddress) > 0 {
		addr, err := common.BytesToAddress(dec.ScoreAddress)
		if err != nil {
			return fmt.Errorf("receipt score address: %w", err)
		}
		r.ScoreAddress = &addr
	}
	r.Failure = nil
	if dec.Status != ReceiptStatusSuccessful {
		r.Failure = &Failure{Code: dec.FailureCode, Message: dec.FailureMsg}
	}
	return nil
}
