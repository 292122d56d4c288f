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

package rawdb

import (
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core/types"
)

// HasReceipt verifies the existence of the receipt of a transaction.
func HasReceipt(db ethdb.KeyValueReader, hash common.Hash) bool {
	ok, _ := db.Has(receiptKey(hash))
	return ok
}

// ReadReceiptRLP retrieves the snappy-decoded receipt RLP of a transaction.
func ReadReceiptRLP(db ethdb.KeyValueReader, hash common.Hash) rlp.RawValue {
	if !HasReceipt(db, hash) {
		return nil
	}
	data, err := db.Get(receiptKey(hash))
	if err != nil || len(data) == 0 {
		return nil
	}
	dec, err := snappy.Decode(nil, data)
	if err != nil {
		log.Error("Invalid receipt compression", "hash", hash, "err", err)
		return nil
	}
	return dec
}

// ReadReceipt retrieves the receipt of a transaction, nil if unknown.
func ReadReceipt(db ethdb.KeyValueReader, hash common.Hash) *types.Receipt {
	data := ReadReceiptRLP(db, hash)
	if len(data) == 0 {
		return nil
	}
	var stored types.ReceiptForStorage
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		log.Error("Invalid receipt RLP", "hash", hash, "err", err)
		return nil
	}
	return (*types.Receipt)(&stored)
}

// WriteReceipt stores the receipt of a transaction keyed by its hash.
func WriteReceipt(db ethdb.KeyValueWriter, receipt *types.Receipt) {
	data, err := rlp.EncodeToBytes((*types.ReceiptForStorage)(receipt))
	if err != nil {
		log.Crit("Failed to encode receipt", "err", err)
	}
	if err := db.Put(receiptKey(receipt.TxHash), snappy.Encode(nil, data)); err != nil {
		log.Crit("Failed to store receipt", "err", err)
	}
}

// WriteReceipts stores a set of receipts.
func WriteReceipts(db ethdb.KeyValueWriter, receipts []*types.Receipt) {
	for _, r := range receipts {
		WriteReceipt(db, r)
	}
}

// DeleteReceipt removes the receipt of a transaction.
func DeleteReceipt(db ethdb.KeyValueWriter, hash common.Hash) {
	if err := db.Delete(receiptKey(hash)); err != nil {
		log.Crit("Failed to delete receipt", "err", err)
	}
}
