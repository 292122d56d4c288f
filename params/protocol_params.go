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

package params

import "time"

const (
	BloomByteLength = 256 // Size of a logs bloom in bytes (2048 bits).
	BloomBitLength  = 8 * BloomByteLength
	BloomHashCount  = 3 // Bit positions set per added key.

	MaxIndexedEventArgs = 4  // Upper bound of indexed arguments an event may declare.
	MaxCallDepth        = 64 // Nested score call depth cap.

	DefaultContextPoolSize = 256 // Live execution frames allowed process-wide.

	InvokeStepLimit  uint64 = 2_500_000_000 // Ceiling of a transaction's own step limit.
	QueryStepLimit   uint64 = 50_000_000    // Budget granted to read-only queries.
	GenesisStepLimit uint64 = 1<<63 - 1     // Genesis processing is effectively unmetered.

	DefaultRegistryCacheSize = 128      // Loaded score instances kept in memory.
	DefaultStorageCacheBytes = 32 << 20 // Read cache in front of committed score storage.
	DefaultStorageBloomBits  = 1 << 23  // Negative-lookup filter size.

	DefaultContextTimeout = 5 * time.Second // How long Create waits for a free frame.
)

// Reserved event names. Only the currency engine may emit these.
const (
	ICXTransferEventName = "ICXTransfer"
	ICXTransferEventSig  = "ICXTransfer(Address,Address,int)"
)

// Data types a transaction may carry.
const (
	DataTypeCall    = "call"
	DataTypeDeploy  = "deploy"
	DataTypeMessage = "message"
)

// Score content types.
const (
	ContentTypeBuiltin = "application/x-gscore-builtin" // A score compiled into the node binary.
	ContentTypeLua     = "application/x-gscore-lua"     // Lua source run in a sandbox.
)

// DefaultLuaCallTimeout bounds the wall time of one Lua score invocation.
const DefaultLuaCallTimeout = 2 * time.Second
