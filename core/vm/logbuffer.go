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

package vm

import "github.com/tos-network/gscore/core/types"

// LogBuffer holds the event logs of a call tree together with the bloom of
// their index keys. Records are immutable once appended.
type LogBuffer struct {
	logs  []*types.EventLog
	bloom types.Bloom
}

// NewLogBuffer returns an empty buffer.
func NewLogBuffer() *LogBuffer { return new(LogBuffer) }

// Append records l and folds its index keys into the bloom.
func (b *LogBuffer) Append(l *types.EventLog) {
	b.logs = append(b.logs, l)
	for i, v := range l.Indexed {
		b.bloom.Add(types.IndexKey(i, v))
	}
}

// Logs returns the recorded logs in emission order.
func (b *LogBuffer) Logs() []*types.EventLog {
	out := make([]*types.EventLog, len(b.logs))
	copy(out, b.logs)
	return out
}

// Bloom returns the union of every recorded index key.
func (b *LogBuffer) Bloom() types.Bloom { return b.bloom }

// Contains tests the bloom.
func (b *LogBuffer) Contains(key []byte) bool { return b.bloom.Contains(key) }

func (b *LogBuffer) Len() int { return len(b.logs) }

// Snapshot returns an id for RevertToSnapshot.
func (b *LogBuffer) Snapshot() int { return len(b.logs) }

// RevertToSnapshot drops logs appended after id and rebuilds the bloom,
// since bits cannot be cleared individually.
func (b *LogBuffer) RevertToSnapshot(id int) {
	if id < 0 || id >= len(b.logs) {
		return
	}
	for i := id; i < len(b.logs); i++ {
		b.logs[i] = nil
	}
	b.logs = b.logs[:id]
	b.bloom = types.CreateBloom(b.logs)
}

// Reset empties the buffer.
func (b *LogBuffer) Reset() {
	b.logs = nil
	b.bloom = types.Bloom{}
}
