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

import "github.com/tos-network/gscore/common"

// Well-known contract addresses used by the runtime itself.
var (
	// ZeroScoreAddress owns deployment records of every installed score.
	ZeroScoreAddress = common.MustParseAddress("cx0000000000000000000000000000000000000000")

	// ICXEngineAddress owns native currency balances.
	ICXEngineAddress = common.MustParseAddress("cx0000000000000000000000000000000000000001")

	// GovernanceAddress is reserved for the governance score.
	GovernanceAddress = common.MustParseAddress("cx0000000000000000000000000000000000000002")
)

// IsSystemAddress reports whether addr is owned by the runtime.
func IsSystemAddress(addr common.Address) bool {
	return addr == ZeroScoreAddress || addr == ICXEngineAddress || addr == GovernanceAddress
}
