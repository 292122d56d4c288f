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

import "math/big"

// These are the multipliers for ICX denominations.
// Example: To get the loop value of an amount in 'icx', use
//
//	new(big.Int).Mul(value, big.NewInt(params.ICX))
const (
	Loop = 1
	ICX  = 1e18
)

// ICXToLoop converts a whole-coin amount to loop.
func ICXToLoop(icx int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(icx), big.NewInt(ICX))
}
