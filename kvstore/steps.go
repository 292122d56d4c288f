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

package kvstore

import "github.com/tos-network/gscore/params"

// ReadSteps returns the charge of reading value.
func ReadSteps(value []byte) (params.StepType, uint64) {
	return params.StepGet, uint64(len(value))
}

// WriteSteps returns the charge of storing value over prev. existed tells
// whether prev was present; a nil value is a deletion.
func WriteSteps(prev []byte, existed bool, value []byte) (params.StepType, uint64) {
	switch {
	case value == nil:
		return params.StepDelete, uint64(len(prev))
	case existed:
		return params.StepReplace, uint64(len(value))
	default:
		return params.StepSet, uint64(len(value))
	}
}
