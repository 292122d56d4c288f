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
	"errors"
	"fmt"

	"github.com/tos-network/gscore/core/vm"
)

var (
	ErrInvalidScore   = fmt.Errorf("%w: invalid score declaration", vm.ErrScore)
	ErrInvalidContent = fmt.Errorf("%w: invalid score content", vm.ErrInvalidParams)
	ErrInvalidPayload = fmt.Errorf("%w: invalid transaction data", vm.ErrInvalidParams)
	ErrNotOwner       = fmt.Errorf("%w: not the score owner", vm.ErrAccessDenied)

	errUnknownBuiltin = errors.New("unknown builtin score")
)
