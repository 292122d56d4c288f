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

package parallel

import "github.com/ethereum/go-ethereum/metrics"

var (
	blockTimer   = metrics.NewRegisteredTimer("score/parallel/block", nil)
	txsMeter     = metrics.NewRegisteredMeter("score/parallel/txs", nil)
	reexecMeter  = metrics.NewRegisteredMeter("score/parallel/reexec", nil)
	queriesMeter = metrics.NewRegisteredMeter("score/parallel/queries", nil)
)
