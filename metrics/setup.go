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

// Package metrics switches on go-ethereum metric collection for the runtime
// and optionally exposes it over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
)

// Setup enables collection according to cfg. It must run before any meter
// is registered for the registrations to be live.
func Setup(cfg Config) {
	if !cfg.Enabled {
		return
	}
	log.Info("Enabling metrics collection")
	gethmetrics.Enabled = true

	if cfg.ProcessRefresh > 0 {
		go gethmetrics.CollectProcessMetrics(time.Duration(cfg.ProcessRefresh) * time.Second)
	}
	if cfg.HTTP != "" {
		address := fmt.Sprintf("%s:%d", cfg.HTTP, cfg.Port)
		log.Info("Enabling stand-alone metrics HTTP endpoint", "address", address)
		exp.Setup(address)
	}
}

// Enabled reports whether metric collection is switched on.
func Enabled() bool { return gethmetrics.Enabled }
