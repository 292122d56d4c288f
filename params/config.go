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

import (
	"errors"
	"fmt"
	"time"

	"github.com/tos-network/gscore/metrics"
)

// Config holds the tunables of the score runtime. It is loaded from TOML by
// the command line tool, so field names double as configuration keys.
type Config struct {
	DataDir string `toml:",omitempty"`

	InvokeStepLimit uint64
	QueryStepLimit  uint64
	StepCosts       StepCosts

	ContextPoolSize int
	ContextTimeout  time.Duration
	MaxCallDepth    int
	LuaCallTimeout  time.Duration

	RegistryCacheSize int
	StorageCacheBytes int
	StorageBloomBits  uint64

	Metrics metrics.Config
}

// DefaultConfig contains the default settings for the runtime.
var DefaultConfig = Config{
	InvokeStepLimit:   InvokeStepLimit,
	QueryStepLimit:    QueryStepLimit,
	StepCosts:         DefaultStepCosts,
	ContextPoolSize:   DefaultContextPoolSize,
	ContextTimeout:    DefaultContextTimeout,
	MaxCallDepth:      MaxCallDepth,
	LuaCallTimeout:    DefaultLuaCallTimeout,
	RegistryCacheSize: DefaultRegistryCacheSize,
	StorageCacheBytes: DefaultStorageCacheBytes,
	StorageBloomBits:  DefaultStorageBloomBits,
	Metrics:           metrics.DefaultConfig,
}

var errNegative = errors.New("must not be negative")

// Sanitize fills unset fields with defaults and rejects invalid values.
// The receiver's StepCosts map is replaced by a copy so DefaultStepCosts is
// never shared.
func (c *Config) Sanitize() error {
	if c.InvokeStepLimit == 0 {
		c.InvokeStepLimit = DefaultConfig.InvokeStepLimit
	}
	if c.QueryStepLimit == 0 {
		c.QueryStepLimit = DefaultConfig.QueryStepLimit
	}
	costs := DefaultStepCosts.Copy()
	for k, v := range c.StepCosts {
		costs[k] = v
	}
	if err := costs.Validate(); err != nil {
		return err
	}
	c.StepCosts = costs

	if c.ContextPoolSize <= 0 {
		c.ContextPoolSize = DefaultContextPoolSize
	}
	if c.ContextTimeout <= 0 {
		c.ContextTimeout = DefaultContextTimeout
	}
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = MaxCallDepth
	}
	if c.LuaCallTimeout <= 0 {
		c.LuaCallTimeout = DefaultLuaCallTimeout
	}
	if c.RegistryCacheSize <= 0 {
		c.RegistryCacheSize = DefaultRegistryCacheSize
	}
	if c.StorageCacheBytes < 0 {
		return fmt.Errorf("StorageCacheBytes %w: %d", errNegative, c.StorageCacheBytes)
	}
	if c.StorageBloomBits == 0 {
		c.StorageBloomBits = DefaultStorageBloomBits
	}
	return nil
}
