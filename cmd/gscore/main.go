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

// gscore is the command line front end of the score runtime. It keeps
// score state in a LevelDB data directory and executes blocks of
// transactions read from JSON files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/internal/flags"
	"github.com/tos-network/gscore/metrics"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "gscore"

var (
	// Git SHA1 commit hash and date of the release (set via linker flags).
	gitCommit = ""
	gitDate   = ""
)

var (
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the score database",
		Value:    defaultDataDir(),
		Category: flags.StorageCategory,
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Concurrent transaction executors (0 = one per CPU, 1 = serial)",
		Value:    0,
		Category: flags.ExecutionCategory,
	}
	StepLimitFlag = &cli.Uint64Flag{
		Name:     "steplimit",
		Usage:    "Ceiling of a transaction's step limit (0 = configured default)",
		Category: flags.ExecutionCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the database",
		Value:    64,
		Category: flags.StorageCategory,
	}
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: flags.MetricsCategory,
	}
	MetricsHTTPFlag = &cli.StringFlag{
		Name:     "metrics.addr",
		Usage:    "Enable stand-alone metrics HTTP server listening interface",
		Value:    metrics.DefaultConfig.HTTP,
		Category: flags.MetricsCategory,
	}
	MetricsPortFlag = &cli.IntFlag{
		Name:     "metrics.port",
		Usage:    "Metrics HTTP server listening port",
		Value:    metrics.DefaultConfig.Port,
		Category: flags.MetricsCategory,
	}

	globalFlags = []cli.Flag{
		DataDirFlag,
		ConfigFileFlag,
		VerbosityFlag,
		WorkersFlag,
		StepLimitFlag,
		CacheFlag,
		MetricsEnabledFlag,
		MetricsHTTPFlag,
		MetricsPortFlag,
	}
)

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".gscore")
	}
	return ".gscore"
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "score execution runtime"
	app.Version = versionString()
	app.Flags = globalFlags
	app.Commands = []*cli.Command{
		initCommand,
		runCommand,
		queryCommand,
		receiptCommand,
		balanceCommand,
		dumpConfigCommand,
		builtinsCommand,
		versionCommand,
		licenseCommand,
	}
	app.Before = setupLogging
	return app
}

// setupLogging installs the terminal log handler at the requested level.
func setupLogging(ctx *cli.Context) error {
	lvl := log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(ctx.App.ErrWriter, lvl, true)))
	return nil
}

func versionString() string {
	return fmt.Sprintf("%s (%s/%s)", versionWithCommit(), runtime.GOOS, runtime.GOARCH)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
