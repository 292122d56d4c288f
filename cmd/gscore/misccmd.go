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

package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/tos-network/gscore/params"
	"github.com/urfave/cli/v2"
)

var (
	versionCommand = &cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		ArgsUsage: " ",
		Description: `
The output of this command is supposed to be machine-readable.
`,
	}
	licenseCommand = &cli.Command{
		Action:    license,
		Name:      "license",
		Usage:     "Display license information",
		ArgsUsage: " ",
	}
	builtinsCommand = &cli.Command{
		Action:    builtins,
		Name:      "builtins",
		Usage:     "List the builtin scores that can be deployed",
		ArgsUsage: " ",
	}
)

func versionWithCommit() string {
	return params.VersionWithCommit(gitCommit, gitDate)
}

func version(ctx *cli.Context) error {
	w := ctx.App.Writer
	fmt.Fprintln(w, strings.Title(clientIdentifier))
	fmt.Fprintln(w, "Version:", params.VersionWithMeta)
	if gitCommit != "" {
		fmt.Fprintln(w, "Git Commit:", gitCommit)
	}
	if gitDate != "" {
		fmt.Fprintln(w, "Git Commit Date:", gitDate)
	}
	fmt.Fprintln(w, "Architecture:", runtime.GOARCH)
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Operating System:", runtime.GOOS)
	return nil
}

func license(ctx *cli.Context) error {
	fmt.Fprintln(ctx.App.Writer, `gscore licensing summary

- Library packages: GNU LGPL-3.0
- cmd/ command applications: GNU GPL-3.0`)
	return nil
}

func builtins(ctx *cli.Context) error {
	for _, name := range newBuiltins().Names() {
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", params.ContentTypeBuiltin, name)
	}
	return nil
}
