// Copyright (c) 2014-2020 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"os"

	flags "github.com/canonical/go-flags"

	"github.com/kilnsh/kiln/internal/config"
	"github.com/kilnsh/kiln/internal/jobctl"
	"github.com/kilnsh/kiln/internal/logger"
	"github.com/kilnsh/kiln/internal/termstate"
)

var (
	// Standard streams, redirected for testing.
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

type options struct{}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger.SetLogger(logger.New(Stderr, "kiln: "))

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "A job-controlling interactive shell"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		fmt.Fprintf(Stderr, "kiln: %v\n", err)
		return 2
	}

	term, err := termstate.Init(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(Stderr, "kiln: %v\n", err)
		return 1
	}

	cfgPath, err := config.Path()
	if err != nil {
		fmt.Fprintf(Stderr, "kiln: %v\n", err)
		cfgPath = ""
	}
	cfg := config.Load(cfgPath)
	promptTemplate := cfg.Prompt
	if promptTemplate == "" {
		promptTemplate = jobctl.DefaultPromptTemplate
	}

	shell := jobctl.NewShell(term, promptTemplate, Stdin, Stdout, Stderr)
	return shell.Run()
}
