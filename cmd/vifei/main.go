// Package main provides the vifei CLI entrypoint.
//
// The CLI is an external collaborator: it reads committed logs and
// view models and emits bundles, but it never participates in the
// deterministic pipeline's own semantics.
//
// Usage:
//
//	vifei [--json|--human] <command> [args]
//
// Exit codes:
//   - 0: success
//   - 1: input not found
//   - 2: invalid arguments
//   - 3: export refused (secret scan hit)
//   - 4: runtime error
//   - 5: diff found (compare / incident-pack)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/cli/cmd"
	"github.com/justapithecus/vifei/types"
)

// commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "vifei",
		Usage:          "Deterministic flight recorder for AI agent runs",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		UsageText:      cmd.QuickHelp,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ViewCommand(),
			cmd.ExportCommand(),
			cmd.TourCommand(),
			cmd.CompareCommand(),
			cmd.IncidentPackCommand(),
			cmd.VerifyCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// exitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch only covers errors app.Run returns without routing
		// through it.
		os.Exit(cmd.ExitRuntime)
	}
}

// exitErrHandler preserves the exit code carried by cli.Exit() errors
// instead of collapsing every failure to a generic exit 1.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cmd.ExitRuntime)
}
