package cmd

import "github.com/urfave/cli/v2"

// Shared global flags, mirroring the robot-readable CLI contract's
// mutually-exclusive --json/--human pair.
var (
	// JSONFlag forces machine-readable JSON output.
	JSONFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit machine-readable JSON output",
	}

	// HumanFlag forces human-readable output (overrides auto-JSON in
	// piped mode).
	HumanFlag = &cli.BoolFlag{
		Name:  "human",
		Usage: "Force human-readable output",
	}
)

// GlobalFlags returns the flags shared by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{JSONFlag, HumanFlag}
}

// wantsJSON decides the output mode: --json wins, then --human, then
// falls back to JSON (the safer default for scripting/CI consumption).
func wantsJSON(c *cli.Context) bool {
	if c.Bool("json") {
		return true
	}
	if c.Bool("human") {
		return false
	}
	return true
}
