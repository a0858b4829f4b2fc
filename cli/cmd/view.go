package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	vifeitui "github.com/justapithecus/vifei/cli/tui"
	"github.com/justapithecus/vifei/eventlog"
	"github.com/justapithecus/vifei/projection"
	"github.com/justapithecus/vifei/reducer"
)

// profileFlag selects presentation styling only; per spec.md it never
// alters truth semantics — both profiles render the same ViewModel.
var profileFlag = &cli.StringFlag{
	Name:  "profile",
	Value: "standard",
	Usage: "Presentation profile: standard or showcase (styling only)",
}

// tuiFlag enables Bubble Tea interactive mode for view. It takes effect
// only in human output mode (--human); in JSON output mode (--json, or no
// output flag at all) it is ignored without a warning.
var tuiFlag = &cli.BoolFlag{
	Name:  "tui",
	Usage: "Enable interactive TUI mode",
}

// ViewCommand returns the view command: project a committed log's
// current ViewModel and render it, either as JSON/human text, a static
// TUI snapshot, or (with --tui) a live interactive session.
func ViewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Aliases:   []string{"viewer"},
		Usage:     "View an EventLog's current ViewModel",
		ArgsUsage: "<eventlog.jsonl>",
		Flags:     append(GlobalFlags(), profileFlag, tuiFlag),
		Action:    viewAction,
	}
}

func viewAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("view: missing <eventlog.jsonl> argument", ExitInvalidArgs)
	}

	events, err := eventlog.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.Exit(fmt.Sprintf("view: %v", err), ExitNotFound)
		}
		return cli.Exit(fmt.Sprintf("view: %v", err), ExitRuntime)
	}

	state, err := reducer.ReduceAll(events)
	if err != nil {
		return cli.Exit(fmt.Sprintf("view: %v", err), ExitRuntime)
	}
	vm := projection.Project(state)
	digest, err := projection.Digest(vm)
	if err != nil {
		return cli.Exit(fmt.Sprintf("view: %v", err), ExitRuntime)
	}

	profile := c.String("profile")
	if profile != "standard" && profile != "showcase" {
		return cli.Exit(fmt.Sprintf("view: unknown profile %q (want standard or showcase)", profile), ExitInvalidArgs)
	}

	if !wantsJSON(c) {
		if c.Bool("tui") {
			return vifeitui.RunViewTUI(vm, digest, len(events), profile)
		}
		fmt.Print(vifeitui.RenderViewStatic(vm, digest, len(events), profile))
		return nil
	}

	out := struct {
		ViewModel          any    `json:"view_model"`
		ViewModelHash      string `json:"viewmodel_hash"`
		EventCount         int    `json:"event_count"`
		RobotSchemaVersion string `json:"robot_schema_version"`
	}{ViewModel: vm, ViewModelHash: digest, EventCount: len(events), RobotSchemaVersion: ROBOTSchemaVersion}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
