package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/adapter/cassette"
	"github.com/justapithecus/vifei/eventlog"
	"github.com/justapithecus/vifei/tour"
	"github.com/justapithecus/vifei/types"
)

var (
	stressFlag = &cli.BoolFlag{
		Name:     "stress",
		Usage:    "Enable stress mode (required in v0.1)",
		Required: true,
	}
	outputDirFlag = &cli.StringFlag{
		Name:  "output-dir",
		Value: "tour-output",
		Usage: "Output directory for proof artifacts",
	}
)

// TourCommand returns the tour command: replay a cassette fixture
// through the full pipeline and emit the four-file proof directory.
func TourCommand() *cli.Command {
	return &cli.Command{
		Name:      "tour",
		Aliases:   []string{"tours"},
		Usage:     "Run the Tour stress harness to generate proof artifacts",
		ArgsUsage: "<fixture.jsonl>",
		Flags:     append(GlobalFlags(), stressFlag, outputDirFlag, blobDirFlag),
		Action:    tourAction,
	}
}

func tourAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("tour: missing <fixture.jsonl> argument", ExitInvalidArgs)
	}
	if !c.Bool("stress") {
		return cli.Exit("tour: --stress is required in v0.1", ExitInvalidArgs)
	}

	committed, err := ingestFixtureAsCommitted(c, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.Exit(fmt.Sprintf("tour: %v", err), ExitNotFound)
		}
		return cli.Exit(fmt.Sprintf("tour: %v", err), ExitRuntime)
	}

	result, err := tour.Run(committed, c.String("output-dir"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("tour: %v", err), ExitRuntime)
	}

	if !wantsJSON(c) {
		fmt.Printf("tour: wrote artifacts to %s (viewmodel hash %s)\n", c.String("output-dir"), result.ViewModelHash)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ingestFixtureAsCommitted parses a cassette fixture and commits it
// through the append writer into a fresh log alongside the fixture, so
// tour's reducer replay sees the same CommittedEvent shape (with
// commit_index) a real run would produce.
func ingestFixtureAsCommitted(c *cli.Context, fixturePath string) ([]types.CommittedEvent, error) {
	f, err := os.Open(fixturePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	imports, err := cassette.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	logPath := fixturePath + ".committed.jsonl"
	blobs, err := openBlobStore(c, logPath)
	if err != nil {
		return nil, err
	}
	w, err := eventlog.Open(logPath, blobs)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	committed := make([]types.CommittedEvent, 0, len(imports))
	for _, ev := range imports {
		ce, err := w.Append(ev)
		if err != nil {
			return nil, err
		}
		committed = append(committed, ce)
	}
	return committed, nil
}
