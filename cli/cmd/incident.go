package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/bundle"
	"github.com/justapithecus/vifei/incident"
)

var incidentOutputDirFlag = &cli.StringFlag{
	Name:  "output-dir",
	Value: "incident-pack",
	Usage: "Output directory for the generated evidence pack",
}

// IncidentPackCommand returns the incident-pack command: a directory
// containing a share-safe bundle of the left input plus a diff report
// against the right input.
func IncidentPackCommand() *cli.Command {
	return &cli.Command{
		Name:      "incident-pack",
		Aliases:   []string{"incident"},
		Usage:     "Build a deterministic incident evidence pack from two inputs",
		ArgsUsage: "<left> <right>",
		Flags:     append(GlobalFlags(), leftFormatFlag, rightFormatFlag, incidentOutputDirFlag, blobDirFlag),
		Action:    incidentAction,
	}
}

func incidentAction(c *cli.Context) error {
	leftPath := c.Args().Get(0)
	rightPath := c.Args().Get(1)
	if leftPath == "" || rightPath == "" {
		return cli.Exit("incident-pack: requires <left> and <right> arguments", ExitInvalidArgs)
	}

	leftFormat := c.String("left-format")
	if leftFormat != "" && leftFormat != "eventlog" {
		return cli.Exit("incident-pack: left input must be an eventlog (the left side is bundled)", ExitInvalidArgs)
	}

	leftRaw, leftCommitted, err := loadCommittedLog(leftPath)
	if err != nil {
		return exitForLoadError("incident-pack", err)
	}
	rightEvents, err := loadImportEvents(rightPath, c.String("right-format"))
	if err != nil {
		return exitForLoadError("incident-pack", err)
	}

	blobs, err := openBlobStore(c, leftPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("incident-pack: %v", err), ExitRuntime)
	}

	result, err := incident.Build(leftRaw, leftCommitted, blobs, rightEvents, c.String("output-dir"))
	if err != nil {
		var refused *bundle.RefusedError
		if errors.As(err, &refused) {
			return cli.Exit(refused.Error(), ExitRefused)
		}
		return cli.Exit(fmt.Sprintf("incident-pack: %v", err), ExitRuntime)
	}

	if !wantsJSON(c) {
		fmt.Printf("incident-pack: wrote %s (bundle hash %s, %d divergence(s))\n",
			result.Dir, result.BundleResult.BundleHash, len(result.Report.Divergences))
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return cli.Exit(fmt.Sprintf("incident-pack: %v", err), ExitRuntime)
		}
	}

	if !result.Report.Equal {
		return cli.Exit("incident-pack: diff found", ExitDiffFound)
	}
	return nil
}
