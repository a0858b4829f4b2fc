package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/compare"
)

var (
	leftFormatFlag = &cli.StringFlag{
		Name:  "left-format",
		Value: "eventlog",
		Usage: "Input format for the left side: eventlog or cassette",
	}
	rightFormatFlag = &cli.StringFlag{
		Name:  "right-format",
		Value: "eventlog",
		Usage: "Input format for the right side: eventlog or cassette",
	}
)

// CompareCommand returns the compare command: a deterministic diff
// between two inputs, aligned on (source_id, source_seq). Exit code 5
// signals a diff was found.
func CompareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Deterministically compare two run inputs and report divergences",
		ArgsUsage: "<left> <right>",
		Flags:     append(GlobalFlags(), leftFormatFlag, rightFormatFlag),
		Action:    compareAction,
	}
}

func compareAction(c *cli.Context) error {
	leftPath := c.Args().Get(0)
	rightPath := c.Args().Get(1)
	if leftPath == "" || rightPath == "" {
		return cli.Exit("compare: requires <left> and <right> arguments", ExitInvalidArgs)
	}

	left, err := loadImportEvents(leftPath, c.String("left-format"))
	if err != nil {
		return exitForLoadError("compare", err)
	}
	right, err := loadImportEvents(rightPath, c.String("right-format"))
	if err != nil {
		return exitForLoadError("compare", err)
	}

	report, err := compare.Compare(left, right)
	if err != nil {
		return cli.Exit(fmt.Sprintf("compare: %v", err), ExitRuntime)
	}

	if wantsJSON(c) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return cli.Exit(fmt.Sprintf("compare: %v", err), ExitRuntime)
		}
	} else {
		printCompareReportHuman(report)
	}

	if !report.Equal {
		return cli.Exit("compare: diff found", ExitDiffFound)
	}
	return nil
}

func printCompareReportHuman(report *compare.Report) {
	if report.Equal {
		fmt.Printf("compare: equal (%d events each side)\n", report.LeftCount)
		return
	}
	fmt.Printf("compare: %d divergence(s) found (left=%d, right=%d events)\n",
		len(report.Divergences), report.LeftCount, report.RightCount)
	for _, d := range report.Divergences {
		fmt.Printf("  [%s] %s/%d", d.Kind, d.SourceID, d.SourceSeq)
		if d.Left != "" || d.Right != "" {
			fmt.Printf(" left=%s right=%s", d.Left, d.Right)
		}
		fmt.Println()
	}
}

func exitForLoadError(cmdName string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return cli.Exit(fmt.Sprintf("%s: %v", cmdName, err), ExitNotFound)
	}
	return cli.Exit(fmt.Sprintf("%s: %v", cmdName, err), ExitRuntime)
}
