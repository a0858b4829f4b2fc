package cmd

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/adapter/cassette"
	"github.com/justapithecus/vifei/eventlog"
	"github.com/justapithecus/vifei/types"
	"github.com/justapithecus/vifei/verify"
)

// embeddedFixture is the default determinism-replay fixture: a small,
// fixed cassette recording exercising every canonicalized record type.
// It ships inside the binary so `verify` runs without any external file.
//
//go:embed testdata/verify_fixture.jsonl
var embeddedFixture string

// pinnedExpectedDigest is the view-model digest produced by replaying
// embeddedFixture through reduce+project. It is computed once and baked
// in here rather than derived at runtime, so verify actually witnesses
// determinism against a fixed value instead of comparing a run against
// itself. Recompute and update this constant if embeddedFixture or the
// reduce/project/digest path it exercises ever changes intentionally.
const pinnedExpectedDigest = "441472830dd9963b8d4f41c1b5deef175850f3c7e145af25fa9b0c07f2bc0b01"

var (
	strictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "Fail non-zero if any required check fails",
	}
	fullFlag = &cli.BoolFlag{
		Name:  "full",
		Usage: "Also re-run tour and diff against --baseline-dir for self-consistency",
	}
	fixtureFlag = &cli.StringFlag{
		Name:  "fixture",
		Usage: "Fixture override for the determinism replay check (default: embedded fixture)",
	}
	verifyOutputDirFlag = &cli.StringFlag{
		Name:  "output-dir",
		Value: "verify-output",
		Usage: "Output directory for verification artifacts",
	}
	baselineDirFlag = &cli.StringFlag{
		Name:  "baseline-dir",
		Usage: "Prior tour artifact directory to diff against for cross-run self-consistency (--full only)",
	}
)

// VerifyCommand returns the verify command: replay a known fixture
// end-to-end and assert the resulting view-model digest equals
// pinnedExpectedDigest. --baseline-dir/--full add a separate, additional
// cross-run check (reduce+project digest vs. a fresh tour rerun vs. a
// prior tour's recorded digest) on top of that fixed comparison, never in
// place of it.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Run trust verification checks and emit an auditable summary",
		Flags: append(GlobalFlags(), strictFlag, fullFlag, fixtureFlag, verifyOutputDirFlag, baselineDirFlag, blobDirFlag),
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	events, err := loadVerifyFixture(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("verify: %v", err), ExitRuntime)
	}

	actual, err := viewModelDigestFor(events)
	if err != nil {
		return cli.Exit(fmt.Sprintf("verify: %v", err), ExitRuntime)
	}

	baselineDir := c.String("baseline-dir")
	crossRunChecked := c.Bool("full") && baselineDir != ""
	if crossRunChecked {
		if _, statErr := os.Stat(baselineDir + "/viewmodel.hash"); statErr != nil {
			crossRunChecked = false
		}
	}

	var report *verify.Report
	if c.Bool("full") {
		report, err = verify.RunFull(events, pinnedExpectedDigest, c.String("output-dir"), baselineDir)
	} else {
		report, err = verify.Run(events, pinnedExpectedDigest)
	}
	checksPassed := err == nil
	if err != nil {
		if c.Bool("strict") {
			return cli.Exit(fmt.Sprintf("verify: %v", err), ExitRuntime)
		}
		fmt.Fprintf(os.Stderr, "verify: warning: %v\n", err)
		report = &verify.Report{Digest: actual, EventCount: len(events)}
	}

	if !wantsJSON(c) {
		fmt.Printf("verify: digest %s over %d events (pinned %s, checks_passed=%v, cross_run_checked=%v, full=%v, strict=%v)\n",
			report.Digest, report.EventCount, pinnedExpectedDigest, checksPassed, crossRunChecked, c.Bool("full"), c.Bool("strict"))
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Digest             string `json:"digest"`
		EventCount         int    `json:"event_count"`
		PinnedDigest       string `json:"pinned_digest"`
		CrossRunChecked    bool   `json:"cross_run_checked"`
		Full               bool   `json:"full"`
		Strict             bool   `json:"strict"`
		RobotSchemaVersion string `json:"robot_schema_version"`
	}{Digest: report.Digest, EventCount: report.EventCount, PinnedDigest: pinnedExpectedDigest, CrossRunChecked: crossRunChecked, Full: c.Bool("full"), Strict: c.Bool("strict"), RobotSchemaVersion: ROBOTSchemaVersion})
}

// loadVerifyFixture parses --fixture (or the embedded default) through
// cassette and commits it into a scratch log so the replay sees real
// CommittedEvents, the same shape a production run would produce.
func loadVerifyFixture(c *cli.Context) ([]types.CommittedEvent, error) {
	var data []byte
	if path := c.String("fixture"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", path, err)
		}
		data = raw
	} else {
		data = []byte(embeddedFixture)
	}

	imports, err := cassette.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	logPath := c.String("output-dir") + "/fixture.committed.jsonl"
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
