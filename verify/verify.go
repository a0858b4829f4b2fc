// Package verify implements the self-consistency check (C8): replaying a
// pinned fixture end-to-end and asserting the resulting view-model
// digest against an expected value, catching any accidental determinism
// regression before it reaches a release.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/justapithecus/vifei/projection"
	"github.com/justapithecus/vifei/reducer"
	"github.com/justapithecus/vifei/tour"
	"github.com/justapithecus/vifei/types"
)

// MismatchError reports a digest that did not match what was expected.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("verify: view-model digest mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// Report is the result of a successful Run.
type Report struct {
	Digest     string
	EventCount int
}

// Run replays events through the reducer and projection and compares the
// resulting view-model digest to expected. A mismatch is reported as a
// *MismatchError rather than a generic error, so callers can distinguish
// "the pipeline broke" from "the digest changed" when mapping to an exit
// code.
func Run(events []types.CommittedEvent, expected string) (*Report, error) {
	state, err := reducer.ReduceAll(events)
	if err != nil {
		return nil, fmt.Errorf("verify: reduce: %w", err)
	}
	vm := projection.Project(state)
	digest, err := projection.Digest(vm)
	if err != nil {
		return nil, fmt.Errorf("verify: digest: %w", err)
	}
	if digest != expected {
		return nil, &MismatchError{Expected: expected, Actual: digest}
	}
	return &Report{Digest: digest, EventCount: len(events)}, nil
}

// RunFull performs Run's digest check, then additionally re-runs the
// tour harness into outputDir and diffs the resulting viewmodel.hash
// against the one already present in priorArtifactsDir (if any),
// catching drift between Run's reduce+project digest and the proof
// harness's.
func RunFull(events []types.CommittedEvent, expected, outputDir, priorArtifactsDir string) (*Report, error) {
	report, err := Run(events, expected)
	if err != nil {
		return nil, err
	}

	tourResult, err := tour.Run(events, outputDir)
	if err != nil {
		return nil, fmt.Errorf("verify: tour rerun: %w", err)
	}
	if tourResult.ViewModelHash != report.Digest {
		return nil, &MismatchError{Expected: report.Digest, Actual: tourResult.ViewModelHash}
	}

	if priorArtifactsDir == "" {
		return report, nil
	}
	priorHashPath := filepath.Join(priorArtifactsDir, "viewmodel.hash")
	priorBytes, err := os.ReadFile(priorHashPath)
	if os.IsNotExist(err) {
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify: read %s: %w", priorHashPath, err)
	}
	prior := strings.TrimSpace(string(priorBytes))
	if prior != tourResult.ViewModelHash {
		return nil, &MismatchError{Expected: prior, Actual: tourResult.ViewModelHash}
	}

	return report, nil
}
