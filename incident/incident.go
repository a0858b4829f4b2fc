// Package incident wraps bundle and compare into a single artifact: a
// directory containing a share-safe bundle for the left side of a
// comparison plus the diff report against the right side.
package incident

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/bundle"
	"github.com/justapithecus/vifei/compare"
	"github.com/justapithecus/vifei/types"
)

// Result reports what was written to outputDir.
type Result struct {
	Dir          string
	BundleResult *bundle.Result
	Report       *compare.Report
}

// Build diffs leftEvents against rightEvents, bundles the left side's
// committed log (gated through the same secret scan bundle.Build
// always runs), and writes both artifacts under outputDir as
// bundle.tar.zst and diff.json. The right side's ImportEvent slice may
// come from a fresh adapter parse or from reading a committed log; the
// left side is always a committed log, since it is the side bundled.
func Build(leftEventlogBytes []byte, leftCommitted []types.CommittedEvent, leftBlobs blob.Backend, rightEvents []types.ImportEvent, outputDir string) (*Result, error) {
	leftImport := make([]types.ImportEvent, len(leftCommitted))
	for i, ev := range leftCommitted {
		leftImport[i] = ev.ImportEvent
	}

	report, err := compare.Compare(leftImport, rightEvents)
	if err != nil {
		return nil, fmt.Errorf("incident: compare: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("incident: create %s: %w", outputDir, err)
	}

	bundlePath := filepath.Join(outputDir, "bundle.tar.zst")
	bundleResult, err := bundle.Build(leftEventlogBytes, leftCommitted, leftBlobs, bundlePath)
	if err != nil {
		return nil, fmt.Errorf("incident: bundle: %w", err)
	}

	diffJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("incident: encode diff report: %w", err)
	}
	diffPath := filepath.Join(outputDir, "diff.json")
	if err := os.WriteFile(diffPath, diffJSON, 0o644); err != nil {
		return nil, fmt.Errorf("incident: write %s: %w", diffPath, err)
	}

	return &Result{Dir: outputDir, BundleResult: bundleResult, Report: report}, nil
}
