package incident

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/compare"
	"github.com/justapithecus/vifei/eventlog"
	"github.com/justapithecus/vifei/types"
)

func TestBuildWritesBundleAndDiff(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.Open(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("blob.Open: %v", err)
	}
	logPath := filepath.Join(dir, "eventlog.jsonl")
	w, err := eventlog.Open(logPath, store)
	if err != nil {
		t.Fatalf("eventlog.Open: %v", err)
	}
	seq0 := int64(0)
	if _, err := w.Append(types.ImportEvent{
		RunID: "run-1", EventID: "e0", SourceID: "cassette", SourceSeq: &seq0,
		Payload: types.RunStart{Agent: "a"},
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	committed, err := eventlog.Read(logPath)
	if err != nil {
		t.Fatalf("eventlog.Read: %v", err)
	}

	seq1 := int64(0)
	right := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: &seq1, Payload: types.RunStart{Agent: "different"}},
	}

	outDir := filepath.Join(dir, "incident-out")
	res, err := Build(raw, committed, store, right, outDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Report.Equal {
		t.Fatalf("expected a divergence between left and right")
	}

	if _, err := os.Stat(filepath.Join(outDir, "bundle.tar.zst")); err != nil {
		t.Fatalf("bundle.tar.zst not written: %v", err)
	}
	diffBytes, err := os.ReadFile(filepath.Join(outDir, "diff.json"))
	if err != nil {
		t.Fatalf("diff.json not written: %v", err)
	}
	var report compare.Report
	if err := json.Unmarshal(diffBytes, &report); err != nil {
		t.Fatalf("diff.json not valid JSON: %v", err)
	}
	if report.Equal {
		t.Fatalf("persisted diff report should not be equal")
	}
}

func TestBuildRefusesOnSecretHit(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.Open(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("blob.Open: %v", err)
	}
	logPath := filepath.Join(dir, "eventlog.jsonl")
	w, err := eventlog.Open(logPath, store)
	if err != nil {
		t.Fatalf("eventlog.Open: %v", err)
	}
	seq0 := int64(0)
	if _, err := w.Append(types.ImportEvent{
		RunID: "run-1", EventID: "e0", SourceID: "cassette", SourceSeq: &seq0,
		Payload: types.ToolResult{Tool: "x", Result: map[string]any{"token": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}},
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	committed, err := eventlog.Read(logPath)
	if err != nil {
		t.Fatalf("eventlog.Read: %v", err)
	}

	outDir := filepath.Join(dir, "incident-out")
	_, err = Build(raw, committed, store, nil, outDir)
	if err == nil {
		t.Fatalf("expected an error when the left side contains a secret")
	}
}
