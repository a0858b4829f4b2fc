package compare

import (
	"testing"

	"github.com/justapithecus/vifei/types"
)

func seq(n int64) *int64 { return &n }

func TestCompareEqualSequences(t *testing.T) {
	left := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
		{SourceID: "cassette", SourceSeq: seq(1), Payload: types.RunEnd{}},
	}
	right := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
		{SourceID: "cassette", SourceSeq: seq(1), Payload: types.RunEnd{}},
	}

	report, err := Compare(left, right)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !report.Equal {
		t.Fatalf("expected equal report, got divergences: %+v", report.Divergences)
	}
	if report.FirstDivergence != nil {
		t.Fatalf("expected no first divergence, got %+v", report.FirstDivergence)
	}
}

func TestComparePayloadMismatch(t *testing.T) {
	left := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
	}
	right := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "b"}},
	}

	report, err := Compare(left, right)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if report.Equal {
		t.Fatalf("expected a divergence")
	}
	if report.FirstDivergence == nil || report.FirstDivergence.Kind != KindPayloadMismatch {
		t.Fatalf("unexpected first divergence: %+v", report.FirstDivergence)
	}
}

func TestCompareMissingOnRight(t *testing.T) {
	left := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
		{SourceID: "cassette", SourceSeq: seq(1), Payload: types.RunEnd{}},
	}
	right := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
	}

	report, err := Compare(left, right)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if report.Equal {
		t.Fatalf("expected a divergence")
	}
	if report.FirstDivergence.Kind != KindMissingRight {
		t.Fatalf("unexpected kind: %v", report.FirstDivergence.Kind)
	}
	if report.FirstDivergence.SourceSeq != 1 {
		t.Fatalf("unexpected source_seq: %d", report.FirstDivergence.SourceSeq)
	}
}

func TestCompareFirstDivergenceIsEarliestByKeyOrder(t *testing.T) {
	left := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
		{SourceID: "cassette", SourceSeq: seq(1), Payload: types.RunEnd{}},
		{SourceID: "cassette", SourceSeq: seq(2), Payload: types.RunEnd{}},
	}
	right := []types.ImportEvent{
		{SourceID: "cassette", SourceSeq: seq(0), Payload: types.RunStart{Agent: "a"}},
		{SourceID: "cassette", SourceSeq: seq(1), Payload: types.RunStart{Agent: "mismatch"}},
	}

	report, err := Compare(left, right)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if report.FirstDivergence.SourceSeq != 1 {
		t.Fatalf("expected first divergence at source_seq 1, got %d", report.FirstDivergence.SourceSeq)
	}
	if len(report.Divergences) != 2 {
		t.Fatalf("expected 2 divergences (mismatch at 1, missing at 2), got %d", len(report.Divergences))
	}
}

func TestCompareRejectsEventsWithoutSourceSeq(t *testing.T) {
	left := []types.ImportEvent{
		{SourceID: "cassette", EventID: "no-seq", Payload: types.RunStart{Agent: "a"}},
	}
	right := []types.ImportEvent{}

	if _, err := Compare(left, right); err == nil {
		t.Fatalf("expected an error for an event missing source_seq")
	}
}
