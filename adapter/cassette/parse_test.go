package cassette

import (
	"strings"
	"testing"

	"github.com/justapithecus/vifei/types"
)

func TestParseSessionStartSynthesizesIdentity(t *testing.T) {
	input := `{"type":"session_start","session_id":"s1","timestamp":"2026-02-16T10:00:00Z","agent":"test"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	rs, ok := ev.Payload.(types.RunStart)
	if !ok {
		t.Fatalf("payload = %T, want RunStart", ev.Payload)
	}
	if rs.Agent != "test" {
		t.Fatalf("agent = %q, want %q", rs.Agent, "test")
	}
	if !ev.Synthesized {
		t.Fatalf("expected synthesized=true (session_id used as run_id, no event_id present)")
	}
	if ev.SourceSeq == nil || *ev.SourceSeq != 0 {
		t.Fatalf("source_seq = %v, want 0", ev.SourceSeq)
	}
}

func TestParseSchemaMismatchYieldsContractError(t *testing.T) {
	input := `{"type":"session_start","schema_version":"vendor-A-v999","session_id":"s1"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	errPayload, ok := events[0].Payload.(types.Error)
	if !ok {
		t.Fatalf("payload = %T, want Error", events[0].Payload)
	}
	if errPayload.Kind != "contract" {
		t.Fatalf("kind = %q, want contract", errPayload.Kind)
	}
	if !strings.Contains(errPayload.Message, "schema_version mismatch") {
		t.Fatalf("message = %q, missing schema_version mismatch", errPayload.Message)
	}
}

func TestParseRejectsSourceCommitIndex(t *testing.T) {
	input := `{"type":"session_start","session_id":"s1","commit_index":5}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if _, ok := events[0].Payload.(types.Error); !ok {
		t.Fatalf("payload = %T, want Error", events[0].Payload)
	}
}

func TestParseEmptyInput(t *testing.T) {
	events, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestParseMalformedJSONContinues(t *testing.T) {
	input := "{not json}\n" + `{"type":"session_start","session_id":"s1","agent":"test"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if _, ok := events[0].Payload.(types.Error); !ok {
		t.Fatalf("first payload = %T, want Error", events[0].Payload)
	}
	if _, ok := events[1].Payload.(types.RunStart); !ok {
		t.Fatalf("second payload = %T, want RunStart", events[1].Payload)
	}
}

func TestParseExtractsTimestampNs(t *testing.T) {
	input := `{"type":"session_start","session_id":"s1","timestamp":"2026-02-16T10:00:00Z","agent":"test"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := int64(1771236000000000000)
	if events[0].TimestampNs != want {
		t.Fatalf("timestamp_ns = %d, want %d", events[0].TimestampNs, want)
	}
}

func TestParseMalformedTimestampYieldsContractError(t *testing.T) {
	input := `{"type":"session_start","session_id":"s1","timestamp":"not-a-timestamp"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := events[0].Payload.(types.Error); !ok {
		t.Fatalf("payload = %T, want Error", events[0].Payload)
	}
}

func TestParseClockSkewDetected(t *testing.T) {
	input := `{"type":"clock_skew_detected","session_id":"s1","observed_source_id":"vendor-a-responses","observed_delta_ns":1500000000}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	skew, ok := events[0].Payload.(types.ClockSkewDetected)
	if !ok {
		t.Fatalf("payload = %T, want ClockSkewDetected", events[0].Payload)
	}
	if skew.SourceID != "vendor-a-responses" || skew.ObservedDeltaNs != 1500000000 {
		t.Fatalf("unexpected ClockSkewDetected: %+v", skew)
	}
}

func TestParseFileOrderPreserved(t *testing.T) {
	input := `{"type":"session_start","session_id":"s1","agent":"test"}
{"type":"tool_call","session_id":"s1","tool":"search"}
{"type":"tool_result","session_id":"s1","tool":"search","status":"ok"}
{"type":"session_end","session_id":"s1","exit_code":0}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	wantKinds := []types.PayloadKind{types.KindRunStart, types.KindToolCall, types.KindToolResult, types.KindRunEnd}
	for i, want := range wantKinds {
		if got := events[i].Payload.Kind(); got != want {
			t.Errorf("event %d kind = %s, want %s", i, got, want)
		}
		if events[i].SourceSeq == nil || *events[i].SourceSeq != int64(i) {
			t.Errorf("event %d source_seq = %v, want %d", i, events[i].SourceSeq, i)
		}
	}
}
