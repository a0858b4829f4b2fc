package vendora

import (
	"strings"
	"testing"

	"github.com/justapithecus/vifei/types"
)

func TestParseSchemaMismatch(t *testing.T) {
	input := `{"type":"response.created","schema_version":"vendor-a-responses-v999","response_id":"r1"}`
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
	if errPayload.Kind != "contract" || !strings.Contains(errPayload.Message, "schema_version mismatch") {
		t.Fatalf("unexpected error payload: %+v", errPayload)
	}
}

func TestParseFunctionCallShapes(t *testing.T) {
	input := `{"type":"response.created","response_id":"r1","event_id":"o1","model":"test-model"}
{"type":"response.output_item.added","response_id":"r1","event_id":"o2","item":{"id":"oi1","type":"function_call","name":"search","arguments":{"q":"x"}}}
{"type":"response.output_item.done","response_id":"r1","event_id":"o3","item":{"id":"oi2","type":"function_call_output","name":"search","output":"ok"}}
{"type":"response.completed","response_id":"r1","event_id":"o4","status":"completed"}`
	events, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantKinds := []types.PayloadKind{types.KindRunStart, types.KindToolCall, types.KindToolResult, types.KindRunEnd}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d", len(events), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := events[i].Payload.Kind(); got != want {
			t.Errorf("event %d kind = %s, want %s", i, got, want)
		}
		if events[i].SourceID != SourceID {
			t.Errorf("event %d source_id = %s, want %s", i, events[i].SourceID, SourceID)
		}
	}
}
