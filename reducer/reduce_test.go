package reducer

import (
	"errors"
	"testing"

	"github.com/justapithecus/vifei/types"
)

func committed(i uint64, tier types.Tier, payload types.Payload) types.CommittedEvent {
	return types.CommittedEvent{
		ImportEvent: types.ImportEvent{
			RunID: "run-1", EventID: "e", SourceID: "cassette", Tier: tier, Payload: payload,
		},
		CommitIndex: i,
	}
}

func TestReducePolicyDecisionValidTransition(t *testing.T) {
	state := types.NewState()
	ev := committed(0, types.TierA, types.PolicyDecision{
		FromLevel: types.L0, ToLevel: types.L1, Trigger: "queue_depth", QueuePressure: 0.5,
	})
	state, err := Reduce(state, ev)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if state.DegradationLevel != types.L1 {
		t.Fatalf("degradation level = %s, want L1", state.DegradationLevel)
	}
	if state.QueuePressureMicros != 500000 {
		t.Fatalf("queue pressure micros = %d, want 500000", state.QueuePressureMicros)
	}
	if len(state.Transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(state.Transitions))
	}
}

func TestReducePolicyDecisionInvalidTransition(t *testing.T) {
	state := types.NewState()
	ev := committed(0, types.TierA, types.PolicyDecision{
		FromLevel: types.L0, ToLevel: types.L3, Trigger: "spike", QueuePressure: 0.9,
	})
	_, err := Reduce(state, ev)
	var violation *InvariantViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected InvariantViolation, got %v", err)
	}
}

func TestReducePolicyDecisionAllowsJumpToL5(t *testing.T) {
	state := types.NewState()
	ev := committed(0, types.TierA, types.PolicyDecision{
		FromLevel: types.L1, ToLevel: types.L5, Trigger: "fatal", QueuePressure: 1.0,
	})
	state, err := Reduce(state, ev)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if state.DegradationLevel != types.L5 {
		t.Fatalf("degradation level = %s, want L5", state.DegradationLevel)
	}
	if state.AggregationMode != types.AggregationSafeFailure {
		t.Fatalf("aggregation mode = %s, want safe_failure", state.AggregationMode)
	}
}

func TestReduceErrorFlipsExportSafetyToDirty(t *testing.T) {
	state := types.NewState()
	severity := "error"
	ev := committed(0, types.TierA, types.Error{Kind: "contract", Message: "bad", Severity: &severity})
	state, err := Reduce(state, ev)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if state.ExportSafetyState != types.ExportSafetyDirty {
		t.Fatalf("export safety = %s, want dirty", state.ExportSafetyState)
	}
}

func TestReduceErrorNeverUnrefuses(t *testing.T) {
	state := types.NewState()
	state.ExportSafetyState = types.ExportSafetyRefused
	severity := "error"
	ev := committed(0, types.TierA, types.Error{Kind: "contract", Message: "bad", Severity: &severity})
	state, err := Reduce(state, ev)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if state.ExportSafetyState != types.ExportSafetyRefused {
		t.Fatalf("export safety = %s, want refused (must remain terminal)", state.ExportSafetyState)
	}
}

func TestReduceAllIsDeterministic(t *testing.T) {
	events := []types.CommittedEvent{
		committed(0, types.TierA, types.RunStart{Agent: "test"}),
		committed(1, types.TierA, types.PolicyDecision{FromLevel: types.L0, ToLevel: types.L1, Trigger: "x", QueuePressure: 0.3}),
		committed(2, types.TierB, types.ToolCall{Tool: "search"}),
		committed(3, types.TierA, types.RunEnd{}),
	}

	s1, err := ReduceAll(events)
	if err != nil {
		t.Fatalf("ReduceAll #1: %v", err)
	}
	s2, err := ReduceAll(events)
	if err != nil {
		t.Fatalf("ReduceAll #2: %v", err)
	}
	if s1.EventCount != s2.EventCount || s1.DegradationLevel != s2.DegradationLevel ||
		s1.QueuePressureMicros != s2.QueuePressureMicros || len(s1.Transitions) != len(s2.Transitions) {
		t.Fatalf("two folds over the same log diverged: %+v vs %+v", s1, s2)
	}
}

func TestReduceEventCountIncrementsForEveryEvent(t *testing.T) {
	state := types.NewState()
	events := []types.CommittedEvent{
		committed(0, types.TierA, types.RunStart{Agent: "test"}),
		committed(1, types.TierB, types.ToolCall{Tool: "x"}),
		committed(2, types.TierA, types.RunEnd{}),
	}
	for _, ev := range events {
		var err error
		state, err = Reduce(state, ev)
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}
	}
	if state.EventCount != 3 {
		t.Fatalf("event count = %d, want 3", state.EventCount)
	}
}
