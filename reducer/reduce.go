// Package reducer implements the pure fold from a State and a
// CommittedEvent to the next State (C4). It performs no I/O, reads no
// clock, and uses no randomness: the same log folded twice must produce
// byte-identical output.
package reducer

import (
	"fmt"

	"github.com/justapithecus/vifei/types"
)

// InvariantViolation is returned when a committed event would violate a
// structural invariant (ladder monotonicity, a blob_ref marker without
// its original kind). A Tier-A drop marker is not a violation here: it
// is counted in State.TierADrops. It
// is a bug-level condition per the error taxonomy in §7: callers should
// treat it as fatal, not recoverable.
type InvariantViolation struct {
	CommitIndex uint64
	Reason      string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("reducer: invariant violation at commit_index=%d: %s", e.CommitIndex, e.Reason)
}

// Reduce folds one CommittedEvent into state, returning the next state.
// It never mutates its input: callers own State by value.
func Reduce(state types.State, ev types.CommittedEvent) (types.State, error) {
	state.EventCount++

	switch p := ev.Payload.(type) {
	case types.RunStart, types.RunEnd:
		// Run lifecycle markers are counted via EventCount; no further
		// state beyond that is tracked here (run-level aggregation is an
		// external collaborator concern, not a core reducer one).
		_ = p

	case types.PolicyDecision:
		if !types.ValidTransition(p.FromLevel, p.ToLevel) {
			return state, &InvariantViolation{
				CommitIndex: ev.CommitIndex,
				Reason:      fmt.Sprintf("ladder transition %s -> %s is not valid", p.FromLevel, p.ToLevel),
			}
		}
		micros := int64(p.QueuePressure*types.QueuePressureScale + 0.5)
		state.Transitions = append(state.Transitions, types.PolicyTransition{
			FromLevel:           p.FromLevel,
			ToLevel:             p.ToLevel,
			Trigger:             p.Trigger,
			QueuePressureMicros: micros,
		})
		state.DegradationLevel = p.ToLevel
		state.QueuePressureMicros = micros
		state.AggregationMode = aggregationModeForLevel(p.ToLevel)
		state.AggregationBinSize = binSizeForLevel(p.ToLevel)

	case types.Error:
		if p.Severity != nil && *p.Severity == "error" {
			if state.ExportSafetyState != types.ExportSafetyRefused {
				state.ExportSafetyState = types.ExportSafetyDirty
			}
		}

	case types.BlobRef:
		if p.OriginalKind == "" {
			// Defensive only against a malformed marker; the writer never
			// emits one without an original kind.
			return state, &InvariantViolation{CommitIndex: ev.CommitIndex, Reason: "blob_ref marker missing original_kind"}
		}
	}

	if ev.Tier == types.TierA && isDropMarker(ev.Payload) {
		state.TierADrops++
	}

	if state.ExportSafetyState == types.ExportSafetyUnknown {
		state.ExportSafetyState = types.ExportSafetyClean
	}

	return state, nil
}

// ReduceAll folds a full committed log from the zero state.
// reduce*(replay(log)) is required to equal reduce*(log) byte-for-byte:
// ReduceAll over a freshly replayed log must be indistinguishable from
// folding the log as it was written (determinism witness P3).
func ReduceAll(events []types.CommittedEvent) (types.State, error) {
	state := types.NewState()
	for _, ev := range events {
		var err error
		state, err = Reduce(state, ev)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// isDropMarker reports whether payload represents a dedicated Tier-A
// drop marker. The only way a Tier A event is "lost" is via such a
// marker — normal Tier A payloads are never dropped by definition.
func isDropMarker(p types.Payload) bool {
	g, ok := p.(types.Generic)
	return ok && g.Type == "tier_a_drop"
}

// aggregationModeForLevel derives the reducer's aggregation posture from
// the ladder level alone; there is no dedicated wire event for this
// (SPEC_FULL.md Open Question resolution (b)).
func aggregationModeForLevel(level types.LadderLevel) types.AggregationMode {
	switch level {
	case types.L0:
		return types.AggregationNone
	case types.L1, types.L2:
		return types.AggregationBinned
	case types.L3, types.L4:
		return types.AggregationCoalesced
	case types.L5:
		return types.AggregationSafeFailure
	default:
		return types.AggregationNone
	}
}

// binSizeForLevel derives the aggregation bin size implied by the ladder
// level. L0 has no binning (nil); each degradation step doubles the bin
// size; L5 has no bin size (aggregation itself halts).
func binSizeForLevel(level types.LadderLevel) *int64 {
	var size int64
	switch level {
	case types.L0:
		return nil
	case types.L1:
		size = 10
	case types.L2:
		size = 20
	case types.L3:
		size = 40
	case types.L4:
		size = 80
	case types.L5:
		return nil
	default:
		return nil
	}
	return &size
}
