// Package projection derives a ViewModel from reducer State (C5) and
// computes its view-model digest: a BLAKE3 hash over a canonical
// serialization, the primary determinism witness (I6).
package projection

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/justapithecus/vifei/types"
)

// Project derives a ViewModel from state. queue_pressure is derived from
// the integer micro-units by a single fixed division — never carried
// around as a float anywhere upstream of this boundary.
func Project(state types.State) types.ViewModel {
	return types.ViewModel{
		ProjectionInvariantsVersion: types.ProjectionInvariantsVersion,
		EventCount:                  state.EventCount,
		TierADrops:                  state.TierADrops,
		DegradationLevel:            state.DegradationLevel,
		AggregationMode:             state.AggregationMode,
		AggregationBinSize:          state.AggregationBinSize,
		QueuePressure:               queuePressureFloat(state.QueuePressureMicros),
		ExportSafetyState:           state.ExportSafetyState,
		Transitions:                 state.Transitions,
	}
}

// queuePressureFloat renders integer micro-units as a [0,1] float via a
// single fixed division, avoiding any intermediate floating-point
// accumulation that could drift across platforms.
func queuePressureFloat(micros int64) float64 {
	return float64(micros) / float64(types.QueuePressureScale)
}

// Canonical returns the canonical JSON serialization of vm: fixed field
// order (ViewModel's struct layout), no map keys (ViewModel carries none
// directly — Transitions is a slice of structs with fixed field order
// too, per DESIGN NOTES "hash-map iteration must never reach a
// serialized artifact").
func Canonical(vm types.ViewModel) ([]byte, error) {
	data, err := json.Marshal(vm)
	if err != nil {
		return nil, fmt.Errorf("projection: canonical encode: %w", err)
	}
	return data, nil
}

// Digest computes the view-model digest: BLAKE3 over the canonical
// serialization, rendered as a 64-char lowercase hex string. Two runs
// over identical input MUST produce identical digests (I6).
func Digest(vm types.ViewModel) (string, error) {
	data, err := Canonical(vm)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
