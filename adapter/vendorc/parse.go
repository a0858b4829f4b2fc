// Package vendorc parses the Vendor-C Translate transcript format: a
// stream of translation request/backpressure/result/completion events.
package vendorc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/justapithecus/vifei/adapter"
	"github.com/justapithecus/vifei/types"
)

// SourceID is the source_id every event produced by this adapter carries.
const SourceID = "vendor-c-translate"

// SchemaVersion is the pinned schema version for this format.
const SchemaVersion = adapter.VendorCSchemaVersion

type record struct {
	Type          string          `json:"type"`
	SchemaVersion *string         `json:"schema_version"`
	CommitIndex   *uint64         `json:"commit_index"`
	RequestID     *string         `json:"request_id"`
	EventID       *string         `json:"event_id"`
	FromLevel     types.LadderLevel `json:"from_level"`
	ToLevel       types.LadderLevel `json:"to_level"`
	Trigger       string          `json:"trigger"`
	QueuePressure float64         `json:"queue_pressure"`
	Text          string          `json:"text"`
	Kind          string          `json:"kind"`
	Message       string          `json:"message"`
	Severity      *string         `json:"severity"`
	Reason        *string         `json:"reason"`
}

// Parse canonicalizes a Vendor-C Translate stream into an ordered
// sequence of ImportEvents, using the shared per-record contract.
func Parse(r io.Reader) ([]types.ImportEvent, error) {
	lines, err := adapter.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("vendorc: read input: %w", err)
	}

	events := make([]types.ImportEvent, 0, len(lines))
	for i, line := range lines {
		seq := int64(i)
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			events = append(events, contractError(seq, fmt.Sprintf("malformed JSON: %v", err)))
			continue
		}
		if err := adapter.ValidateSchemaVersion(rec.SchemaVersion, SchemaVersion); err != nil {
			events = append(events, contractError(seq, err.Error()))
			continue
		}
		if err := adapter.RejectSourceCommitIndex(rec.CommitIndex); err != nil {
			events = append(events, contractError(seq, err.Error()))
			continue
		}

		runID, runSynth := adapter.NormalizeIdentity(rec.RequestID, fmt.Sprintf("%s:%d", SourceID, seq))
		eventID, eventSynth := adapter.NormalizeIdentity(rec.EventID, fmt.Sprintf("%s:%d", SourceID, seq))
		synthesized := runSynth || eventSynth

		payload, tier := canonicalize(rec)
		events = append(events, adapter.NextImportEvent(runID, eventID, SourceID, seq, 0, tier, payload, synthesized))
	}
	return events, nil
}

func canonicalize(rec record) (types.Payload, types.Tier) {
	switch rec.Type {
	case "translation.request":
		return types.RunStart{Agent: SourceID}, types.TierA
	case "translation.backpressure":
		return types.PolicyDecision{
			FromLevel:     rec.FromLevel,
			ToLevel:       rec.ToLevel,
			Trigger:       rec.Trigger,
			QueuePressure: rec.QueuePressure,
		}, types.TierA
	case "translation.result":
		return types.ToolResult{Tool: "translate", Result: map[string]any{"text": rec.Text}}, types.TierB
	case "translation.error":
		return types.Error{Kind: rec.Kind, Message: rec.Message, Severity: rec.Severity}, types.TierA
	case "translation.completed":
		return types.RunEnd{Reason: rec.Reason}, types.TierA
	default:
		return types.Generic{Type: rec.Type}, types.TierC
	}
}

func contractError(seq int64, message string) types.ImportEvent {
	runID := fmt.Sprintf("%s:%d", SourceID, seq)
	return adapter.NextImportEvent(runID, runID, SourceID, seq, 0, types.TierA, adapter.ContractErrorPayload(message), true)
}
