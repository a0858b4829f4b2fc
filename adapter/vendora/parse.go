// Package vendora parses the Vendor-A Responses transcript format: a
// stream of response lifecycle and output-item events.
package vendora

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/justapithecus/vifei/adapter"
	"github.com/justapithecus/vifei/types"
)

// SourceID is the source_id every event produced by this adapter carries.
const SourceID = "vendor-a-responses"

// SchemaVersion is the pinned schema version for this format.
const SchemaVersion = adapter.VendorASchemaVersion

type outputItem struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Output    any            `json:"output"`
}

type record struct {
	Type          string          `json:"type"`
	SchemaVersion *string         `json:"schema_version"`
	CommitIndex   *uint64         `json:"commit_index"`
	ResponseID    *string         `json:"response_id"`
	EventID       *string         `json:"event_id"`
	Model         string          `json:"model"`
	Status        *string         `json:"status"`
	Item          *outputItem     `json:"item"`
}

// Parse canonicalizes a Vendor-A Responses stream into an ordered
// sequence of ImportEvents via the shared per-record contract. Output
// items mapping to a tool invocation/result canonicalize to the same
// ToolCall/ToolResult variants every other adapter uses (P9).
func Parse(r io.Reader) ([]types.ImportEvent, error) {
	lines, err := adapter.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("vendora: read input: %w", err)
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

		runID, runSynth := adapter.NormalizeIdentity(rec.ResponseID, fmt.Sprintf("%s:%d", SourceID, seq))
		eventID, eventSynth := adapter.NormalizeIdentity(rec.EventID, fmt.Sprintf("%s:%d", SourceID, seq))
		synthesized := runSynth || eventSynth

		payload, tier := canonicalize(rec)
		events = append(events, adapter.NextImportEvent(runID, eventID, SourceID, seq, 0, tier, payload, synthesized))
	}
	return events, nil
}

func canonicalize(rec record) (types.Payload, types.Tier) {
	switch rec.Type {
	case "response.created":
		return types.RunStart{Agent: rec.Model}, types.TierA
	case "response.completed":
		var exitCode *int64
		if rec.Status != nil && *rec.Status == "completed" {
			zero := int64(0)
			exitCode = &zero
		}
		return types.RunEnd{ExitCode: exitCode, Reason: rec.Status}, types.TierA
	case "response.output_item.added":
		if rec.Item != nil && rec.Item.Type == "function_call" {
			return types.ToolCall{Tool: rec.Item.Name, Args: rec.Item.Arguments}, types.TierB
		}
		return genericFromItem(rec), types.TierC
	case "response.output_item.done":
		if rec.Item != nil && rec.Item.Type == "function_call_output" {
			return types.ToolResult{Tool: rec.Item.Name, Result: map[string]any{"output": rec.Item.Output}}, types.TierB
		}
		return genericFromItem(rec), types.TierC
	default:
		return types.Generic{Type: rec.Type}, types.TierC
	}
}

func genericFromItem(rec record) types.Generic {
	fields := map[string]any{}
	if rec.Item != nil {
		fields["item_type"] = rec.Item.Type
		fields["item_name"] = rec.Item.Name
	}
	return types.Generic{Type: rec.Type, Fields: fields}
}

func contractError(seq int64, message string) types.ImportEvent {
	runID := fmt.Sprintf("%s:%d", SourceID, seq)
	return adapter.NextImportEvent(runID, runID, SourceID, seq, 0, types.TierA, adapter.ContractErrorPayload(message), true)
}
