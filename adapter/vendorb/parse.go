// Package vendorb parses the Vendor-B Messages transcript format: a
// stream of message lifecycle and content-block events.
package vendorb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/justapithecus/vifei/adapter"
	"github.com/justapithecus/vifei/types"
)

// SourceID is the source_id every event produced by this adapter carries.
const SourceID = "vendor-b-messages"

// SchemaVersion is the pinned schema version for this format.
const SchemaVersion = adapter.VendorBSchemaVersion

type contentBlock struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Name    string         `json:"name"`
	Input   map[string]any `json:"input"`
	Content any            `json:"content"`
}

type record struct {
	Type          string        `json:"type"`
	SchemaVersion *string       `json:"schema_version"`
	CommitIndex   *uint64       `json:"commit_index"`
	MessageID     *string       `json:"message_id"`
	EventID       *string       `json:"event_id"`
	Model         string        `json:"model"`
	StopReason    *string       `json:"stop_reason"`
	ContentBlock  *contentBlock `json:"content_block"`
}

// Parse canonicalizes a Vendor-B Messages stream into an ordered
// sequence of ImportEvents. "tool_use" content blocks canonicalize to
// ToolCall and "tool_result" blocks to ToolResult — the same variants
// Vendor-A's function-call output items produce (P9).
func Parse(r io.Reader) ([]types.ImportEvent, error) {
	lines, err := adapter.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("vendorb: read input: %w", err)
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

		runID, runSynth := adapter.NormalizeIdentity(rec.MessageID, fmt.Sprintf("%s:%d", SourceID, seq))
		eventID, eventSynth := adapter.NormalizeIdentity(rec.EventID, fmt.Sprintf("%s:%d", SourceID, seq))
		synthesized := runSynth || eventSynth

		payload, tier := canonicalize(rec)
		events = append(events, adapter.NextImportEvent(runID, eventID, SourceID, seq, 0, tier, payload, synthesized))
	}
	return events, nil
}

func canonicalize(rec record) (types.Payload, types.Tier) {
	switch rec.Type {
	case "message_start":
		return types.RunStart{Agent: rec.Model}, types.TierA
	case "message_stop":
		return types.RunEnd{Reason: rec.StopReason}, types.TierA
	case "content_block_start":
		if rec.ContentBlock != nil && rec.ContentBlock.Type == "tool_use" {
			return types.ToolCall{Tool: rec.ContentBlock.Name, Args: rec.ContentBlock.Input}, types.TierB
		}
		return genericFromBlock(rec), types.TierC
	case "content_block_stop":
		if rec.ContentBlock != nil && rec.ContentBlock.Type == "tool_result" {
			return types.ToolResult{Tool: rec.ContentBlock.Name, Result: map[string]any{"content": rec.ContentBlock.Content}}, types.TierB
		}
		return genericFromBlock(rec), types.TierC
	default:
		return types.Generic{Type: rec.Type}, types.TierC
	}
}

func genericFromBlock(rec record) types.Generic {
	fields := map[string]any{}
	if rec.ContentBlock != nil {
		fields["block_type"] = rec.ContentBlock.Type
		fields["block_name"] = rec.ContentBlock.Name
	}
	return types.Generic{Type: rec.Type, Fields: fields}
}

func contractError(seq int64, message string) types.ImportEvent {
	runID := fmt.Sprintf("%s:%d", SourceID, seq)
	return adapter.NextImportEvent(runID, runID, SourceID, seq, 0, types.TierA, adapter.ContractErrorPayload(message), true)
}
