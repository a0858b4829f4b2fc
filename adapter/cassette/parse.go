// Package cassette parses the internal, provider-agnostic Agent Cassette
// record format used for fixtures and replay.
package cassette

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/justapithecus/vifei/adapter"
	"github.com/justapithecus/vifei/types"
)

// SourceID is the source_id every event produced by this adapter carries.
const SourceID = "cassette"

// SchemaVersion is the pinned schema version for this format.
const SchemaVersion = adapter.CassetteSchemaVersion

type record struct {
	Type            string         `json:"type"`
	SchemaVersion   *string        `json:"schema_version"`
	CommitIndex     *uint64        `json:"commit_index"`
	SessionID       *string        `json:"session_id"`
	EventID         *string        `json:"event_id"`
	Timestamp       *string        `json:"timestamp"`
	Agent           string         `json:"agent"`
	Tool            string         `json:"tool"`
	Args            map[string]any `json:"args"`
	Result          map[string]any `json:"result"`
	Status          *string        `json:"status"`
	ExitCode        *int64         `json:"exit_code"`
	Reason          *string        `json:"reason"`
	Kind            string         `json:"kind"`
	Message         string         `json:"message"`
	Severity        *string        `json:"severity"`
	FieldPath       string         `json:"field_path"`
	MatchedPat      string         `json:"matched_pattern"`
	ObservedSource  string         `json:"observed_source_id"`
	ObservedDeltaNs int64          `json:"observed_delta_ns"`
}

// Parse canonicalizes a newline-delimited cassette stream into an ordered
// sequence of ImportEvents, applying the per-record contract: parse,
// validate schema version, reject commit_index, normalize identity,
// assign source_seq, canonicalize payload. File order is authoritative;
// records are never reordered by timestamp.
func Parse(r io.Reader) ([]types.ImportEvent, error) {
	lines, err := adapter.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("cassette: read input: %w", err)
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

		timestampNs, err := parseTimestampNs(rec.Timestamp)
		if err != nil {
			events = append(events, contractError(seq, err.Error()))
			continue
		}

		runID, runSynth := adapter.NormalizeIdentity(rec.SessionID, fmt.Sprintf("%s:%d", SourceID, seq))
		eventID, eventSynth := adapter.NormalizeIdentity(rec.EventID, fmt.Sprintf("%s:%d", SourceID, seq))
		synthesized := runSynth || eventSynth

		payload, tier := canonicalize(rec)
		events = append(events, adapter.NextImportEvent(runID, eventID, SourceID, seq, timestampNs, tier, payload, synthesized))
	}
	return events, nil
}

func canonicalize(rec record) (types.Payload, types.Tier) {
	switch rec.Type {
	case "session_start":
		return types.RunStart{Agent: rec.Agent, Args: rec.Args}, types.TierA
	case "session_end":
		return types.RunEnd{ExitCode: rec.ExitCode, Reason: rec.Reason}, types.TierA
	case "tool_call":
		return types.ToolCall{Tool: rec.Tool, Args: rec.Args}, types.TierB
	case "tool_result":
		return types.ToolResult{Tool: rec.Tool, Result: rec.Result, Status: rec.Status}, types.TierB
	case "error":
		return types.Error{Kind: rec.Kind, Message: rec.Message, Severity: rec.Severity}, types.TierA
	case "redaction_applied":
		return types.RedactionApplied{FieldPath: rec.FieldPath, MatchedPattern: rec.MatchedPat}, types.TierB
	case "clock_skew_detected":
		return types.ClockSkewDetected{SourceID: rec.ObservedSource, ObservedDeltaNs: rec.ObservedDeltaNs}, types.TierB
	default:
		return types.Generic{Type: rec.Type, Fields: recordFields(rec)}, types.TierC
	}
}

// parseTimestampNs parses the cassette's optional RFC3339 timestamp field
// into epoch nanoseconds. The core never reads the local clock (§9
// DESIGN NOTES "Clock skew"); a present-but-unparsable timestamp is a
// contract violation, and an absent one yields 0 rather than wall-clock
// substitution.
func parseTimestampNs(raw *string) (int64, error) {
	if raw == nil || *raw == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *raw)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp: %v", err)
	}
	return t.UnixNano(), nil
}

func recordFields(rec record) map[string]any {
	fields := map[string]any{}
	if rec.Agent != "" {
		fields["agent"] = rec.Agent
	}
	if rec.Tool != "" {
		fields["tool"] = rec.Tool
	}
	return fields
}

func contractError(seq int64, message string) types.ImportEvent {
	runID := fmt.Sprintf("%s:%d", SourceID, seq)
	return adapter.NextImportEvent(runID, runID, SourceID, seq, 0, types.TierA, adapter.ContractErrorPayload(message), true)
}
