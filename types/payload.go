package types

import (
	"encoding/json"
	"fmt"
)

// Tier encodes drop policy for an event. Tier A is never dropped; losing
// one under backpressure is a fatal invariant violation.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Valid reports whether t is one of the three recognized tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC:
		return true
	default:
		return false
	}
}

// LadderLevel is one of the six degradation states L0..L5. L0 is nominal;
// L1..L4 are progressive aggregation/degradation; L5 is the terminal
// safe-failure posture.
type LadderLevel string

const (
	L0 LadderLevel = "L0"
	L1 LadderLevel = "L1"
	L2 LadderLevel = "L2"
	L3 LadderLevel = "L3"
	L4 LadderLevel = "L4"
	L5 LadderLevel = "L5"
)

var ladderOrdinal = map[LadderLevel]int{
	L0: 0, L1: 1, L2: 2, L3: 3, L4: 4, L5: 5,
}

// Valid reports whether l is one of L0..L5.
func (l LadderLevel) Valid() bool {
	_, ok := ladderOrdinal[l]
	return ok
}

// LadderRank returns l's ordinal position (L0=0 .. L5=5), or -1 if l is
// not a recognized level. Exported for callers outside this package that
// need to compare levels (e.g. deriving a maximum level reached).
func LadderRank(l LadderLevel) int {
	rank, ok := ladderOrdinal[l]
	if !ok {
		return -1
	}
	return rank
}

// ValidTransition reports whether moving from `from` to `to` satisfies the
// ladder monotonicity invariant: |to - from| <= 1, or to == L5 (the fatal
// posture may be entered from any level). L5 is terminal: no transition
// out of it is valid.
func ValidTransition(from, to LadderLevel) bool {
	if to == L5 {
		return true
	}
	if from == L5 {
		return false
	}
	fo, ok1 := ladderOrdinal[from]
	to2, ok2 := ladderOrdinal[to]
	if !ok1 || !ok2 {
		return false
	}
	diff := to2 - fo
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// PayloadKind is the discriminator tag for the closed payload variant set.
type PayloadKind string

const (
	KindRunStart         PayloadKind = "run_start"
	KindRunEnd           PayloadKind = "run_end"
	KindToolCall         PayloadKind = "tool_call"
	KindToolResult       PayloadKind = "tool_result"
	KindError            PayloadKind = "error"
	KindPolicyDecision   PayloadKind = "policy_decision"
	KindRedactionApplied PayloadKind = "redaction_applied"
	KindClockSkew        PayloadKind = "clock_skew_detected"
	KindGeneric          PayloadKind = "generic"
	// KindBlobRef is the stub marker substituted for a payload whose
	// canonical encoding exceeded InlinePayloadMaxBytes; the original
	// bytes live in the blob store under the record's payload_ref.
	KindBlobRef PayloadKind = "blob_ref"
)

// Payload is the sealed interface implemented by every member of the
// closed payload variant set. Unknown wire kinds never satisfy it; a
// reader encountering one must fail loud rather than coerce it in.
type Payload interface {
	Kind() PayloadKind
}

// RunStart marks the beginning of an agent run.
type RunStart struct {
	Agent string         `json:"agent"`
	Args  map[string]any `json:"args,omitempty"`
}

func (RunStart) Kind() PayloadKind { return KindRunStart }

// RunEnd marks the end of an agent run.
type RunEnd struct {
	ExitCode *int64  `json:"exit_code,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}

func (RunEnd) Kind() PayloadKind { return KindRunEnd }

// ToolCall records an agent invoking a tool.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

func (ToolCall) Kind() PayloadKind { return KindToolCall }

// ToolResult records a tool's response to a ToolCall.
type ToolResult struct {
	Tool   string         `json:"tool"`
	Result map[string]any `json:"result,omitempty"`
	Status *string        `json:"status,omitempty"`
}

func (ToolResult) Kind() PayloadKind { return KindToolResult }

// Error records a contract violation or runtime failure observed during
// ingestion. A severity of "error" flips the reducer's export-safety
// state to Dirty (unless already Refused).
type Error struct {
	Kind     string  `json:"kind"`
	Message  string  `json:"message"`
	Severity *string `json:"severity,omitempty"`
}

func (Error) Kind() PayloadKind { return KindError }

// PolicyDecision records a ladder transition observed by the ingesting
// source. QueuePressure is the wire-format float in [0, 1]; the reducer
// converts it to integer micro-units on commit.
type PolicyDecision struct {
	FromLevel     LadderLevel `json:"from_level"`
	ToLevel       LadderLevel `json:"to_level"`
	Trigger       string      `json:"trigger"`
	QueuePressure float64     `json:"queue_pressure"`
}

func (PolicyDecision) Kind() PayloadKind { return KindPolicyDecision }

// RedactionApplied records that the secret scanner redacted a match at a
// given field path.
type RedactionApplied struct {
	FieldPath      string `json:"field_path"`
	MatchedPattern string `json:"matched_pattern"`
}

func (RedactionApplied) Kind() PayloadKind { return KindRedactionApplied }

// ClockSkewDetected records a source-reported timestamp inconsistency.
// The core never reads the local clock; all skew detection is derived
// from source-supplied timestamps.
type ClockSkewDetected struct {
	SourceID        string `json:"source_id"`
	ObservedDeltaNs int64  `json:"observed_delta_ns"`
}

func (ClockSkewDetected) Kind() PayloadKind { return KindClockSkew }

// Generic is the fallback for a source-specific payload shape that does
// not map to any other variant. Unknown wire kinds are rejected outright;
// Generic exists for adapters canonicalizing a recognized-but-uncovered
// source type, never for a decode-time unknown.
type Generic struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (Generic) Kind() PayloadKind { return KindGeneric }

// BlobRef is the marker sub-variant an append writer substitutes for a
// payload whose canonical encoding exceeded InlinePayloadMaxBytes.
type BlobRef struct {
	OriginalKind PayloadKind `json:"original_kind"`
}

func (BlobRef) Kind() PayloadKind { return KindBlobRef }

// MarshalPayload renders p as a flat JSON object carrying its own fields
// plus a "kind" discriminator, the same canonical encoding used on the
// wire. Exported so comparator-style code outside this package can diff
// two Payload values by their canonical bytes instead of by the
// concrete Go struct, which would miss the discriminator.
func MarshalPayload(p Payload) (json.RawMessage, error) {
	return marshalPayload(p)
}

// marshalPayload renders p as a flat JSON object carrying its own fields
// plus a "kind" discriminator. encoding/json sorts map[string]json.RawMessage
// keys lexicographically on marshal, so the result is deterministic without
// any extra bookkeeping.
func marshalPayload(p Payload) (json.RawMessage, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("types: marshal payload %s: %w", p.Kind(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("types: decompose payload %s: %w", p.Kind(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	kindJSON, err := json.Marshal(p.Kind())
	if err != nil {
		return nil, err
	}
	fields["kind"] = kindJSON
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("types: marshal payload %s: %w", p.Kind(), err)
	}
	return out, nil
}

// unmarshalPayload decodes a flat JSON object into its concrete variant
// based on its "kind" discriminator. An unrecognized kind is a decode
// error, not a silent Generic coercion: the variant set is closed and
// reading back a malformed or foreign kind is a fatal parse condition for
// the event log reader.
func unmarshalPayload(raw json.RawMessage) (Payload, error) {
	var tag struct {
		Kind PayloadKind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("types: decode payload kind: %w", err)
	}
	switch tag.Kind {
	case KindRunStart:
		var v RunStart
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindRunEnd:
		var v RunEnd
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindToolCall:
		var v ToolCall
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindToolResult:
		var v ToolResult
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindError:
		var v Error
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindPolicyDecision:
		var v PolicyDecision
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindRedactionApplied:
		var v RedactionApplied
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindClockSkew:
		var v ClockSkewDetected
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindGeneric:
		var v Generic
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindBlobRef:
		var v BlobRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("types: unrecognized payload kind %q", tag.Kind)
	}
}
