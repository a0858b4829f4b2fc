package types

import (
	"encoding/json"
	"fmt"
)

// ImportEvent is the pre-commit record an adapter produces. It never
// carries a commit index: canonical-ordering ownership belongs solely to
// the append writer (I4).
type ImportEvent struct {
	RunID       string
	EventID     string
	SourceID    string
	SourceSeq   *int64
	TimestampNs int64
	Tier        Tier
	Payload     Payload
	PayloadRef  *string
	Synthesized bool
}

// importEventWire is the flat wire shape of ImportEvent. Payload is kept
// as a raw message so MarshalJSON/UnmarshalJSON can delegate to
// marshalPayload/unmarshalPayload for the tagged-variant encoding.
type importEventWire struct {
	RunID       string          `json:"run_id"`
	EventID     string          `json:"event_id"`
	SourceID    string          `json:"source_id"`
	SourceSeq   *int64          `json:"source_seq,omitempty"`
	TimestampNs int64           `json:"timestamp_ns"`
	Tier        Tier            `json:"tier"`
	Payload     json.RawMessage `json:"payload"`
	PayloadRef  *string         `json:"payload_ref,omitempty"`
	Synthesized bool            `json:"synthesized,omitempty"`
}

// MarshalJSON never emits a commit_index field, satisfying P11: an
// ImportEvent's serialization carries no trace of writer-owned ordering.
func (e ImportEvent) MarshalJSON() ([]byte, error) {
	payloadJSON, err := marshalPayload(e.Payload)
	if err != nil {
		return nil, err
	}
	w := importEventWire{
		RunID:       e.RunID,
		EventID:     e.EventID,
		SourceID:    e.SourceID,
		SourceSeq:   e.SourceSeq,
		TimestampNs: e.TimestampNs,
		Tier:        e.Tier,
		Payload:     payloadJSON,
		PayloadRef:  e.PayloadRef,
		Synthesized: e.Synthesized,
	}
	return json.Marshal(w)
}

// UnmarshalJSON rejects a wire record carrying commit_index: readers must
// reject adapter-supplied ordering, not silently drop it.
func (e *ImportEvent) UnmarshalJSON(data []byte) error {
	var probe struct {
		CommitIndex *uint64 `json:"commit_index"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("types: decode import event envelope: %w", err)
	}
	if probe.CommitIndex != nil {
		return fmt.Errorf("types: import event carries source-supplied commit_index")
	}
	var w importEventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("types: decode import event: %w", err)
	}
	payload, err := unmarshalPayload(w.Payload)
	if err != nil {
		return err
	}
	e.RunID = w.RunID
	e.EventID = w.EventID
	e.SourceID = w.SourceID
	e.SourceSeq = w.SourceSeq
	e.TimestampNs = w.TimestampNs
	e.Tier = w.Tier
	e.Payload = payload
	e.PayloadRef = w.PayloadRef
	e.Synthesized = w.Synthesized
	return nil
}

// CommittedEvent is the durable record: an ImportEvent plus the
// append-writer-assigned, monotone commit index (I2).
type CommittedEvent struct {
	ImportEvent
	CommitIndex uint64
}

type committedEventWire struct {
	importEventWire
	CommitIndex uint64 `json:"commit_index"`
}

// MarshalJSON renders the committed record as a single flat JSON object:
// the ImportEvent fields plus commit_index, in field order, never
// dependent on map iteration.
func (c CommittedEvent) MarshalJSON() ([]byte, error) {
	payloadJSON, err := marshalPayload(c.Payload)
	if err != nil {
		return nil, err
	}
	w := committedEventWire{
		importEventWire: importEventWire{
			RunID:       c.RunID,
			EventID:     c.EventID,
			SourceID:    c.SourceID,
			SourceSeq:   c.SourceSeq,
			TimestampNs: c.TimestampNs,
			Tier:        c.Tier,
			Payload:     payloadJSON,
			PayloadRef:  c.PayloadRef,
			Synthesized: c.Synthesized,
		},
		CommitIndex: c.CommitIndex,
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a committed record. Unlike ImportEvent, a missing
// or malformed commit_index is a fatal parse error: every line in a
// committed log must carry one.
func (c *CommittedEvent) UnmarshalJSON(data []byte) error {
	var probe struct {
		CommitIndex *uint64 `json:"commit_index"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("types: decode committed event envelope: %w", err)
	}
	if probe.CommitIndex == nil {
		return fmt.Errorf("types: committed event missing commit_index")
	}
	var w committedEventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("types: decode committed event: %w", err)
	}
	payload, err := unmarshalPayload(w.Payload)
	if err != nil {
		return err
	}
	c.RunID = w.RunID
	c.EventID = w.EventID
	c.SourceID = w.SourceID
	c.SourceSeq = w.SourceSeq
	c.TimestampNs = w.TimestampNs
	c.Tier = w.Tier
	c.Payload = payload
	c.PayloadRef = w.PayloadRef
	c.Synthesized = w.Synthesized
	c.CommitIndex = w.CommitIndex
	return nil
}
