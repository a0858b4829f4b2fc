// Package compare implements the comparator (C8): a deterministic diff
// between two canonicalized event sequences, aligned on (source_id,
// source_seq), reporting the first point of divergence.
package compare

import (
	"fmt"
	"sort"

	"github.com/justapithecus/vifei/types"
)

// Kind classifies one diff entry.
type Kind string

const (
	// KindMissingRight means the key exists on the left but not the right.
	KindMissingRight Kind = "missing_right"
	// KindMissingLeft means the key exists on the right but not the left.
	KindMissingLeft Kind = "missing_left"
	// KindPayloadMismatch means both sides have the key but the
	// canonicalized payload differs.
	KindPayloadMismatch Kind = "payload_mismatch"
)

// Divergence is one point of disagreement between the two sides.
type Divergence struct {
	Kind      Kind   `json:"kind"`
	SourceID  string `json:"source_id"`
	SourceSeq int64  `json:"source_seq"`
	Left      string `json:"left,omitempty"`
	Right     string `json:"right,omitempty"`
}

// Report is the full comparison result.
type Report struct {
	Equal           bool          `json:"equal"`
	LeftCount       int           `json:"left_count"`
	RightCount      int           `json:"right_count"`
	FirstDivergence *Divergence   `json:"first_divergence,omitempty"`
	Divergences     []*Divergence `json:"divergences"`
}

type key struct {
	sourceID  string
	sourceSeq int64
}

// Compare aligns left and right on (source_id, source_seq) and reports
// every point of divergence in key order, with the first entry singled
// out as FirstDivergence. source_seq is the ordinal an adapter itself
// assigns, so an event lacking one cannot be aligned: Compare returns an
// error for it rather than skipping it.
func Compare(left, right []types.ImportEvent) (*Report, error) {
	leftByKey, err := indexBySeq(left)
	if err != nil {
		return nil, fmt.Errorf("compare: left: %w", err)
	}
	rightByKey, err := indexBySeq(right)
	if err != nil {
		return nil, fmt.Errorf("compare: right: %w", err)
	}

	keySet := map[key]struct{}{}
	for k := range leftByKey {
		keySet[k] = struct{}{}
	}
	for k := range rightByKey {
		keySet[k] = struct{}{}
	}
	keys := make([]key, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sourceID != keys[j].sourceID {
			return keys[i].sourceID < keys[j].sourceID
		}
		return keys[i].sourceSeq < keys[j].sourceSeq
	})

	var divergences []*Divergence
	for _, k := range keys {
		lev, lok := leftByKey[k]
		rev, rok := rightByKey[k]

		switch {
		case lok && !rok:
			divergences = append(divergences, &Divergence{
				Kind: KindMissingRight, SourceID: k.sourceID, SourceSeq: k.sourceSeq,
			})
		case !lok && rok:
			divergences = append(divergences, &Divergence{
				Kind: KindMissingLeft, SourceID: k.sourceID, SourceSeq: k.sourceSeq,
			})
		default:
			equal, lj, rj, err := payloadsEqual(lev.Payload, rev.Payload)
			if err != nil {
				return nil, fmt.Errorf("compare: encode payload at %s/%d: %w", k.sourceID, k.sourceSeq, err)
			}
			if !equal {
				divergences = append(divergences, &Divergence{
					Kind: KindPayloadMismatch, SourceID: k.sourceID, SourceSeq: k.sourceSeq,
					Left: lj, Right: rj,
				})
			}
		}
	}

	report := &Report{
		Equal:       len(divergences) == 0,
		LeftCount:   len(left),
		RightCount:  len(right),
		Divergences: divergences,
	}
	if len(divergences) > 0 {
		report.FirstDivergence = divergences[0]
	}
	return report, nil
}

func indexBySeq(events []types.ImportEvent) (map[key]types.ImportEvent, error) {
	out := make(map[key]types.ImportEvent, len(events))
	for _, ev := range events {
		if ev.SourceSeq == nil {
			return nil, fmt.Errorf("event %s has no source_seq, cannot align", ev.EventID)
		}
		out[key{sourceID: ev.SourceID, sourceSeq: *ev.SourceSeq}] = ev
	}
	return out, nil
}

func payloadsEqual(a, b types.Payload) (bool, string, string, error) {
	aj, err := types.MarshalPayload(a)
	if err != nil {
		return false, "", "", err
	}
	bj, err := types.MarshalPayload(b)
	if err != nil {
		return false, "", "", err
	}
	return string(aj) == string(bj), string(aj), string(bj), nil
}
