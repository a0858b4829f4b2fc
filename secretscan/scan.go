package secretscan

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/types"
)

// ScanEvent scans one committed event's payload (serialized to JSON) for
// secret patterns. Back-references use (event_id, field_path) rather
// than in-memory pointers, so findings remain portable.
func ScanEvent(ev types.CommittedEvent) ([]types.BlockedItem, error) {
	payloadJSON, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("secretscan: encode payload for event %s: %w", ev.EventID, err)
	}
	return scanText(ev.EventID, "payload", string(payloadJSON)), nil
}

// ScanBlob scans raw blob bytes for secret patterns.
func ScanBlob(ref string, data []byte) []types.BlockedItem {
	return scanBytes(ref, "content", data)
}

func scanText(eventID, fieldPath, text string) []types.BlockedItem {
	var items []types.BlockedItem
	for _, p := range patterns {
		for _, match := range p.re.FindAllString(text, -1) {
			items = append(items, types.BlockedItem{
				EventID:        eventID,
				FieldPath:      fieldPath,
				MatchedPattern: p.name,
				RedactedMatch:  redact(match),
			})
		}
	}
	return items
}

func scanBytes(blobRef, fieldPath string, data []byte) []types.BlockedItem {
	var items []types.BlockedItem
	ref := blobRef
	text := string(data)
	for _, p := range patterns {
		for _, match := range p.re.FindAllString(text, -1) {
			items = append(items, types.BlockedItem{
				FieldPath:      fieldPath,
				MatchedPattern: p.name,
				BlobRef:        &ref,
				RedactedMatch:  redact(match),
			})
		}
	}
	return items
}

// Scan performs the full deterministic sweep: every event in commit
// order, then every referenced blob in lexicographic ref order. A
// caller passing events already sorted by commit_index (as Read returns
// them) gets a reproducible scan order by construction.
func Scan(events []types.CommittedEvent, blobs blob.Backend) ([]types.BlockedItem, error) {
	var items []types.BlockedItem

	for _, ev := range events {
		found, err := ScanEvent(ev)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}

	refSet := map[string]struct{}{}
	for _, ev := range events {
		if ev.PayloadRef != nil {
			refSet[*ev.PayloadRef] = struct{}{}
		}
	}
	refs := make([]string, 0, len(refSet))
	for ref := range refSet {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		data, ok, err := blobs.Read(ref)
		if err != nil {
			return nil, fmt.Errorf("secretscan: read blob %s: %w", ref, err)
		}
		if !ok {
			continue
		}
		items = append(items, ScanBlob(ref, data)...)
	}

	return items, nil
}
