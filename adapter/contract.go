// Package adapter provides the shared contract every provider parser
// builds on: deterministic identity normalization, schema-version
// validation, commit-index rejection, and the canonical contract-error
// payload. Canonical ordering ownership never leaves the append writer —
// adapters only ever produce types.ImportEvent values.
package adapter

import (
	"fmt"
	"strings"

	"github.com/justapithecus/vifei/types"
)

// CassetteSchemaVersion is the pinned schema version for the internal
// cassette format.
const CassetteSchemaVersion = "agent-cassette-v1"

// VendorASchemaVersion is the pinned schema version for the Vendor-A
// Responses transcript format.
const VendorASchemaVersion = "vendor-a-responses-v1"

// VendorBSchemaVersion is the pinned schema version for the Vendor-B
// Messages transcript format.
const VendorBSchemaVersion = "vendor-b-messages-v1"

// VendorCSchemaVersion is the pinned schema version for the Vendor-C
// Translate transcript format.
const VendorCSchemaVersion = "vendor-c-translate-v1"

// NormalizeIdentity returns (value, synthesized). If raw is non-nil and
// non-blank after trimming, it is used verbatim with synthesized=false;
// otherwise fallback is used with synthesized=true.
func NormalizeIdentity(raw *string, fallback string) (string, bool) {
	if raw != nil && strings.TrimSpace(*raw) != "" {
		return *raw, false
	}
	return fallback, true
}

// ValidateSchemaVersion checks an optional source-supplied schema version
// against the adapter's pinned expectation. A missing version is
// accepted (adapters tolerate legacy fixtures that predate versioning);
// a mismatched version is rejected.
func ValidateSchemaVersion(sourceValue *string, expected string) error {
	if sourceValue == nil {
		return nil
	}
	if *sourceValue == expected {
		return nil
	}
	return fmt.Errorf("schema_version mismatch: expected %s, got %s", expected, *sourceValue)
}

// RejectSourceCommitIndex rejects any source-supplied commit index.
// Canonical ordering is append-writer-owned (I4); a source attempting to
// assign its own commit_index is a contract violation.
func RejectSourceCommitIndex(commitIndex *uint64) error {
	if commitIndex == nil {
		return nil
	}
	return fmt.Errorf("source provided forbidden commit_index=%d; canonical commit_index is append-writer-assigned", *commitIndex)
}

// ContractErrorPayload builds the Tier-A Error payload emitted in place
// of a record that failed any step of the per-record contract. Contract
// errors are recoverable at the adapter boundary (per spec.md's error
// taxonomy): the pipeline continues with the next record.
func ContractErrorPayload(message string) types.Error {
	severity := "error"
	return types.Error{
		Kind:     "contract",
		Message:  message,
		Severity: &severity,
	}
}

// NextImportEvent is the common envelope-building step every adapter
// performs once a record has cleared the per-record contract: assign
// source_seq, attach tier/payload, and mark synthesized identity.
func NextImportEvent(runID, eventID, sourceID string, sourceSeq int64, timestampNs int64, tier types.Tier, payload types.Payload, synthesized bool) types.ImportEvent {
	seq := sourceSeq
	return types.ImportEvent{
		RunID:       runID,
		EventID:     eventID,
		SourceID:    sourceID,
		SourceSeq:   &seq,
		TimestampNs: timestampNs,
		Tier:        tier,
		Payload:     payload,
		Synthesized: synthesized,
	}
}
