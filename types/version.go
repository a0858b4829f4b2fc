// Package types defines the closed data model shared by every component of
// the pipeline: the payload variant set, tiers, ladder levels, the
// pre-commit and committed event records, reducer state, and the
// view-model shape projected from it.
package types

// InlinePayloadMaxBytes is the threshold above which a payload's canonical
// encoding is extracted to the blob store and replaced with a payload_ref.
const InlinePayloadMaxBytes = 16384

// AdapterContractVersion identifies the shared per-record adapter
// contract and is reported by `vifei version`. Adapters do not validate
// against it: each checks a source schema_version against its own pinned
// version, and a record without one is accepted.
const AdapterContractVersion = "adapter-contract-v1"

// ProjectionInvariantsVersion identifies the shape and semantics of
// ViewModel. Bumping it is a compatibility break.
const ProjectionInvariantsVersion = "projection-invariants-v0.1"

// ManifestVersion identifies the shape of a bundle's manifest.json.
const ManifestVersion = "manifest-v0.1"

// Version is the canonical project version, shared in lockstep by the
// library and the CLI and reported by `vifei version`. The robot CLI
// contract and the wire formats carry their own pinned version strings.
const Version = "0.1.0"
