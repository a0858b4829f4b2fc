package types

// BlockedItem is one secret-scanner finding. Back-references to events use
// (event_id, field_path) rather than in-memory pointers, so the scanner's
// output remains portable and can be produced by a standalone run over a
// bundle.
type BlockedItem struct {
	EventID        string  `json:"event_id"`
	FieldPath      string  `json:"field_path"`
	MatchedPattern string  `json:"matched_pattern"`
	BlobRef        *string `json:"blob_ref,omitempty"`
	RedactedMatch  string  `json:"redacted_match"`
}

// ManifestEntry describes one archive member in a bundle's manifest.json,
// hashed over its pre-compression bytes.
type ManifestEntry struct {
	Path   string `json:"path"`
	Blake3 string `json:"blake3"`
	Size   uint64 `json:"size"`
}

// BundleManifest is the shape of manifest.json, constructed before
// compression: its Files order equals the sorted archive entry order.
type BundleManifest struct {
	ManifestVersion             string          `json:"manifest_version"`
	Files                       []ManifestEntry `json:"files"`
	CommitIndexRange            *[2]uint64      `json:"commit_index_range"`
	ProjectionInvariantsVersion string          `json:"projection_invariants_version"`
}
