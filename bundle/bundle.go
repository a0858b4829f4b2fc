// Package bundle builds the share-safe export archive (C7): a
// byte-reproducible .tar.zst over an event log and its referenced blobs,
// gated by a secret scan (C6) that refuses export on any hit.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/secretscan"
	"github.com/justapithecus/vifei/types"
)

var unixEpoch = time.Unix(0, 0).UTC()

// RefusedError is returned when the secret scanner finds at least one
// match; the bundle is never written. Callers map this to exit code 3.
type RefusedError struct {
	Blocked []types.BlockedItem
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("bundle: export refused: %d blocked item(s)", len(e.Blocked))
}

// Result reports what was written.
type Result struct {
	BundlePath string
	BundleHash string
	EventCount int
	BlobCount  int
}

type entry struct {
	path string
	data []byte
}

// Build discovers the content referenced by events (every distinct
// payload_ref), scans it for secrets, and — only if the scan is clean —
// writes a deterministic .tar.zst to outputPath. The eventlog bytes
// passed in are the exact bytes to embed as eventlog.jsonl: callers read
// the log file once and pass its raw contents through unmodified, so the
// embedded copy is byte-identical to what was appended.
func Build(eventlogBytes []byte, events []types.CommittedEvent, blobs blob.Backend, outputPath string) (*Result, error) {
	blocked, err := secretscan.Scan(events, blobs)
	if err != nil {
		return nil, fmt.Errorf("bundle: scan: %w", err)
	}
	if len(blocked) > 0 {
		return nil, &RefusedError{Blocked: blocked}
	}

	entries := []entry{{path: "eventlog.jsonl", data: eventlogBytes}}

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

	blobCount := 0
	for _, ref := range refs {
		data, ok, err := blobs.Read(ref)
		if err != nil {
			return nil, fmt.Errorf("bundle: read blob %s: %w", ref, err)
		}
		if !ok {
			continue
		}
		entries = append(entries, entry{path: "blobs/" + ref, data: data})
		blobCount++
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	manifest := buildManifest(entries, events)
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode manifest: %w", err)
	}
	entries = append(entries, entry{path: "manifest.json", data: manifestJSON})
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	compressed, err := compressTar(entries)
	if err != nil {
		return nil, err
	}

	sum := blake3.Sum256(compressed)
	bundleHash := hex.EncodeToString(sum[:])

	if err := os.WriteFile(outputPath, compressed, 0o644); err != nil {
		return nil, fmt.Errorf("bundle: write %s: %w", outputPath, err)
	}

	return &Result{
		BundlePath: outputPath,
		BundleHash: bundleHash,
		EventCount: len(events),
		BlobCount:  blobCount,
	}, nil
}

func buildManifest(entries []entry, events []types.CommittedEvent) types.BundleManifest {
	files := make([]types.ManifestEntry, len(entries))
	for i, e := range entries {
		sum := blake3.Sum256(e.data)
		files[i] = types.ManifestEntry{
			Path:   e.path,
			Blake3: hex.EncodeToString(sum[:]),
			Size:   uint64(len(e.data)),
		}
	}

	var commitRange *[2]uint64
	for _, ev := range events {
		if commitRange == nil {
			commitRange = &[2]uint64{ev.CommitIndex, ev.CommitIndex}
			continue
		}
		if ev.CommitIndex < commitRange[0] {
			commitRange[0] = ev.CommitIndex
		}
		if ev.CommitIndex > commitRange[1] {
			commitRange[1] = ev.CommitIndex
		}
	}

	return types.BundleManifest{
		ManifestVersion:             types.ManifestVersion,
		Files:                       files,
		CommitIndexRange:            commitRange,
		ProjectionInvariantsVersion: types.ProjectionInvariantsVersion,
	}
}

// compressTar writes entries into a USTAR tar stream wrapped in a
// pinned-level-3 zstd frame, with every entry's metadata normalized so
// the resulting bytes depend only on entry content and order.
func compressTar(entries []entry) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("bundle: zstd init: %w", err)
	}
	// SpeedDefault maps to zstd level 3 in klauspost/compress, matching
	// the pinned compression level.
	tw := tar.NewWriter(zw)

	for _, e := range entries {
		if err := appendTarEntry(tw, e.path, e.data); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("bundle: tar close: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("bundle: zstd close: %w", err)
	}

	return buf.Bytes(), nil
}

func appendTarEntry(tw *tar.Writer, path string, data []byte) error {
	hdr := &tar.Header{
		Name:     path,
		Size:     int64(len(data)),
		Mode:     0o644,
		Uid:      0,
		Gid:      0,
		Uname:    "",
		Gname:    "",
		ModTime:  unixEpoch,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("bundle: tar header for %s: %w", path, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("bundle: tar write for %s: %w", path, err)
	}
	return nil
}
