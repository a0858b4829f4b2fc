package blob

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"
)

// InlinePayloadMaxBytes is the threshold above which payload bytes should
// be stored in the blob store rather than inline in the event log.
const InlinePayloadMaxBytes = 16384

// Backend is the content-addressing contract a blob store implementation
// must satisfy. *Store (filesystem) and s3blob.Store (S3-backed) both
// implement it, so the append writer can be pointed at either without
// caring which is behind it.
type Backend interface {
	Write(data []byte) (ref string, err error)
	Read(ref string) (data []byte, ok bool, err error)
	Has(ref string) bool
}

var _ Backend = (*Store)(nil)

// Store is a content-addressed filesystem blob store. The address of a
// blob is the lowercase hex BLAKE3 digest of its exact bytes. Files live
// at <root>/<first-2-hex-chars>/<64-hex-chars>.
type Store struct {
	root string
}

// Open returns a Store rooted at root, creating the directory if it does
// not already exist.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrapWriteError(err, "open", root)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// ComputeRef returns the BLAKE3 hex digest of data without storing it.
func ComputeRef(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShouldBlob reports whether data exceeds InlinePayloadMaxBytes and
// should therefore be stored as a blob rather than inline.
func ShouldBlob(data []byte) bool {
	return len(data) > InlinePayloadMaxBytes
}

// Write stores data and returns its payload_ref (the BLAKE3 hex digest).
// If a blob with this digest already exists, the write is a no-op
// (content-addressed deduplication, P6). Otherwise data is written to a
// sibling temp path, fsynced, then renamed into place — rename is atomic
// on the same filesystem, so a crash mid-write never leaves a partial
// blob visible under its final name.
func (s *Store) Write(data []byte) (string, error) {
	ref := ComputeRef(data)
	path := s.blobPath(ref)

	if _, err := os.Stat(path); err == nil {
		return ref, nil
	} else if !os.IsNotExist(err) {
		return "", wrapWriteError(err, "stat", ref)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", wrapWriteError(err, "mkdir", ref)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", wrapWriteError(err, "create", ref)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", wrapWriteError(err, "write", ref)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", wrapWriteError(err, "fsync", ref)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", wrapWriteError(err, "close", ref)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", wrapWriteError(err, "rename", ref)
	}
	return ref, nil
}

// Read returns the bytes stored under ref, or (nil, false, nil) if no
// blob exists for it. ref is validated as exactly 64 lowercase hex
// characters before any path is constructed or the filesystem is
// touched (P7): an invalid ref is rejected outright rather than risking
// traversal such as "../etc/passwd".
func (s *Store) Read(ref string) ([]byte, bool, error) {
	if !ValidRef(ref) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	path := s.blobPath(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, wrapWriteError(err, "read", ref)
	}
	return data, true, nil
}

// Has reports whether a blob exists for ref. Like Read, it validates ref
// before ever touching the filesystem; an invalid ref returns false
// without a stat call.
func (s *Store) Has(ref string) bool {
	if !ValidRef(ref) {
		return false
	}
	_, err := os.Stat(s.blobPath(ref))
	return err == nil
}

// ValidRef reports whether ref is exactly 64 lowercase hex characters —
// the shape of a BLAKE3 digest as used for payload_ref. Callers must
// check this before constructing any filesystem or object-store path
// from an externally-supplied ref (P7).
func ValidRef(ref string) bool {
	if len(ref) != 64 {
		return false
	}
	for _, c := range ref {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// blobPath returns the shard path for a (validated) ref.
func (s *Store) blobPath(ref string) string {
	return filepath.Join(s.root, ref[:2], ref)
}
