package blob

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestWriteAndReadBlob(t *testing.T) {
	s := openTestStore(t)
	data := []byte("hello blob world")

	ref, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(ref) != 64 {
		t.Fatalf("ref length = %d, want 64", len(ref))
	}
	if strings.ToLower(ref) != ref {
		t.Fatalf("ref is not lowercase: %s", ref)
	}

	got, ok, err := s.Read(ref)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !ok {
		t.Fatalf("Read reported missing blob")
	}
	if string(got) != string(data) {
		t.Fatalf("Read returned %q, want %q", got, data)
	}
}

func TestDeduplication(t *testing.T) {
	s := openTestStore(t)
	data := []byte("duplicate payload")

	ref1, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write #1: %v", err)
	}
	ref2, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write #2: %v", err)
	}
	if ref1 != ref2 {
		t.Fatalf("same payload produced different refs: %s vs %s", ref1, ref2)
	}
	if !s.Has(ref1) {
		t.Fatalf("Has reported false for a written ref")
	}
}

func TestPayloadRefMatchesComputeRef(t *testing.T) {
	s := openTestStore(t)
	data := []byte("verify hash independently")

	expected := ComputeRef(data)
	actual, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if actual != expected {
		t.Fatalf("Write ref = %s, ComputeRef = %s", actual, expected)
	}
}

func TestShouldBlobThreshold(t *testing.T) {
	atThreshold := make([]byte, InlinePayloadMaxBytes)
	aboveThreshold := make([]byte, InlinePayloadMaxBytes+1)

	if ShouldBlob(atThreshold) {
		t.Errorf("data at threshold should be inline, not blobbed")
	}
	if !ShouldBlob(aboveThreshold) {
		t.Errorf("data above threshold should be blobbed")
	}
}

func TestReadNonexistentBlob(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Read(strings.Repeat("0", 64))
	if err != nil {
		t.Fatalf("Read of missing blob returned error: %v", err)
	}
	if ok {
		t.Fatalf("Read reported a blob present that was never written")
	}
}

func TestLargeBlob(t *testing.T) {
	s := openTestStore(t)
	data := make([]byte, InlinePayloadMaxBytes+1)
	for i := range data {
		data[i] = 'x'
	}

	ref, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok, err := s.Read(ref)
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if string(got) != string(data) {
		t.Fatalf("round-tripped bytes did not match")
	}
}

func TestBlobPathUsesPrefixDirectory(t *testing.T) {
	s := openTestStore(t)
	data := []byte("prefix test")

	ref, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := s.blobPath(ref)
	if !strings.Contains(path, ref[:2]) {
		t.Fatalf("blob path %s does not contain shard prefix %s", path, ref[:2])
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("blob path does not exist on disk: %v", err)
	}
}

func TestInvalidPayloadRefRejected(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Read("../etc/passwd")
	if !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("Read(\"../etc/passwd\") error = %v, want ErrInvalidRef", err)
	}
	if s.Has("../etc/passwd") {
		t.Fatalf("Has should reject path-traversal-shaped refs without touching the filesystem")
	}
}

func TestUppercasePayloadRefRejected(t *testing.T) {
	s := openTestStore(t)
	data := []byte("case-check")

	ref, err := s.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	upper := strings.ToUpper(ref)

	_, _, err = s.Read(upper)
	if !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("Read(uppercase ref) error = %v, want ErrInvalidRef", err)
	}
	if s.Has(upper) {
		t.Fatalf("Has should reject uppercase refs")
	}
}
