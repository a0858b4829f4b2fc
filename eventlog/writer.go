// Package eventlog implements the append writer and reader for the
// single-file, newline-delimited JSON committed event log (C3).
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/types"
)

// Writer appends CommittedEvents to a single log file, assigning a
// monotone commit_index starting at 0. A Writer holds exclusive
// ownership of its file for its lifetime; there is no concurrent-writer
// support by design (§5).
type Writer struct {
	mu          sync.Mutex
	file        *os.File
	blobs       blob.Backend
	nextCommit  uint64
	closed      bool
}

// Open creates or truncates the file at path for append, ensuring parent
// directories exist, and returns a Writer backed by blobs for oversize
// payload extraction.
func Open(path string, blobs blob.Backend) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("eventlog: create parent dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	return &Writer{file: f, blobs: blobs}, nil
}

// Append commits an ImportEvent: if its canonically-encoded payload
// exceeds blob.InlinePayloadMaxBytes, the payload is extracted to the
// blob store and replaced with a payload_ref plus a BlobRef marker; the
// writer then assigns the next commit_index, serializes exactly one
// line, writes it, and fsyncs (the Open Question on fsync cadence is
// resolved as per-record — see SPEC_FULL.md §4(a)). Append fails loudly
// on any I/O error; the caller is expected to enter the L5 safe-failure
// posture on a write/fsync failure (FM-BLOB-WRITE-FAIL semantics extend
// to the log itself).
func (w *Writer) Append(ev types.ImportEvent) (types.CommittedEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return types.CommittedEvent{}, fmt.Errorf("eventlog: append on closed writer")
	}

	ev, err := w.extractOversizePayload(ev)
	if err != nil {
		return types.CommittedEvent{}, err
	}

	committed := types.CommittedEvent{ImportEvent: ev, CommitIndex: w.nextCommit}

	line, err := json.Marshal(committed)
	if err != nil {
		return types.CommittedEvent{}, fmt.Errorf("eventlog: encode commit_index=%d: %w", committed.CommitIndex, err)
	}
	line = append(line, '\n')

	if _, err := w.file.Write(line); err != nil {
		return types.CommittedEvent{}, fmt.Errorf("eventlog: write commit_index=%d: %w", committed.CommitIndex, err)
	}
	if err := w.file.Sync(); err != nil {
		return types.CommittedEvent{}, fmt.Errorf("eventlog: fsync commit_index=%d: %w", committed.CommitIndex, err)
	}

	w.nextCommit++
	return committed, nil
}

// extractOversizePayload replaces ev.Payload with a BlobRef marker and
// sets PayloadRef if its canonical encoding exceeds the inline threshold.
func (w *Writer) extractOversizePayload(ev types.ImportEvent) (types.ImportEvent, error) {
	encoded, err := types.MarshalPayload(ev.Payload)
	if err != nil {
		return ev, fmt.Errorf("eventlog: encode payload for size check: %w", err)
	}
	if !blob.ShouldBlob(encoded) {
		return ev, nil
	}
	ref, err := w.blobs.Write(encoded)
	if err != nil {
		return ev, fmt.Errorf("eventlog: FM-BLOB-WRITE-FAIL: %w", err)
	}
	originalKind := ev.Payload.Kind()
	ev.Payload = types.BlobRef{OriginalKind: originalKind}
	ev.PayloadRef = &ref
	return ev, nil
}

// Close flushes and fsyncs the underlying file. Further Append calls
// fail after Close.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("eventlog: final fsync: %w", err)
	}
	return w.file.Close()
}

// maxLineBytes bounds a single committed-event line. Large payloads are
// extracted to the blob store before being written, so a log line should
// never approach this; it exists only to bound memory against a
// corrupted file.
const maxLineBytes = 64 * 1024 * 1024

// Read consumes the committed event log at path in order. Any malformed
// line is a fatal parse error — there are no silent skips (per §4.3 and
// the Log error taxonomy in §7).
func Read(path string) ([]types.CommittedEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []types.CommittedEvent
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev types.CommittedEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("eventlog: malformed record at line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: read %s: %w", path, err)
	}
	return events, nil
}
