// Package blob implements the content-addressed filesystem blob store
// (C1): BLAKE3-addressed writes with dedup, strict ref validation before
// any path is touched, and the write-temp-then-atomic-rename durability
// idiom.
package blob

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for blob store failure classification. Use
// errors.Is(err, ErrXxx) for typed assertions rather than string
// matching in runtime paths.
var (
	// ErrInvalidRef indicates a payload_ref that is not exactly 64
	// lowercase hex characters. Returned before any filesystem path is
	// constructed or opened (P7).
	ErrInvalidRef = errors.New("invalid payload_ref")

	// ErrPermissionDenied indicates a permission/access failure (EACCES).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDiskFull indicates storage is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")

	// ErrTimeout indicates a write or fsync exceeded its budget.
	ErrTimeout = errors.New("operation timed out")
)

// WriteError wraps an underlying filesystem error with store
// classification. It preserves the original error in the chain for
// errors.Is/errors.As.
type WriteError struct {
	Kind error
	Op   string
	Ref  string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("blob %s %s: %v: %v", e.Op, e.Ref, e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return errors.Is(e.Kind, target) }

// wrapWriteError classifies and wraps a write-path error. Returns nil if
// err is nil. Classification never masks the error: per I5, failures
// propagate loudly rather than falling back silently.
func wrapWriteError(err error, op, ref string) error {
	if err == nil {
		return nil
	}
	return &WriteError{Kind: classifyError(err), Op: op, Ref: ref, Err: err}
}

// classifierTable pairs message substrings with a sentinel error. Entries
// are checked in order; the first match wins.
var classifierTable = []struct {
	patterns []string
	kind     error
}{
	{[]string{"permission denied", "EACCES"}, ErrPermissionDenied},
	{[]string{"no space left", "disk full", "ENOSPC", "quota exceeded"}, ErrDiskFull},
	{[]string{"timeout", "timed out", "deadline exceeded"}, ErrTimeout},
}

// classifyError determines the sentinel error for err. Typed timeout
// errors are checked before the table is walked.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}
	lower := strings.ToLower(err.Error())
	for _, entry := range classifierTable {
		for _, sub := range entry.patterns {
			if strings.Contains(lower, strings.ToLower(sub)) {
				return entry.kind
			}
		}
	}
	return errors.New("blob store error")
}
