// Package secretscan implements the byte-level secret scanner (C6): a
// deterministic, pattern-based scan over event payloads and blob
// contents that produces BlockedItems and refuses export on any hit.
package secretscan

import "regexp"

// pattern pairs a name with the regular expression that detects it.
// Declarative, like the teacher's droppable-type classification table:
// a flat list walked in order, not a dynamically-registered plugin set.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns covers well-known credential shapes. Order does not affect
// correctness (every pattern is tried against every candidate string)
// but is kept stable so scan output is reproducible across runs.
var patterns = []pattern{
	{"private-key-hex40", regexp.MustCompile(`\b[0-9a-fA-F]{40}\b`)},
	{"aws-access-key-id", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"generic-api-key", regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token)\b["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{20,}`)},
	{"pem-private-key-block", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
}

// redactionMarker replaces the middle of a match. It has a fixed length,
// so a redacted string is 14 bytes for a match of up to 8 bytes and 22
// bytes (4-byte prefix, marker, 4-byte suffix) for any longer match; the
// original length is not carried into the report.
const redactionMarker = "***REDACTED***"

// redact replaces the interior of match with redactionMarker, keeping a
// short prefix/suffix so a reviewer can still recognize which credential
// shape triggered without recovering the secret itself.
func redact(match string) string {
	if len(match) <= 8 {
		return redactionMarker
	}
	prefix := match[:4]
	suffix := match[len(match)-4:]
	return prefix + redactionMarker + suffix
}
