package adapter

import (
	"bufio"
	"io"
)

// maxRecordBytes bounds a single newline-delimited record. Generous
// enough for any realistic transcript line while still bounding memory
// if fed a corrupt, unbounded stream.
const maxRecordBytes = 16 * 1024 * 1024

// ReadLines splits r into newline-delimited records, skipping blank
// lines. It does not parse or validate content — only the adapters know
// their own record shape.
func ReadLines(r io.Reader) ([][]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	var lines [][]byte
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, cp)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
