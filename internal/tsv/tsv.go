// Package tsv reads the tab-separated bodies returned by the STRING API into
// column-keyed rows. Rows are yielded one at a time so large responses
// (pathway-scale networks run to tens of thousands of rows) are streamed
// rather than materialized twice.
package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Row maps a header column name to the raw string value of one line.
type Row map[string]string

// Reader streams rows from a TSV body. Create with NewReader, then call Next
// until it returns io.EOF.
type Reader struct {
	scanner *bufio.Scanner
	columns []string
	dropped int
}

// NewReader consumes the header line and verifies that every required column
// is present. Extra trailing columns are tolerated; a missing required column
// is an error because callers can no longer interpret the body.
func NewReader(r io.Reader, required []string) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var columns []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		columns = strings.Split(line, "\t")
		break
	}
	if columns == nil {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, fmt.Errorf("empty body, expected header with columns %v", required)
	}

	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[strings.TrimSpace(c)] = struct{}{}
	}
	for _, c := range required {
		if _, ok := have[c]; !ok {
			return nil, fmt.Errorf("header missing required column %q (got %v)", c, columns)
		}
	}

	return &Reader{scanner: scanner, columns: columns}, nil
}

// Next returns the next row, or io.EOF when the body is exhausted. A line
// whose field count differs from the header is dropped (counted, not fatal):
// one malformed row must not discard an otherwise usable response.
func (r *Reader) Next() (Row, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(r.columns) {
			r.dropped++
			continue
		}
		row := make(Row, len(fields))
		for i, col := range r.columns {
			row[strings.TrimSpace(col)] = fields[i]
		}
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return nil, io.EOF
}

// Columns returns the header columns in file order.
func (r *Reader) Columns() []string {
	return r.columns
}

// Dropped reports how many malformed rows were skipped so far. A non-zero
// count on a fresh response usually means the remote format drifted.
func (r *Reader) Dropped() int {
	return r.dropped
}
