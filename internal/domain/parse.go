package domain

import (
	"fmt"
	"strings"
)

const fieldDelimiter = ","

// Parse splits a contributions payload into a Grid of at most width cells per
// row. When leadingTotal is set the first line is a running total and is
// dropped. The empty segment left by a trailing newline is dropped, as is a
// single trailing delimiter on each line.
//
// Parse fails with ErrParse when no data line remains or when none of the
// remaining lines carries a field delimiter, which is what a status string or
// an error page looks like.
func Parse(raw string, width int, leadingTotal bool) (Grid, error) {
	if width <= 0 {
		return Grid{}, fmt.Errorf("%w: width must be positive, got %d", ErrParse, width)
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if n := len(lines); strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}
	if leadingTotal && len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return Grid{}, fmt.Errorf("%w: no data lines", ErrParse)
	}

	grid := Grid{Width: width, Rows: make([]Row, 0, len(lines))}
	delimited := false
	for _, line := range lines {
		if strings.Contains(line, fieldDelimiter) {
			delimited = true
		}
		grid.Rows = append(grid.Rows, parseRow(line, width))
	}
	if !delimited {
		return Grid{}, fmt.Errorf("%w: no %q-delimited fields in %d line(s)", ErrParse, fieldDelimiter, len(lines))
	}
	return grid, nil
}

// parseRow keeps the last width fields of a line, trimmed.
func parseRow(line string, width int) Row {
	line = strings.TrimSuffix(strings.TrimSpace(line), fieldDelimiter)
	if line == "" {
		return Row{}
	}

	fields := strings.Split(line, fieldDelimiter)
	if len(fields) > width {
		fields = fields[len(fields)-width:]
	}

	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = strings.TrimSpace(f)
	}
	return row
}
