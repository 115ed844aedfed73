package scanner

import (
	"errors"
)

// sliceRowsScanner implements Rows over an in-memory slice of rows.
// It is useful for testing or small in-memory data sources.
type sliceRowsScanner struct {
	rows   [][]any
	cursor int // index of the next row, current row is cursor-1
}

// FromData creates a Rows cursor over a 2D slice. Rows may differ in length.
func FromData(rows [][]any) Rows {
	return &sliceRowsScanner{rows: rows}
}

// Driver identifies the data source as an in-memory slice.
func (s *sliceRowsScanner) Driver() string {
	return "go-slice"
}

// Err always returns nil; the slice cannot fail mid-iteration.
func (s *sliceRowsScanner) Err() error {
	return nil
}

// Next advances to the next row. Returns false when no rows are left.
func (s *sliceRowsScanner) Next() bool {
	if s.cursor >= len(s.rows) {
		return false
	}
	s.cursor++
	return true
}

// ScanRow returns the current row. It must be called after a successful Next.
func (s *sliceRowsScanner) ScanRow() ([]any, error) {
	if s.cursor == 0 {
		return nil, errors.New("go-slice: scan called without calling Next")
	}
	return s.rows[s.cursor-1], nil
}
