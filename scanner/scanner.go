// Package scanner provides cursor-style row sources and adapts them to
// normalize.Enumerable so they can feed the encoder as a Document.
package scanner

import (
	"fmt"

	"github.com/go-data-exporter/csvexport/normalize"
)

// Rows is a forward-only cursor over rows.
type Rows interface {
	Next() bool
	ScanRow() ([]any, error)
	Driver() string
	Err() error
}

// Enumerate drains rows into a Document when Elements is called. Each scanned
// row is copied since database cursors reuse their scan buffers.
func Enumerate(rows Rows) normalize.Enumerable {
	return normalize.EnumerableFunc(func() ([]any, error) {
		var doc []any
		for rows.Next() {
			values, err := rows.ScanRow()
			if err != nil {
				return nil, fmt.Errorf("%s: scan row %d: %w", rows.Driver(), len(doc)+1, err)
			}
			row := make([]any, len(values))
			copy(row, values)
			doc = append(doc, row)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", rows.Driver(), err)
		}
		return doc, nil
	})
}
