package scanner

import "database/sql"

// sqlRowsScanner wraps a *sql.Rows and implements Rows.
type sqlRowsScanner struct {
	*sql.Rows

	driver         string
	columns        int
	currentRow     []any
	currentRowPtrs []any
}

// FromSQL creates a Rows cursor around a *sql.Rows result set. The driver
// name only labels errors.
func FromSQL(rows *sql.Rows, driver string) Rows {
	return &sqlRowsScanner{Rows: rows, driver: driver, columns: -1}
}

// ScanRow scans the current row into a reused buffer. Callers keeping the
// values past the next call must copy them, as Enumerate does.
// []byte values are turned into strings for the same reason.
func (s *sqlRowsScanner) ScanRow() ([]any, error) {
	if s.columns < 0 {
		cols, err := s.Rows.Columns()
		if err != nil {
			return nil, err
		}
		s.columns = len(cols)
		s.currentRow = make([]any, s.columns)
		s.currentRowPtrs = make([]any, s.columns)
	}
	for i := range s.columns {
		s.currentRow[i] = nil
		s.currentRowPtrs[i] = &s.currentRow[i]
	}
	if err := s.Rows.Scan(s.currentRowPtrs...); err != nil {
		return nil, err
	}
	for i, v := range s.currentRow {
		if b, ok := v.([]byte); ok {
			s.currentRow[i] = string(b)
		}
	}
	return s.currentRow, nil
}

// Driver returns the name of the SQL driver used.
func (s *sqlRowsScanner) Driver() string {
	return s.driver
}
