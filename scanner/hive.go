package scanner

import (
	"context"

	"github.com/beltran/gohive"
)

// HiveCursor is the part of *gohive.Cursor the Hive source reads from.
type HiveCursor interface {
	HasMore(ctx context.Context) bool
	FetchOne(ctx context.Context, dests ...any)
	Description() [][]string
	Error() error
}

var _ HiveCursor = (*gohive.Cursor)(nil)

type hiveRowsScanner struct {
	cursor  HiveCursor
	ctx     context.Context
	width   int
	row     []any
	rowPtrs []any
}

// FromHiveCursor creates a Rows cursor over an executed Hive query. The row
// width is taken from the cursor description on the first scan.
func FromHiveCursor(ctx context.Context, cursor HiveCursor) Rows {
	return &hiveRowsScanner{cursor: cursor, ctx: ctx, width: -1}
}

func (h *hiveRowsScanner) Next() bool {
	return h.cursor.HasMore(h.ctx)
}

func (h *hiveRowsScanner) ScanRow() ([]any, error) {
	if h.width < 0 {
		h.width = len(h.cursor.Description())
		h.row = make([]any, h.width)
		h.rowPtrs = make([]any, h.width)
	}
	for i := range h.width {
		h.row[i] = nil
		h.rowPtrs[i] = &h.row[i]
	}
	h.cursor.FetchOne(h.ctx, h.rowPtrs...)
	if err := h.cursor.Error(); err != nil {
		return nil, err
	}
	return h.row, nil
}

func (h *hiveRowsScanner) Driver() string {
	return "gohive"
}

func (h *hiveRowsScanner) Err() error {
	return h.cursor.Error()
}
