package scanner

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-data-exporter/csvexport/normalize"
)

func TestFromData(t *testing.T) {
	data := [][]any{
		{1, "first"},
		{2, "second", "extra"},
	}
	s := FromData(data)

	_, err := s.ScanRow()
	require.Error(t, err, "scan before Next")

	var got [][]any
	for s.Next() {
		row, err := s.ScanRow()
		require.NoError(t, err)
		got = append(got, row)
	}
	require.NoError(t, s.Err())
	assert.Equal(t, data, got)
	assert.False(t, s.Next())
}

func TestEnumerate(t *testing.T) {
	doc, err := normalize.ToSlice(Enumerate(FromData([][]any{{"a"}, {"b", 2}})))
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"a"}, []any{"b", 2}}, doc)
}

func TestEnumerateEmpty(t *testing.T) {
	doc, err := Enumerate(FromData(nil)).Elements()
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFromJSONArray(t *testing.T) {
	s := FromJSONArray(strings.NewReader(`[["name","age"],["Jan",30],["big",12345678901234567890]]`))
	doc, err := Enumerate(s).Elements()
	require.NoError(t, err)
	require.Len(t, doc, 3)
	assert.Equal(t, []any{"name", "age"}, doc[0])

	row := doc[2].([]any)
	assert.Equal(t, "12345678901234567890", row[1].(interface{ String() string }).String())
}

func TestFromJSONArrayErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		is   error
	}{
		{name: "notArray", in: `{"a":1}`},
		{name: "scalarRow", in: `[["a"], 42]`, is: normalize.ErrInvalidInput},
		{name: "truncated", in: `[["a"], ["b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Enumerate(FromJSONArray(strings.NewReader(tt.in))).Elements()
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestFromJSONLines(t *testing.T) {
	in := "[\"a\",1]\n\n  [\"b\",null]\n"
	doc, err := Enumerate(FromJSONLines(strings.NewReader(in))).Elements()
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, "a", doc[0].([]any)[0])
	assert.Equal(t, []any{"b", nil}, doc[1])
}

func TestFromJSONLinesBadLine(t *testing.T) {
	_, err := Enumerate(FromJSONLines(strings.NewReader("[\"a\"]\n[oops\n"))).Elements()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFromSQLCopiesRows(t *testing.T) {
	db := sql.OpenDB(fakeConnector{rows: [][]driver.Value{
		{"Jan", int64(30)},
		{[]byte("Evan"), nil},
	}})
	defer db.Close()

	rows, err := db.Query("SELECT name, age FROM people")
	require.NoError(t, err)
	defer rows.Close()

	doc, err := Enumerate(FromSQL(rows, "fake")).Elements()
	require.NoError(t, err)
	assert.Equal(t, []any{
		[]any{"Jan", int64(30)},
		[]any{"Evan", nil},
	}, doc)
}

func TestFromSQLScanError(t *testing.T) {
	db := sql.OpenDB(fakeConnector{rows: [][]driver.Value{{"a"}}, nextErr: errors.New("connection reset")})
	defer db.Close()

	rows, err := db.Query("SELECT name, age FROM people")
	require.NoError(t, err)
	defer rows.Close()

	_, err = Enumerate(FromSQL(rows, "fake")).Elements()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

type fakeConnector struct {
	rows    [][]driver.Value
	nextErr error
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return fakeConn(c), nil }
func (c fakeConnector) Driver() driver.Driver                        { return fakeDriver(c) }

type fakeDriver fakeConnector

func (d fakeDriver) Open(string) (driver.Conn, error) { return fakeConn(d), nil }

type fakeConn fakeConnector

func (c fakeConn) Prepare(string) (driver.Stmt, error) { return fakeStmt(c), nil }
func (c fakeConn) Close() error                        { return nil }
func (c fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

type fakeStmt fakeConn

func (s fakeStmt) Close() error                               { return nil }
func (s fakeStmt) NumInput() int                              { return -1 }
func (s fakeStmt) Exec([]driver.Value) (driver.Result, error) { return nil, errors.New("not supported") }
func (s fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	return &fakeRows{rows: s.rows, nextErr: s.nextErr}, nil
}

type fakeRows struct {
	rows    [][]driver.Value
	i       int
	nextErr error
}

func (r *fakeRows) Columns() []string { return []string{"name", "age"} }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		if r.nextErr != nil {
			return r.nextErr
		}
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

func TestFromHiveCursor(t *testing.T) {
	cursor := &fakeHiveCursor{
		desc: [][]string{{"people.name", "STRING_TYPE"}, {"people.age", "INT_TYPE"}},
		rows: [][]any{{"Jan", int32(30)}, {"Evan", nil}},
	}
	doc, err := Enumerate(FromHiveCursor(context.Background(), cursor)).Elements()
	require.NoError(t, err)
	assert.Equal(t, []any{
		[]any{"Jan", int32(30)},
		[]any{"Evan", nil},
	}, doc)
}

func TestFromHiveCursorFetchError(t *testing.T) {
	cursor := &fakeHiveCursor{
		desc:     [][]string{{"name", "STRING_TYPE"}},
		rows:     [][]any{{"a"}, {"b"}},
		failAt:   2,
		fetchErr: errors.New("thrift: session closed"),
	}
	_, err := Enumerate(FromHiveCursor(context.Background(), cursor)).Elements()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gohive: scan row 2")
	assert.Contains(t, err.Error(), "session closed")
}

type fakeHiveCursor struct {
	desc     [][]string
	rows     [][]any
	i        int
	failAt   int
	fetchErr error
	err      error
}

func (c *fakeHiveCursor) HasMore(context.Context) bool { return c.err == nil && c.i < len(c.rows) }
func (c *fakeHiveCursor) Description() [][]string      { return c.desc }
func (c *fakeHiveCursor) Error() error                 { return c.err }

func (c *fakeHiveCursor) FetchOne(_ context.Context, dests ...any) {
	c.i++
	if c.i == c.failAt {
		c.err = c.fetchErr
		return
	}
	for j, v := range c.rows[c.i-1] {
		*(dests[j].(*any)) = v
	}
}
