package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/shared/apperror"
)

// fakeRows replays canned column/value rows through the pgx.Rows interface.
// Values must already carry the scan target's type (string, *string, int).
type fakeRows struct {
	cols []string
	data [][]any
	idx  int
}

func rowsOf(cols []string, data ...[]any) *fakeRows {
	return &fakeRows{cols: cols, data: data}
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) == 1 {
		if rs, ok := dest[0].(pgx.RowScanner); ok {
			return rs.ScanRow(r)
		}
	}
	row := r.data[r.idx-1]
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeDB struct {
	sql  string
	args []any
	rows pgx.Rows
	err  error
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql = sql
	f.args = args
	return f.rows, f.err
}

func strPtr(s string) *string { return &s }

var (
	scalarCols = []string{"error_message", "result"}
	sidCols    = []string{"error_message", "sid"}
	listCols   = []string{"error_message", "result", "total_count"}
	voidCols   = []string{"error_message"}
)

func TestCheckEnvelope(t *testing.T) {
	t.Run("empty message passes", func(t *testing.T) {
		assert.NoError(t, checkEnvelope(""))
	})

	t.Run("non-empty message fails with the procedure's own text", func(t *testing.T) {
		err := checkEnvelope("Book not found")
		require.Error(t, err)

		ae := apperror.From(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperror.KindProcedure, ae.Kind)
		assert.Equal(t, "Book not found", ae.Message)
	})
}

func TestExecuteScalar(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result payload and builds the call", func(t *testing.T) {
		db := &fakeDB{rows: rowsOf(scalarCols, []any{"", strPtr(`{"bookSid":"LIB-1"}`)})}
		exec := NewProcExecutor(db)

		got, err := exec.ExecuteScalar(ctx, "sp_get_book_by_id", "LIB-1")
		require.NoError(t, err)
		assert.Equal(t, `{"bookSid":"LIB-1"}`, got)
		assert.Equal(t, "SELECT * FROM sp_get_book_by_id($1)", db.sql)
		assert.Equal(t, []any{"LIB-1"}, db.args)
	})

	t.Run("no rows means no data, not an error", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(scalarCols)})

		got, err := exec.ExecuteScalar(ctx, "sp_get_book_by_id", "LIB-missing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("nil result means no data", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(scalarCols, []any{"", (*string)(nil)})})

		got, err := exec.ExecuteScalar(ctx, "sp_get_book_by_id", "LIB-1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("error envelope fails the call", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(scalarCols, []any{"Lookup failed", (*string)(nil)})})

		_, err := exec.ExecuteScalar(ctx, "sp_get_book_by_id", "LIB-1")
		require.Error(t, err)

		ae := apperror.From(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperror.KindProcedure, ae.Kind)
		assert.Equal(t, "Lookup failed", ae.Message)
	})

	t.Run("query failures are wrapped with the procedure name", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{err: errors.New("conn closed")})

		_, err := exec.ExecuteScalar(ctx, "sp_get_book_by_id", "LIB-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sp_get_book_by_id")
	})
}

func TestExecuteScalarWithSID(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts the sid column", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(sidCols, []any{"", strPtr("LIB-new")})})

		got, err := exec.ExecuteScalarWithSID(ctx, "sp_insert_book", "payload")
		require.NoError(t, err)
		assert.Equal(t, "LIB-new", got)
	})

	t.Run("no rows or nil sid means no data", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(sidCols)})
		got, err := exec.ExecuteScalarWithSID(ctx, "sp_insert_book", "payload")
		require.NoError(t, err)
		assert.Empty(t, got)

		exec = NewProcExecutor(&fakeDB{rows: rowsOf(sidCols, []any{"", (*string)(nil)})})
		got, err = exec.ExecuteScalarWithSID(ctx, "sp_insert_book", "payload")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("error envelope fails the call", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(sidCols, []any{"Insert failed", (*string)(nil)})})

		_, err := exec.ExecuteScalarWithSID(ctx, "sp_insert_book", "payload")
		assert.True(t, apperror.IsKind(err, apperror.KindProcedure))
	})
}

func TestExecuteListWithCount(t *testing.T) {
	ctx := context.Background()

	t.Run("no rows yields an empty page, not an error", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(listCols)})

		page, err := exec.ExecuteListWithCount(ctx, "sp_get_all_book_dynamic", "<Search></Search>")
		require.NoError(t, err)
		require.NotNil(t, page)
		assert.Empty(t, page.Result)
		assert.Zero(t, page.Meta.TotalResults)
	})

	t.Run("valid payload carries the raw list and the count", func(t *testing.T) {
		payload := `[{"bookSid":"LIB-1"}]`
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(listCols, []any{"", strPtr(payload), 42})})

		page, err := exec.ExecuteListWithCount(ctx, "sp_get_all_book_dynamic", "")
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(page.Result))
		assert.Equal(t, 42, page.Meta.TotalResults)
	})

	t.Run("blank payload keeps the count but no result", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(listCols, []any{"", strPtr("   "), 7})})

		page, err := exec.ExecuteListWithCount(ctx, "sp_get_all_book_dynamic", "")
		require.NoError(t, err)
		assert.Empty(t, page.Result)
		assert.Equal(t, 7, page.Meta.TotalResults)
	})

	t.Run("malformed payload is a decode error", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(listCols, []any{"", strPtr(`[{"bookSid":`), 1})})

		_, err := exec.ExecuteListWithCount(ctx, "sp_get_all_book_dynamic", "")
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindDecode))
	})

	t.Run("error envelope fails the call", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(listCols, []any{"Search failed", (*string)(nil), 0})})

		_, err := exec.ExecuteListWithCount(ctx, "sp_get_all_book_dynamic", "")
		assert.True(t, apperror.IsKind(err, apperror.KindProcedure))
	})
}

func TestExecuteVoid(t *testing.T) {
	ctx := context.Background()

	t.Run("no rows or empty envelope succeeds", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(voidCols)})
		assert.NoError(t, exec.ExecuteVoid(ctx, "sp_delete_book", "LIB-1"))

		exec = NewProcExecutor(&fakeDB{rows: rowsOf(voidCols, []any{""})})
		assert.NoError(t, exec.ExecuteVoid(ctx, "sp_delete_book", "LIB-1"))
	})

	t.Run("error envelope fails the call", func(t *testing.T) {
		exec := NewProcExecutor(&fakeDB{rows: rowsOf(voidCols, []any{"Delete failed"})})

		err := exec.ExecuteVoid(ctx, "sp_delete_book", "LIB-1")
		assert.True(t, apperror.IsKind(err, apperror.KindProcedure))
	})
}
