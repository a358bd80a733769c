package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/search"

	"github.com/jackc/pgx/v5"
)

// Every stored procedure answers with a fixed envelope: an error_message
// column plus zero or more payload columns depending on the procedure
// family. One row type exists per call shape so each result is decoded
// explicitly instead of through a decode-anything path.

type scalarResult struct {
	ErrorMessage string  `db:"error_message"`
	Result       *string `db:"result"`
}

type sidResult struct {
	ErrorMessage string  `db:"error_message"`
	SID          *string `db:"sid"`
}

type listResult struct {
	ErrorMessage string  `db:"error_message"`
	Result       *string `db:"result"`
	TotalCount   int     `db:"total_count"`
}

type voidResult struct {
	ErrorMessage string `db:"error_message"`
}

// queryer is the slice of the connection pool the executor needs. Kept
// narrow so the decode paths can be driven with canned rows.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProcExecutor invokes named stored procedures with positional parameters
// over its own connection pool, separate from the entity-tracked pool.
type ProcExecutor struct {
	db queryer
}

func NewProcExecutor(db queryer) *ProcExecutor {
	return &ProcExecutor{db: db}
}

// checkEnvelope applies the shared failure rule: any non-empty error message
// in the first returned row fails the call, whatever else the row carries.
func checkEnvelope(errorMessage string) error {
	if errorMessage != "" {
		return apperror.NewProcedure(errorMessage)
	}
	return nil
}

// ExecuteScalar expects a single row with a scalar or JSON result field.
// Returns the empty string when the procedure yields no rows or no result.
func (e *ProcExecutor) ExecuteScalar(ctx context.Context, proc string, args ...any) (string, error) {
	rows, err := e.query(ctx, proc, args...)
	if err != nil {
		return "", err
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[scalarResult])
	if err != nil {
		return "", fmt.Errorf("decode %s result failed: %w", proc, err)
	}
	if len(results) == 0 {
		return "", nil
	}
	if err := checkEnvelope(results[0].ErrorMessage); err != nil {
		return "", err
	}
	if results[0].Result == nil {
		return "", nil
	}
	return *results[0].Result, nil
}

// ExecuteScalarWithSID is ExecuteScalar for procedures that answer with a
// sid column instead of a result payload.
func (e *ProcExecutor) ExecuteScalarWithSID(ctx context.Context, proc string, args ...any) (string, error) {
	rows, err := e.query(ctx, proc, args...)
	if err != nil {
		return "", err
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[sidResult])
	if err != nil {
		return "", fmt.Errorf("decode %s result failed: %w", proc, err)
	}
	if len(results) == 0 {
		return "", nil
	}
	if err := checkEnvelope(results[0].ErrorMessage); err != nil {
		return "", err
	}
	if results[0].SID == nil {
		return "", nil
	}
	return *results[0].SID, nil
}

// ExecuteListWithCount expects a row carrying a JSON-array-encoded result
// plus a total count. No rows means no data: an empty page, not an error.
func (e *ProcExecutor) ExecuteListWithCount(ctx context.Context, proc string, args ...any) (*search.Page, error) {
	page := &search.Page{}

	rows, err := e.query(ctx, proc, args...)
	if err != nil {
		return nil, err
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[listResult])
	if err != nil {
		return nil, fmt.Errorf("decode %s result failed: %w", proc, err)
	}
	if len(results) == 0 {
		return page, nil
	}
	if err := checkEnvelope(results[0].ErrorMessage); err != nil {
		return nil, err
	}

	page.Meta.TotalResults = results[0].TotalCount
	if results[0].Result != nil && strings.TrimSpace(*results[0].Result) != "" {
		if !json.Valid([]byte(*results[0].Result)) {
			return nil, apperror.NewDecode(fmt.Sprintf("procedure %s returned malformed JSON payload", proc), nil)
		}
		page.Result = json.RawMessage(*results[0].Result)
	}
	return page, nil
}

// ExecuteVoid expects at most an error envelope and returns nothing on
// success.
func (e *ProcExecutor) ExecuteVoid(ctx context.Context, proc string, args ...any) error {
	rows, err := e.query(ctx, proc, args...)
	if err != nil {
		return err
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[voidResult])
	if err != nil {
		return fmt.Errorf("decode %s result failed: %w", proc, err)
	}
	if len(results) == 0 {
		return nil
	}
	return checkEnvelope(results[0].ErrorMessage)
}

func (e *ProcExecutor) query(ctx context.Context, proc string, args ...any) (pgx.Rows, error) {
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("SELECT * FROM %s(%s)", proc, strings.Join(placeholders, ", "))

	rows, err := e.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("procedure %s call failed: %w", proc, err)
	}
	return rows, nil
}
