package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"library-backend/internal/shared/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Entity is the capability set a row type must expose so the generic
// repository can read and stage it without entity-specific SQL.
type Entity interface {
	// TableName returns the table the entity maps to.
	TableName() string
	// KeyColumn returns the primary key column.
	KeyColumn() string
	// KeyValue returns the primary key value of this row.
	KeyValue() any
	// DataColumns returns the non-key columns, in a fixed order.
	DataColumns() []string
	// DataValues returns the values aligned with DataColumns.
	DataValues() []any
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so reads run against
// the pool while staged flushes run inside a transaction.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Predicate is one WHERE condition. Placeholders are written $1..$n relative
// to the predicate's own Args and renumbered when predicates are combined.
type Predicate struct {
	Clause string
	Args   []any
}

// Where builds a predicate.
func Where(clause string, args ...any) Predicate {
	return Predicate{Clause: clause, Args: args}
}

// Repository is a thin typed staging layer over a connection scope.
// Insert/Update/Delete only record changes; nothing is written until the
// owning UnitOfWork commits. Reads go straight to the scope's connection.
// A Repository is confined to one request scope and is not goroutine-safe.
type Repository[T Entity] struct {
	db      DBTX
	inserts []T
	updates []T
	deletes []any
}

// NewRepository creates a repository bound to a connection scope.
func NewRepository[T Entity](db DBTX) *Repository[T] {
	return &Repository[T]{db: db}
}

// GetAll returns all rows matching the predicates, all rows when none are
// given. No implicit status filtering: callers apply their own.
func (r *Repository[T]) GetAll(ctx context.Context, preds ...Predicate) ([]T, error) {
	var zero T
	where, args := buildWhere(preds)
	sql := fmt.Sprintf("SELECT * FROM %s%s", zero.TableName(), where)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", zero.TableName(), err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}
	return records, nil
}

// SingleOrDefault returns the first row matching the predicates, or nil when
// nothing matches. Ambiguous predicates are not an error.
func (r *Repository[T]) SingleOrDefault(ctx context.Context, preds ...Predicate) (*T, error) {
	var zero T
	where, args := buildWhere(preds)
	sql := fmt.Sprintf("SELECT * FROM %s%s LIMIT 1", zero.TableName(), where)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", zero.TableName(), err)
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collect row failed: %w", err)
	}
	return &record, nil
}

// Insert stages new rows for the next commit.
func (r *Repository[T]) Insert(entities ...T) {
	r.inserts = append(r.inserts, entities...)
}

// Update stages a field-level overwrite of an existing row.
func (r *Repository[T]) Update(entity T) {
	r.updates = append(r.updates, entity)
}

// Delete stages removal of a row. Unused by soft-deleting entities, kept for
// kinds that physically remove rows.
func (r *Repository[T]) Delete(entity T) {
	r.deletes = append(r.deletes, entity.KeyValue())
}

// DeleteByKey stages removal by primary key.
func (r *Repository[T]) DeleteByKey(key any) {
	r.deletes = append(r.deletes, key)
}

// Pending reports the number of staged, uncommitted changes.
func (r *Repository[T]) Pending() int {
	return len(r.inserts) + len(r.updates) + len(r.deletes)
}

// clear discards all staged changes.
func (r *Repository[T]) clear() {
	r.inserts = nil
	r.updates = nil
	r.deletes = nil
}

// flush writes all staged changes through db and clears the staging area on
// success. On failure staged changes are kept so the scope can be recovered
// with ClearContext.
func (r *Repository[T]) flush(ctx context.Context, db DBTX) (int64, error) {
	var zero T
	var affected int64

	if len(r.inserts) > 0 {
		cols := zero.DataColumns()
		sql := buildInsertSQL(zero.TableName(), cols, len(r.inserts))
		args := make([]any, 0, len(r.inserts)*len(cols))
		for _, e := range r.inserts {
			args = append(args, e.DataValues()...)
		}
		tag, err := db.Exec(ctx, sql, args...)
		if err != nil {
			return affected, fmt.Errorf("insert into %s failed: %w", zero.TableName(), err)
		}
		affected += tag.RowsAffected()
	}

	for _, e := range r.updates {
		sql := buildUpdateSQL(zero.TableName(), zero.DataColumns(), zero.KeyColumn())
		args := append(e.DataValues(), e.KeyValue())
		tag, err := db.Exec(ctx, sql, args...)
		if err != nil {
			return affected, fmt.Errorf("update %s failed: %w", zero.TableName(), err)
		}
		affected += tag.RowsAffected()
	}

	for _, key := range r.deletes {
		sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", zero.TableName(), zero.KeyColumn())
		tag, err := db.Exec(ctx, sql, key)
		if err != nil {
			return affected, fmt.Errorf("delete from %s failed: %w", zero.TableName(), err)
		}
		affected += tag.RowsAffected()
	}

	r.clear()
	return affected, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// so callers can surface staged-write collisions as conflicts.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// buildWhere combines predicates into a WHERE clause, renumbering each
// predicate's local placeholders against the accumulated argument list.
func buildWhere(preds []Predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		clauses = append(clauses, renumberPlaceholders(p.Clause, len(args)))
		args = append(args, p.Args...)
	}
	return " WHERE " + utils.JoinWithAnd(clauses), args
}

func renumberPlaceholders(clause string, offset int) string {
	if offset == 0 {
		return clause
	}
	return placeholderRe.ReplaceAllStringFunc(clause, func(m string) string {
		n, _ := strconv.Atoi(m[1:])
		return "$" + strconv.Itoa(n+offset)
	})
}

func buildInsertSQL(table string, cols []string, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))
	arg := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteByte(')')
	}
	return b.String()
}

func buildUpdateSQL(table string, cols []string, keyCol string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(sets, ", "), keyCol, len(cols)+1)
}
