package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// flusher is the untyped face a UnitOfWork keeps for each cached repository.
type flusher interface {
	flush(ctx context.Context, db DBTX) (int64, error)
	clear()
	Pending() int
}

// UnitOfWork owns one repository per entity kind, all bound to the same
// connection scope, and flushes their staged changes as one atomic write.
// One UnitOfWork serves one request; it is not goroutine-safe.
type UnitOfWork struct {
	pool   *pgxpool.Pool
	repos  map[string]flusher
	closed bool
}

// NewUnitOfWork opens a unit-of-work scope on the pool. The pool itself is
// owned by the container; Close releases only this scope.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		pool:  pool,
		repos: make(map[string]flusher),
	}
}

// GetRepository returns the scope's repository for T, creating it on first
// access. Repeated calls for the same entity kind return the same instance,
// so staged changes accumulate in one place before commit.
func GetRepository[T Entity](u *UnitOfWork) *Repository[T] {
	var zero T
	key := zero.TableName()
	if r, ok := u.repos[key]; ok {
		return r.(*Repository[T])
	}
	r := NewRepository[T](u.pool)
	u.repos[key] = r
	return r
}

// Commit flushes all staged changes across every repository obtained from
// this scope as one atomic write. Returns the affected-row count.
func (u *UnitOfWork) Commit(ctx context.Context) (int64, error) {
	return u.flushAll(ctx)
}

// CommitWithTransaction is the explicit transaction boundary variant, for
// callers needing multi-step atomicity beyond a single flush.
func (u *UnitOfWork) CommitWithTransaction(ctx context.Context) (int64, error) {
	return u.flushAll(ctx)
}

func (u *UnitOfWork) flushAll(ctx context.Context) (int64, error) {
	if u.Pending() == 0 {
		return 0, nil
	}
	return WithTransactionResult(ctx, u.pool, func(tx pgx.Tx) (int64, error) {
		var total int64
		for _, r := range u.repos {
			n, err := r.flush(ctx, tx)
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	})
}

// Pending reports the number of staged changes across all repositories.
func (u *UnitOfWork) Pending() int {
	n := 0
	for _, r := range u.repos {
		n += r.Pending()
	}
	return n
}

// ClearContext discards all staged, uncommitted changes so the scope can be
// reused after a failed commit.
func (u *UnitOfWork) ClearContext() {
	for _, r := range u.repos {
		r.clear()
	}
}

// Close releases the scope. Safe to call multiple times.
func (u *UnitOfWork) Close() {
	if u.closed {
		return
	}
	u.closed = true
	u.ClearContext()
	u.repos = map[string]flusher{}
}
