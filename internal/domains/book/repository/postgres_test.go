package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/shared/apperror"
	"library-backend/pkg/database"
)

func TestWriteFailure(t *testing.T) {
	t.Run("unique violations stay raw for conflict mapping", func(t *testing.T) {
		cause := fmt.Errorf("insert into books failed: %w", &pgconn.PgError{Code: "23505"})

		err := writeFailure("insert books", cause)
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))
		assert.Nil(t, apperror.From(err))
	})

	t.Run("connectivity failures become storage errors", func(t *testing.T) {
		cause := errors.New("failed to begin transaction: dial tcp: connection refused")

		err := writeFailure("insert books", cause)
		require.Error(t, err)

		ae := apperror.From(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperror.KindStorage, ae.Kind)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("other constraint failures become storage errors", func(t *testing.T) {
		err := writeFailure("update book LIB-1", &pgconn.PgError{Code: "23503"})
		assert.True(t, apperror.IsKind(err, apperror.KindStorage))
	})
}
