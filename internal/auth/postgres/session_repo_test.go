// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipmark/clipmark/internal/auth"
	"github.com/clipmark/clipmark/internal/auth/postgres"
)

func newSessionRepo(t *testing.T) (*postgres.SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return postgres.NewSessionRepository(mock), mock
}

func TestSessionRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips all fields", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		session := &auth.Session{
			ID:        uuid.New(),
			UserID:    ulid.Make(),
			ExpiresAt: time.Now().Add(auth.SessionTTL).UTC().Truncate(time.Microsecond),
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = \\$1").
			WithArgs(session.ID.String()).
			WillReturnRows(mock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
				AddRow(session.ID.String(), session.UserID.String(), session.ExpiresAt, session.CreatedAt))

		got, err := repo.FindByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session, got)
	})

	t.Run("missing row wraps ErrNotFound", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		id := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM sessions WHERE id = \\$1").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"id"}))

		got, err := repo.FindByID(ctx, id)
		require.ErrorIs(t, err, auth.ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestSessionRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo, mock := newSessionRepo(t)
	session, err := auth.NewSession(ulid.Make())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.ID.String(), session.UserID.String(), session.ExpiresAt, session.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Save(ctx, session))
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by id", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM sessions WHERE id = \\$1").
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.DeleteByID(ctx, id))
	})

	t.Run("zero rows affected is not an error", func(t *testing.T) {
		repo, mock := newSessionRepo(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM sessions WHERE id = \\$1").
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, repo.DeleteByID(ctx, id))
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo, mock := newSessionRepo(t)

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at < \\$1").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
