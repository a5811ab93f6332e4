// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipmark/clipmark/internal/auth"
	"github.com/clipmark/clipmark/internal/auth/mocks"
	"github.com/clipmark/clipmark/pkg/errutil"
)

func newService(t *testing.T) (*auth.Service, *mocks.MockUserRepository, *mocks.MockSessionRepository, *mocks.MockPasswordHasher) {
	t.Helper()
	users := mocks.NewMockUserRepository(t)
	sessions := mocks.NewMockSessionRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	svc, err := auth.NewService(users, sessions, hasher, nil)
	require.NoError(t, err)
	return svc, users, sessions, hasher
}

func testUser(t *testing.T) *auth.User {
	t.Helper()
	user, err := auth.NewUser("alice", "stored-hash", "stored-salt")
	require.NoError(t, err)
	return user
}

func TestNewService_NilDependencies(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	sessions := mocks.NewMockSessionRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)

	tests := []struct {
		name        string
		users       auth.UserRepository
		sessions    auth.SessionRepository
		hasher      auth.PasswordHasher
		expectError string
	}{
		{"nil users repository", nil, sessions, hasher, "users repository is required"},
		{"nil sessions repository", users, nil, hasher, "sessions repository is required"},
		{"nil password hasher", users, sessions, nil, "password hasher is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.users, tt.sessions, tt.hasher, nil)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestService_SetupUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates first user and session", func(t *testing.T) {
		svc, users, sessions, hasher := newService(t)

		users.On("Count", ctx).Return(int64(0), nil)
		hasher.On("Hash", "password123").Return("hash", "salt", nil)
		users.On("Save", ctx, mock.AnythingOfType("*auth.User")).Return(nil)
		sessions.On("Save", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		creds, err := svc.SetupUser(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, "alice", creds.User.Username)
		assert.Equal(t, "hash", creds.User.PasswordHash)
		assert.Equal(t, "salt", creds.User.PasswordSalt)
		assert.Nil(t, creds.User.GitHubID)
		assert.Equal(t, creds.User.ID, creds.Session.UserID)
		assert.False(t, creds.Session.IsExpired())
	})

	t.Run("rejects second setup", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("Count", ctx).Return(int64(1), nil)

		creds, err := svc.SetupUser(ctx, "alice", "password123")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeSetupCompleted)
	})

	t.Run("rejects invalid username before hashing", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("Count", ctx).Return(int64(0), nil)

		creds, err := svc.SetupUser(ctx, "a", "password123")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidCredentials)
	})

	t.Run("storage failure surfaces as storage error", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("Count", ctx).Return(int64(0), errors.New("connection refused"))

		creds, err := svc.SetupUser(ctx, "alice", "password123")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeStorageError)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login creates session and sweeps expired", func(t *testing.T) {
		svc, users, sessions, hasher := newService(t)
		user := testUser(t)

		users.On("FindByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "password123", "stored-hash", "stored-salt").Return(true, nil)
		sessions.On("DeleteExpired", ctx).Return(int64(2), nil)
		sessions.On("Save", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		creds, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, creds.User.ID)
		assert.Equal(t, user.ID, creds.Session.UserID)
	})

	t.Run("unknown user still verifies against dummy material", func(t *testing.T) {
		svc, users, _, hasher := newService(t)

		users.On("FindByUsername", ctx, "nobody").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", "password123", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(false, nil)

		creds, err := svc.Login(ctx, "nobody", "password123")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidCredentials)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		svc, users, sessions, hasher := newService(t)
		user := testUser(t)

		users.On("FindByUsername", ctx, "nobody").Return(nil, auth.ErrNotFound)
		users.On("FindByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "wrong", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(false, nil)

		_, errMissing := svc.Login(ctx, "nobody", "wrong")
		_, errMismatch := svc.Login(ctx, "alice", "wrong")
		require.Error(t, errMissing)
		require.Error(t, errMismatch)
		assert.Equal(t, errMissing.Error(), errMismatch.Error())
		errutil.AssertErrorCode(t, errMissing, auth.CodeInvalidCredentials)
		errutil.AssertErrorCode(t, errMismatch, auth.CodeInvalidCredentials)

		sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("sweep failure does not block login", func(t *testing.T) {
		svc, users, sessions, hasher := newService(t)
		user := testUser(t)

		users.On("FindByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "password123", "stored-hash", "stored-salt").Return(true, nil)
		sessions.On("DeleteExpired", ctx).Return(int64(0), errors.New("table locked"))
		sessions.On("Save", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		creds, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.NotNil(t, creds.Session)
	})

	t.Run("repository failure surfaces as storage error", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("FindByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))

		creds, err := svc.Login(ctx, "alice", "password123")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeStorageError)
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes session by id", func(t *testing.T) {
		svc, _, sessions, _ := newService(t)
		id := uuid.New()

		sessions.On("DeleteByID", ctx, id).Return(nil)

		require.NoError(t, svc.Logout(ctx, id.String()))
	})

	t.Run("malformed id maps to session not found", func(t *testing.T) {
		svc, _, sessions, _ := newService(t)

		err := svc.Logout(ctx, "not-a-uuid")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)

		sessions.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("deleting a nonexistent session succeeds", func(t *testing.T) {
		svc, _, sessions, _ := newService(t)
		id := uuid.New()

		// Repositories treat zero rows affected as success.
		sessions.On("DeleteByID", ctx, id).Return(nil)

		require.NoError(t, svc.Logout(ctx, id.String()))
	})
}

func TestService_GitHubCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("no account exists", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("FindByGitHubID", ctx, "g1").Return(nil, auth.ErrNotFound)
		users.On("FindFirst", ctx).Return(nil, auth.ErrNotFound)

		creds, err := svc.GitHubCallback(ctx, "g1", "alice")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeOAuthError)
	})

	t.Run("auto-links the unlinked single account", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		user := testUser(t)

		users.On("FindByGitHubID", ctx, "g1").Return(nil, auth.ErrNotFound)
		users.On("FindFirst", ctx).Return(user, nil)
		users.On("Save", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.GitHubID != nil && *u.GitHubID == "g1" && u.ID == user.ID
		})).Return(nil)
		sessions.On("Save", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		creds, err := svc.GitHubCallback(ctx, "g1", "alice")
		require.NoError(t, err)
		require.NotNil(t, creds.User.GitHubID)
		assert.Equal(t, "g1", *creds.User.GitHubID)
		assert.Equal(t, user.ID, creds.Session.UserID)
	})

	t.Run("rejects a different identity on a linked account", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		user := testUser(t)
		linked := user.LinkGitHub("g1")

		users.On("FindByGitHubID", ctx, "g2").Return(nil, auth.ErrNotFound)
		users.On("FindFirst", ctx).Return(&linked, nil)

		creds, err := svc.GitHubCallback(ctx, "g2", "mallory")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeOAuthError)

		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("already-linked identity is a login", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		user := testUser(t)
		linked := user.LinkGitHub("g1")

		users.On("FindByGitHubID", ctx, "g1").Return(&linked, nil)
		sessions.On("Save", ctx, mock.AnythingOfType("*auth.Session")).Return(nil)

		creds, err := svc.GitHubCallback(ctx, "g1", "alice")
		require.NoError(t, err)
		require.NotNil(t, creds.User.GitHubID)
		assert.Equal(t, "g1", *creds.User.GitHubID)
		assert.Equal(t, linked.ID, creds.Session.UserID)

		// Linking happened earlier; login must not touch the user row.
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "FindFirst", mock.Anything)
	})

	t.Run("empty identity is an oauth error", func(t *testing.T) {
		svc, _, _, _ := newService(t)

		creds, err := svc.GitHubCallback(ctx, "", "alice")
		require.Error(t, err)
		assert.Nil(t, creds)
		errutil.AssertErrorCode(t, err, auth.CodeOAuthError)
	})
}

func TestService_AuthStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("absent session id on empty store needs setup", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("Count", ctx).Return(int64(0), nil)

		status, err := svc.AuthStatus(ctx, "")
		require.NoError(t, err)
		assert.False(t, status.Authenticated)
		assert.Nil(t, status.User)
		assert.True(t, status.NeedsSetup)
	})

	t.Run("malformed session id is treated like absent", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)

		users.On("Count", ctx).Return(int64(1), nil)

		status, err := svc.AuthStatus(ctx, "garbage")
		require.NoError(t, err)
		assert.False(t, status.Authenticated)
		assert.False(t, status.NeedsSetup)

		sessions.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown session id is unauthenticated", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		id := uuid.New()

		sessions.On("FindByID", ctx, id).Return(nil, auth.ErrNotFound)
		users.On("Count", ctx).Return(int64(1), nil)

		status, err := svc.AuthStatus(ctx, id.String())
		require.NoError(t, err)
		assert.False(t, status.Authenticated)
		assert.False(t, status.NeedsSetup)
	})

	t.Run("expired session is unauthenticated", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		session := &auth.Session{
			ID:        uuid.New(),
			UserID:    ulid.Make(),
			ExpiresAt: time.Now().Add(-time.Minute),
			CreatedAt: time.Now().Add(-auth.SessionTTL - time.Minute),
		}

		sessions.On("FindByID", ctx, session.ID).Return(session, nil)
		users.On("Count", ctx).Return(int64(1), nil)

		status, err := svc.AuthStatus(ctx, session.ID.String())
		require.NoError(t, err)
		assert.False(t, status.Authenticated)
	})

	t.Run("orphaned session is unauthenticated", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		session, err := auth.NewSession(ulid.Make())
		require.NoError(t, err)

		sessions.On("FindByID", ctx, session.ID).Return(session, nil)
		users.On("FindByID", ctx, session.UserID).Return(nil, auth.ErrNotFound)
		users.On("Count", ctx).Return(int64(0), nil)

		status, err := svc.AuthStatus(ctx, session.ID.String())
		require.NoError(t, err)
		assert.False(t, status.Authenticated)
		assert.True(t, status.NeedsSetup)
	})

	t.Run("live session resolves the user", func(t *testing.T) {
		svc, users, sessions, _ := newService(t)
		user := testUser(t)
		linked := user.LinkGitHub("g1")
		session, err := auth.NewSession(linked.ID)
		require.NoError(t, err)

		sessions.On("FindByID", ctx, session.ID).Return(session, nil)
		users.On("FindByID", ctx, linked.ID).Return(&linked, nil)

		status, err := svc.AuthStatus(ctx, session.ID.String())
		require.NoError(t, err)
		assert.True(t, status.Authenticated)
		require.NotNil(t, status.User)
		assert.Equal(t, linked.ID.String(), status.User.ID)
		assert.Equal(t, "alice", status.User.Username)
		assert.True(t, status.User.GitHubLinked)
		assert.False(t, status.NeedsSetup)

		users.AssertNotCalled(t, "Count", mock.Anything)
	})
}

func TestService_SetupStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("needs setup when no users", func(t *testing.T) {
		svc, users, _, _ := newService(t)
		users.On("Count", ctx).Return(int64(0), nil)

		needsSetup, err := svc.SetupStatus(ctx)
		require.NoError(t, err)
		assert.True(t, needsSetup)
	})

	t.Run("setup done once a user exists", func(t *testing.T) {
		svc, users, _, _ := newService(t)
		users.On("Count", ctx).Return(int64(1), nil)

		needsSetup, err := svc.SetupStatus(ctx)
		require.NoError(t, err)
		assert.False(t, needsSetup)
	})
}

func TestService_SweepSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the number of deleted sessions", func(t *testing.T) {
		svc, _, sessions, _ := newService(t)
		sessions.On("DeleteExpired", ctx).Return(int64(4), nil)

		deleted, err := svc.SweepSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), deleted)
	})

	t.Run("storage failure is surfaced", func(t *testing.T) {
		svc, _, sessions, _ := newService(t)
		sessions.On("DeleteExpired", ctx).Return(int64(0), errors.New("boom"))

		_, err := svc.SweepSessions(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeStorageError)
	})
}
