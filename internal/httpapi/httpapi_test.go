// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipmark/clipmark/internal/article"
	articlemocks "github.com/clipmark/clipmark/internal/article/mocks"
	"github.com/clipmark/clipmark/internal/auth"
	authmocks "github.com/clipmark/clipmark/internal/auth/mocks"
)

// testDeps bundles the mocked ports behind a Handler under test.
type testDeps struct {
	users    *authmocks.MockUserRepository
	sessions *authmocks.MockSessionRepository
	hasher   *authmocks.MockPasswordHasher
	articles *articlemocks.MockArticleRepository
	tags     *articlemocks.MockTagRepository
	fetcher  *articlemocks.MockMetadataFetcher
}

func newTestHandler(t *testing.T, opts ...func(*Options)) (*Handler, testDeps) {
	t.Helper()

	deps := testDeps{
		users:    authmocks.NewMockUserRepository(t),
		sessions: authmocks.NewMockSessionRepository(t),
		hasher:   authmocks.NewMockPasswordHasher(t),
		articles: articlemocks.NewMockArticleRepository(t),
		tags:     articlemocks.NewMockTagRepository(t),
		fetcher:  articlemocks.NewMockMetadataFetcher(t),
	}

	authSvc, err := auth.NewService(deps.users, deps.sessions, deps.hasher, slog.Default())
	require.NoError(t, err)
	clipSvc, err := article.NewService(deps.articles, deps.tags, deps.fetcher, slog.Default())
	require.NoError(t, err)

	options := Options{
		Auth:          authSvc,
		Clips:         clipSvc,
		SecureCookies: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	h, err := NewHandler(options)
	require.NoError(t, err)
	return h, deps
}

// authedSession primes the user and session mocks with one live session and
// returns the cookie that resolves to it.
func authedSession(t *testing.T, deps testDeps) *http.Cookie {
	t.Helper()

	user, err := auth.NewUser("admin", "hash", "salt")
	require.NoError(t, err)
	session, err := auth.NewSession(user.ID)
	require.NoError(t, err)

	deps.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	deps.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	return sessionCookie(session.ID.String(), session.ExpiresAt, true)
}
