// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTTL is the fixed validity window of a session, counted from
// creation. Sessions are never extended on use.
const SessionTTL = 30 * 24 * time.Hour

// Session is an authorization grant bound to one user. It is valid iff it
// exists in storage and the current time is before ExpiresAt.
type Session struct {
	ID        uuid.UUID
	UserID    ulid.ULID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a validated Session for the given user with a fresh
// random ID and expiry at now+SessionTTL.
func NewSession(userID ulid.ULID) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeStorageError).Errorf("user ID cannot be zero")
	}

	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// ParseSessionID validates a raw session ID. A malformed ID yields a
// SESSION_NOT_FOUND error so callers can treat it exactly like a session
// that does not exist; the format failure is never surfaced on its own.
func ParseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, oops.Code(CodeSessionNotFound).
			With("operation", "parse session id").
			Wrap(err)
	}
	return id, nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// FindByID retrieves a session by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Save inserts a new session.
	Save(ctx context.Context, session *Session) error

	// DeleteByID removes a session. Deleting a session that does not exist
	// is not an error.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
