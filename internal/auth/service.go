// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/clipmark/clipmark/pkg/errutil"
)

// Credentials is the result of a command that authenticates the user: the
// account and a freshly persisted session for it.
type Credentials struct {
	User    *User
	Session *Session
}

// Status describes the outcome of resolving a session ID, shaped for the
// auth status endpoints.
type Status struct {
	Authenticated bool
	User          *StatusUser
	NeedsSetup    bool
}

// StatusUser is the subset of User exposed in a Status.
type StatusUser struct {
	ID           string
	Username     string
	GitHubLinked bool
}

// Service provides the authentication commands.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// dummyVerify material used when a user doesn't exist, so that password
// verification still runs and response time stays flat. These are base64
// zero bytes and will never match any password.
var (
	dummyHash = base64.StdEncoding.EncodeToString(make([]byte, pbkdf2KeyLen))
	dummySalt = base64.StdEncoding.EncodeToString(make([]byte, pbkdf2SaltLen))
)

// SetupUser creates the first and only local account, plus a session for it.
// Fails with SETUP_ALREADY_COMPLETED once any user row exists. Concurrent
// double-setup is resolved by the unique username constraint at the storage
// boundary, not here.
func (s *Service) SetupUser(ctx context.Context, username, password string) (*Credentials, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "count users").
			Wrap(err)
	}
	if count > 0 {
		return nil, oops.Code(CodeSetupCompleted).Errorf("setup already completed")
	}

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := NewUser(username, hash, salt)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save user").
			With("username", username).
			Wrap(err)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "initial user created", "username", username)
	return &Credentials{User: user, Session: session}, nil
}

// Login authenticates a user by username and password and creates a session.
// A missing user and a wrong password yield the identical error so callers
// cannot probe which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (*Credentials, error) {
	user, lookupErr := s.users.FindByUsername(ctx, username)

	targetHash, targetSalt := dummyHash, dummySalt
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code(CodeStorageError).
				With("operation", "find user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash, targetSalt = user.PasswordHash, user.PasswordSalt
		userExists = true
	}

	// Verification runs on both paths to keep response time flat.
	valid, err := s.hasher.Verify(password, targetHash, targetSalt)
	if err != nil {
		if !userExists {
			return nil, invalidCredentials()
		}
		return nil, oops.Code(CodeStorageError).
			With("operation", "verify password").
			Wrap(err)
	}
	if !userExists || !valid {
		return nil, invalidCredentials()
	}

	// Opportunistic cleanup; validity never depends on the sweep.
	if deleted, err := s.sessions.DeleteExpired(ctx); err != nil {
		errutil.LogError(s.logger, "expired session sweep failed", err)
	} else if deleted > 0 {
		s.logger.DebugContext(ctx, "expired sessions deleted", "count", deleted)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Credentials{User: user, Session: session}, nil
}

// Logout deletes the session identified by rawSessionID. A malformed ID
// yields a SESSION_NOT_FOUND error that callers treat as a no-op; deleting
// a session that does not exist succeeds.
func (s *Service) Logout(ctx context.Context, rawSessionID string) error {
	id, err := ParseSessionID(rawSessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.DeleteByID(ctx, id); err != nil {
		return oops.Code(CodeStorageError).
			With("operation", "delete session").
			With("session_id", id.String()).
			Wrap(err)
	}
	return nil
}

// SweepSessions deletes all expired sessions and returns how many rows went
// away. Meant to be called periodically; Login also sweeps opportunistically.
func (s *Service) SweepSessions(ctx context.Context) (int64, error) {
	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code(CodeStorageError).
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "expired sessions swept", "deleted", deleted)
	}
	return deleted, nil
}

// GitHubCallback resolves an authenticated GitHub identity against the
// single local account:
//
//  1. Identity already linked to a user -> treat as login, new session.
//  2. Otherwise look at the (only) account:
//     a. no account -> OAUTH_ERROR, setup required first
//     b. linked to a different identity -> OAUTH_ERROR
//     c. not linked -> auto-link, persist, new session
//
// It never creates a user row; GitHub identity is a linking shortcut, not an
// account-creation path.
func (s *Service) GitHubCallback(ctx context.Context, githubID, githubUsername string) (*Credentials, error) {
	if githubID == "" {
		return nil, oops.Code(CodeOAuthError).Errorf("github identity is missing")
	}

	linked, err := s.users.FindByGitHubID(ctx, githubID)
	if err == nil {
		session, err := s.createSession(ctx, linked)
		if err != nil {
			return nil, err
		}
		return &Credentials{User: linked, Session: session}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code(CodeStorageError).
			With("operation", "find user by github id").
			Wrap(err)
	}

	user, err := s.users.FindFirst(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeOAuthError).
				Errorf("no user account exists; complete setup first")
		}
		return nil, oops.Code(CodeStorageError).
			With("operation", "find first user").
			Wrap(err)
	}

	if user.GitHubID != nil {
		return nil, oops.Code(CodeOAuthError).
			Errorf("account is already linked to a different GitHub account")
	}

	updated := user.LinkGitHub(githubID)
	if err := s.users.Save(ctx, &updated); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save linked user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "github account linked", "github_username", githubUsername)

	session, err := s.createSession(ctx, &updated)
	if err != nil {
		return nil, err
	}
	return &Credentials{User: &updated, Session: session}, nil
}

// AuthStatus resolves an optional raw session ID into an auth status.
// Resolution order: absent or malformed ID, unknown or expired session, and
// an orphaned session all resolve to unauthenticated with a fresh needsSetup
// count; only a live session whose user exists is authenticated. A malformed
// ID is never reported as an error.
func (s *Service) AuthStatus(ctx context.Context, rawSessionID string) (*Status, error) {
	if rawSessionID == "" {
		return s.unauthenticated(ctx)
	}

	id, err := ParseSessionID(rawSessionID)
	if err != nil {
		return s.unauthenticated(ctx)
	}

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.unauthenticated(ctx)
		}
		return nil, oops.Code(CodeStorageError).
			With("operation", "find session").
			Wrap(err)
	}
	if session.IsExpired() {
		return s.unauthenticated(ctx)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Orphaned session: the owning user row is gone.
			return s.unauthenticated(ctx)
		}
		return nil, oops.Code(CodeStorageError).
			With("operation", "find session user").
			Wrap(err)
	}

	return &Status{
		Authenticated: true,
		User: &StatusUser{
			ID:           user.ID.String(),
			Username:     user.Username,
			GitHubLinked: user.GitHubLinked(),
		},
		NeedsSetup: false,
	}, nil
}

// SetupStatus reports whether initial setup is still required.
func (s *Service) SetupStatus(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, oops.Code(CodeStorageError).
			With("operation", "count users").
			Wrap(err)
	}
	return count == 0, nil
}

func (s *Service) unauthenticated(ctx context.Context) (*Status, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "count users").
			Wrap(err)
	}
	return &Status{
		Authenticated: false,
		User:          nil,
		NeedsSetup:    count == 0,
	}, nil
}

func (s *Service) createSession(ctx context.Context, user *User) (*Session, error) {
	session, err := NewSession(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save session").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return session, nil
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
}
