// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, underscores, and hyphens
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// User represents the single local account of a Clipmark deployment.
// GitHubID is nil until the account is linked via the OAuth callback and is
// set at most once.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	PasswordSalt string
	GitHubID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with a fresh ID. PasswordHash and
// PasswordSalt must come from a PasswordHasher; they are opaque here.
func NewUser(username, passwordHash, passwordSalt string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" || passwordSalt == "" {
		return nil, oops.Code(CodeStorageError).Errorf("password hash and salt are required")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		GitHubID:     nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// LinkGitHub returns a copy of the user with the GitHub identity set and
// UpdatedAt refreshed. The receiver is never mutated.
func (u User) LinkGitHub(githubID string) User {
	u.GitHubID = &githubID
	u.UpdatedAt = time.Now()
	return u
}

// GitHubLinked reports whether a GitHub identity is bound to this account.
func (u *User) GitHubLinked() bool {
	return u.GitHubID != nil
}

// ParseUserID validates a raw user ID string.
func ParseUserID(raw string) (ulid.ULID, error) {
	id, err := ulid.Parse(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeStorageError).
			With("operation", "parse user id").
			Wrap(err)
	}
	return id, nil
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), underscores, hyphens
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code(CodeInvalidCredentials).Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code(CodeInvalidCredentials).
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code(CodeInvalidCredentials).
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code(CodeInvalidCredentials).
			Errorf("username must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}

// UserRepository manages user persistence. Lookups return an error wrapping
// ErrNotFound when no row matches.
type UserRepository interface {
	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByUsername retrieves a user by username (case-insensitive).
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByGitHubID retrieves the user linked to the given GitHub identity.
	FindByGitHubID(ctx context.Context, githubID string) (*User, error)

	// FindFirst retrieves the single user of this deployment, if any.
	FindFirst(ctx context.Context) (*User, error)

	// Save upserts a user by ID.
	Save(ctx context.Context, user *User) error

	// Count returns the number of user rows.
	Count(ctx context.Context) (int64, error)
}
