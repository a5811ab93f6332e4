// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Domain error codes form a closed taxonomy. Every command failure carries
// exactly one of these as its oops code; the HTTP layer maps them to status
// codes and nothing below it interprets them further.
const (
	// CodeInvalidCredentials covers both "no such user" and "wrong password".
	// The two cases are deliberately indistinguishable to the caller.
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"

	// CodeSessionNotFound covers malformed, missing, and expired session IDs.
	CodeSessionNotFound = "SESSION_NOT_FOUND"

	// CodeSetupCompleted rejects a second setup attempt.
	CodeSetupCompleted = "SETUP_ALREADY_COMPLETED"

	// CodeOAuthError covers every OAuth failure: no account to link to,
	// conflicting link, upstream exchange failure, or CSRF state mismatch.
	CodeOAuthError = "OAUTH_ERROR"

	// CodeStorageError wraps persistence and crypto failures. The cause is
	// attached for logging only and never reaches the client.
	CodeStorageError = "STORAGE_ERROR"
)
