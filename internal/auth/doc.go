// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package auth provides the authentication core for Clipmark.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their respective
// constructors:
//   - NewUser - creates a User with validated username and password material
//   - NewSession - creates a Session with a fresh ID and fixed 30-day expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Single-User Mode
//
// A Clipmark deployment holds at most one local account. SetupUser is the only
// path that creates it, and GitHubCallback links an external identity to that
// account instead of creating a second one. Commands perform check-then-act
// without transactional isolation; correctness under concurrent calls relies
// on the storage-level uniqueness constraints (username, github_id, session id).
//
// # Service
//
// Service coordinates the commands: SetupUser, Login, Logout, GitHubCallback,
// AuthStatus and SetupStatus. It is created with NewService, which validates
// its dependencies.
package auth
