// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package httpapi exposes the Clipmark JSON API over chi. It owns the
// session cookie, the GitHub OAuth legs, and the mapping from domain error
// codes to HTTP statuses; nothing below this package knows about HTTP.
package httpapi
