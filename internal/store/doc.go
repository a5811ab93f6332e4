// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package store owns the PostgreSQL connection pool and schema migrations.
package store
