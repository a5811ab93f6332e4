// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// pingBackoff bounds the connection probe: fibonacci backoff from 500ms,
// capped at 30s total. Postgres in a sidecar container often comes up a
// few seconds after the service.
const (
	pingInitialBackoff = 500 * time.Millisecond
	pingMaxDuration    = 30 * time.Second
)

// Connect opens a pgx connection pool and verifies it with a retried ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithMaxDuration(pingMaxDuration, retry.NewFibonacci(pingInitialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
