// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipmark/clipmark/internal/auth"
)

type contextKey string

const userContextKey contextKey = "clipmark.user"

// UserFromContext returns the authenticated user placed by requireSession.
func UserFromContext(ctx context.Context) (*auth.StatusUser, bool) {
	user, ok := ctx.Value(userContextKey).(*auth.StatusUser)
	return user, ok
}

// requireSession resolves the session cookie and rejects the request with a
// single undifferentiated 401 when anything about it is off: absent cookie,
// malformed ID, unknown, expired, or orphaned session.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, err := h.auth.AuthStatus(r.Context(), sessionIDFromRequest(r))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if !status.Authenticated {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:   auth.CodeSessionNotFound,
				Message: "authentication required",
			})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, status.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMetrics records request counts and latency per route pattern.
func (h *Handler) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.RecordRequest(r.Method, route, rec.status, time.Since(start))
	})
}
