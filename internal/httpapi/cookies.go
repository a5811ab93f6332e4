// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "session_id"
	stateCookieName   = "oauth_state"

	// stateCookieTTL bounds the window between starting the OAuth flow and
	// returning from GitHub.
	stateCookieTTL = 10 * time.Minute
)

// sessionCookie builds the auth cookie. Expires matches the session's
// server-side expiry so the browser drops both together.
func sessionCookie(sessionID string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	}
}

// expiredSessionCookie clears the auth cookie.
func expiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// stateCookie carries the OAuth CSRF token between the two legs.
func stateCookie(state string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateCookieTTL.Seconds()),
	}
}

// expiredStateCookie clears the OAuth state cookie.
func expiredStateCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// sessionIDFromRequest returns the raw session cookie value, or "" when the
// cookie is absent.
func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
