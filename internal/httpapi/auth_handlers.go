// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/clipmark/clipmark/internal/auth"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusUserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	GitHubLinked bool   `json:"githubLinked"`
}

type authStatusResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *statusUserResponse `json:"user"`
	NeedsSetup    bool                `json:"needsSetup"`
}

type setupStatusResponse struct {
	NeedsSetup bool `json:"needsSetup"`
}

func toAuthStatusResponse(status *auth.Status) authStatusResponse {
	resp := authStatusResponse{
		Authenticated: status.Authenticated,
		NeedsSetup:    status.NeedsSetup,
	}
	if status.User != nil {
		resp.User = &statusUserResponse{
			ID:           status.User.ID,
			Username:     status.User.Username,
			GitHubLinked: status.User.GitHubLinked,
		}
	}
	return resp
}

func authenticatedResponse(creds *auth.Credentials) authStatusResponse {
	return authStatusResponse{
		Authenticated: true,
		User: &statusUserResponse{
			ID:           creds.User.ID.String(),
			Username:     creds.User.Username,
			GitHubLinked: creds.User.GitHubLinked(),
		},
		NeedsSetup: false,
	}
}

// handleSetupStatus reports whether first-run setup is still pending.
func (h *Handler) handleSetupStatus(w http.ResponseWriter, r *http.Request) {
	needsSetup, err := h.auth.SetupStatus(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, setupStatusResponse{NeedsSetup: needsSetup})
}

// handleSetup creates the single account and logs it in.
func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   auth.CodeInvalidCredentials,
			Message: "invalid request body",
		})
		return
	}

	creds, err := h.auth.SetupUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, sessionCookie(creds.Session.ID.String(), creds.Session.ExpiresAt, h.secureCookies))
	writeJSON(w, http.StatusOK, authenticatedResponse(creds))
}

// handleLogin authenticates with username/password.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   auth.CodeInvalidCredentials,
			Message: "invalid request body",
		})
		return
	}

	creds, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin("password", false)
		}
		writeError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordLogin("password", true)
	}

	http.SetCookie(w, sessionCookie(creds.Session.ID.String(), creds.Session.ExpiresAt, h.secureCookies))
	writeJSON(w, http.StatusOK, authenticatedResponse(creds))
}

// handleLogout deletes the session and clears the cookie. A missing or
// malformed cookie still succeeds; logout is idempotent from the client's
// point of view.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if rawID := sessionIDFromRequest(r); rawID != "" {
		if err := h.auth.Logout(r.Context(), rawID); err != nil {
			// Malformed IDs and storage hiccups both end the same way for
			// the client: cookie gone.
			h.logger.DebugContext(r.Context(), "logout cleanup failed", "error", err)
		}
	}

	http.SetCookie(w, expiredSessionCookie(h.secureCookies))
	w.WriteHeader(http.StatusNoContent)
}

// handleMe resolves the current session into an auth status. Never 401s;
// an unauthenticated visitor is a valid answer.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	status, err := h.auth.AuthStatus(r.Context(), sessionIDFromRequest(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthStatusResponse(status))
}
