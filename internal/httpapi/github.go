// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/clipmark/clipmark/internal/auth"
)

// githubAPIURL is the endpoint the access token is resolved against.
// Overridable for tests.
const githubAPIURL = "https://api.github.com/user"

// GitHubFlow implements the two OAuth legs against GitHub.
type GitHubFlow struct {
	oauth   *oauth2.Config
	userURL string
	// redirectTo is where the browser lands after a successful login.
	redirectTo string
}

// GitHubFlowConfig configures NewGitHubFlow.
type GitHubFlowConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// SuccessRedirect defaults to "/".
	SuccessRedirect string
}

// NewGitHubFlow creates a GitHubFlow against the real GitHub endpoints.
func NewGitHubFlow(cfg GitHubFlowConfig) (*GitHubFlow, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, oops.Errorf("github client id and secret are required")
	}
	redirectTo := cfg.SuccessRedirect
	if redirectTo == "" {
		redirectTo = "/"
	}
	return &GitHubFlow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
		userURL:    githubAPIURL,
		redirectTo: redirectTo,
	}, nil
}

// githubUser is the subset of the GitHub user payload Clipmark reads.
type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// fetchUser exchanges the authorization code and resolves the GitHub
// identity behind it.
func (g *GitHubFlow) fetchUser(ctx context.Context, code string) (*githubUser, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, oops.Code(auth.CodeOAuthError).
			With("operation", "exchange authorization code").
			Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return nil, oops.Code(auth.CodeOAuthError).Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("User-Agent", "clipmark")

	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, oops.Code(auth.CodeOAuthError).
			With("operation", "fetch github user").
			Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.Code(auth.CodeOAuthError).
			With("status", resp.StatusCode).
			Errorf("github user endpoint returned status %d", resp.StatusCode)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, oops.Code(auth.CodeOAuthError).
			With("operation", "decode github user").
			Wrap(err)
	}
	if user.ID == 0 {
		return nil, oops.Code(auth.CodeOAuthError).Errorf("github user payload has no id")
	}
	return &user, nil
}

// newState produces the CSRF token tying the two legs together.
func newState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code(auth.CodeOAuthError).Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// handleGitHubBegin redirects the browser to GitHub's consent page with a
// fresh state value pinned in a short-lived cookie.
func (h *Handler) handleGitHubBegin(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, stateCookie(state, h.secureCookies))
	http.Redirect(w, r, h.github.oauth.AuthCodeURL(state), http.StatusFound)
}

// handleGitHubCallback finishes the flow: state check, code exchange, user
// fetch, then the domain's identity resolution.
func (h *Handler) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	saved, err := r.Cookie(stateCookieName)
	http.SetCookie(w, expiredStateCookie(h.secureCookies))
	if err != nil || state == "" || saved.Value != state {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   auth.CodeOAuthError,
			Message: "invalid state parameter",
		})
		return
	}

	user, err := h.github.fetchUser(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin("github", false)
		}
		writeError(w, h.logger, err)
		return
	}

	creds, err := h.auth.GitHubCallback(r.Context(), fmt.Sprintf("%d", user.ID), user.Login)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin("github", false)
		}
		writeError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordLogin("github", true)
	}

	http.SetCookie(w, sessionCookie(creds.Session.ID.String(), creds.Session.ExpiresAt, h.secureCookies))
	http.Redirect(w, r, h.github.redirectTo, http.StatusFound)
}
