// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/clipmark/clipmark/internal/article"
	"github.com/clipmark/clipmark/internal/auth"
	"github.com/clipmark/clipmark/internal/observability"
)

// Handler serves the Clipmark JSON API.
type Handler struct {
	auth          *auth.Service
	clips         *article.Service
	github        *GitHubFlow
	metrics       *observability.Metrics
	logger        *slog.Logger
	secureCookies bool
}

// Options configures a Handler.
type Options struct {
	Auth          *auth.Service
	Clips         *article.Service
	GitHub        *GitHubFlow // nil disables the OAuth routes
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	SecureCookies bool
}

// NewHandler creates a Handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if opts.Clips == nil {
		return nil, oops.Errorf("clip service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:          opts.Auth,
		clips:         opts.Clips,
		github:        opts.GitHub,
		metrics:       opts.Metrics,
		logger:        logger,
		secureCookies: opts.SecureCookies,
	}, nil
}

// Router builds the chi router with all API routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestMetrics)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/status", h.handleSetupStatus)
			r.Post("/setup", h.handleSetup)
			r.Post("/login", h.handleLogin)
			r.Post("/logout", h.handleLogout)
			r.Get("/me", h.handleMe)
			if h.github != nil {
				r.Get("/github", h.handleGitHubBegin)
				r.Get("/github/callback", h.handleGitHubCallback)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", h.handleListArticles)
				r.Post("/", h.handleClip)
				r.Get("/{id}", h.handleGetArticle)
				r.Patch("/{id}", h.handleUpdateArticle)
				r.Delete("/{id}", h.handleDeleteArticle)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.handleListTags)
				r.Post("/", h.handleCreateTag)
				r.Delete("/{id}", h.handleDeleteTag)
			})
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
