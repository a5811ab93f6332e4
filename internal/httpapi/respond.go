// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/clipmark/clipmark/internal/article"
	"github.com/clipmark/clipmark/internal/auth"
	"github.com/clipmark/clipmark/pkg/errutil"
)

// errorResponse is the wire shape of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusForCode maps a domain error code to an HTTP status. Unknown codes
// are treated as internal errors so new codes fail loudly instead of
// leaking as 200s.
func statusForCode(code string) int {
	switch code {
	case auth.CodeInvalidCredentials, auth.CodeSessionNotFound, auth.CodeOAuthError:
		return http.StatusUnauthorized
	case auth.CodeSetupCompleted, article.CodeArticleExists, article.CodeTagExists:
		return http.StatusConflict
	case article.CodeArticleNotFound, article.CodeTagNotFound:
		return http.StatusNotFound
	case article.CodeInvalidURL, article.CodeInvalidTagName:
		return http.StatusBadRequest
	case article.CodeMetadataFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have disconnected; nothing useful to do
	json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status and writes the error payload. Internal
// errors get a generic message so storage details never reach clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	status := statusForCode(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
		code = auth.CodeStorageError
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
