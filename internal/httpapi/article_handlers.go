// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/clipmark/clipmark/internal/article"
)

type clipRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
	Memo *string  `json:"memo"`
}

// updateArticleRequest distinguishes absent fields from explicit nulls:
// memo and tags use RawMessage so "not sent" and "clear it" stay apart.
type updateArticleRequest struct {
	IsRead *bool           `json:"isRead"`
	Memo   json.RawMessage `json:"memo"`
	Tags   json.RawMessage `json:"tags"`
}

type createTagRequest struct {
	Name string `json:"name"`
}

type articleResponse struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Source      string   `json:"source"`
	OGImageURL  *string  `json:"ogImageUrl"`
	Memo        *string  `json:"memo"`
	IsRead      bool     `json:"isRead"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type articleListItemResponse struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Source      string  `json:"source"`
	OGImageURL  *string `json:"ogImageUrl"`
	IsRead      bool    `json:"isRead"`
	CreatedAt   string  `json:"createdAt"`
}

type articleListResponse struct {
	Articles   []articleListItemResponse `json:"articles"`
	NextCursor *string                   `json:"nextCursor"`
}

type tagResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ArticleCount int64  `json:"articleCount"`
}

func toArticleResponse(a *article.Article) articleResponse {
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, t.String())
	}
	return articleResponse{
		ID:          a.ID.String(),
		URL:         a.URL.String(),
		Title:       a.Title,
		Description: a.Description,
		Source:      string(a.Source),
		OGImageURL:  a.OGImageURL,
		Memo:        a.Memo,
		IsRead:      a.IsRead,
		Tags:        tags,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}

// handleClip saves a new article.
func (h *Handler) handleClip(w http.ResponseWriter, r *http.Request) {
	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   article.CodeInvalidURL,
			Message: "invalid request body",
		})
		return
	}

	a, err := h.clips.Clip(r.Context(), req.URL, req.Tags, req.Memo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordClip(string(a.Source))
	}

	writeJSON(w, http.StatusCreated, toArticleResponse(a))
}

// handleGetArticle returns one article with its tags.
func (h *Handler) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.clips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(a))
}

// handleListArticles returns a filtered page of articles.
func (h *Handler) handleListArticles(w http.ResponseWriter, r *http.Request) {
	params := article.ListParams{Search: r.URL.Query().Get("q")}

	if raw := r.URL.Query().Get("source"); raw != "" {
		source := article.Source(raw)
		params.Source = &source
	}
	if raw := r.URL.Query().Get("tag"); raw != "" {
		name, err := article.ParseTagName(raw)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		params.Tag = &name
	}
	if raw := r.URL.Query().Get("isRead"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   article.CodeInvalidURL,
				Message: "isRead must be true or false",
			})
			return
		}
		params.IsRead = &isRead
	}
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor, err := ulid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   article.CodeInvalidURL,
				Message: "cursor is not a valid id",
			})
			return
		}
		params.Cursor = &cursor
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   article.CodeInvalidURL,
				Message: "limit must be between 1 and 100",
			})
			return
		}
		params.Limit = limit
	}

	result, err := h.clips.List(r.Context(), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := articleListResponse{Articles: make([]articleListItemResponse, 0, len(result.Articles))}
	for _, item := range result.Articles {
		resp.Articles = append(resp.Articles, articleListItemResponse{
			ID:          item.ID.String(),
			URL:         item.URL.String(),
			Title:       item.Title,
			Description: item.Description,
			Source:      string(item.Source),
			OGImageURL:  item.OGImageURL,
			IsRead:      item.IsRead,
			CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		})
	}
	if result.NextCursor != nil {
		cursor := result.NextCursor.String()
		resp.NextCursor = &cursor
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateArticle applies a partial update.
func (h *Handler) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   article.CodeInvalidURL,
			Message: "invalid request body",
		})
		return
	}

	params := article.UpdateParams{IsRead: req.IsRead}
	if len(req.Memo) > 0 {
		params.MemoSet = true
		if string(req.Memo) != "null" {
			var memo string
			if err := json.Unmarshal(req.Memo, &memo); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{
					Error:   article.CodeInvalidURL,
					Message: "memo must be a string or null",
				})
				return
			}
			params.Memo = &memo
		}
	}
	if len(req.Tags) > 0 && string(req.Tags) != "null" {
		params.TagsSet = true
		if err := json.Unmarshal(req.Tags, &params.Tags); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   article.CodeInvalidTagName,
				Message: "tags must be an array of strings",
			})
			return
		}
	}

	a, err := h.clips.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(a))
}

// handleDeleteArticle removes an article.
func (h *Handler) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.clips.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListTags returns all tags with usage counts.
func (h *Handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.clips.ListTags(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, tagResponse{
			ID:           t.ID.String(),
			Name:         t.Name.String(),
			ArticleCount: t.ArticleCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateTag creates a tag.
func (h *Handler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   article.CodeInvalidTagName,
			Message: "invalid request body",
		})
		return
	}

	tag, err := h.clips.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tagResponse{
		ID:   tag.ID.String(),
		Name: tag.Name.String(),
	})
}

// handleDeleteTag removes a tag.
func (h *Handler) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.clips.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
