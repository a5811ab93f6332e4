// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package article

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides the clipping commands and queries.
type Service struct {
	articles ArticleRepository
	tags     TagRepository
	fetcher  MetadataFetcher
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(articles ArticleRepository, tags TagRepository, fetcher MetadataFetcher, logger *slog.Logger) (*Service, error) {
	if articles == nil {
		return nil, oops.Errorf("articles repository is required")
	}
	if tags == nil {
		return nil, oops.Errorf("tags repository is required")
	}
	if fetcher == nil {
		return nil, oops.Errorf("metadata fetcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		articles: articles,
		tags:     tags,
		fetcher:  fetcher,
		logger:   logger,
	}, nil
}

// Clip saves a new article: validates the URL, rejects duplicates, scrapes
// metadata, derives the source, and stores the article unread.
func (s *Service) Clip(ctx context.Context, rawURL string, rawTags []string, memo *string) (*Article, error) {
	url, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.articles.FindByURL(ctx, url); err == nil {
		return nil, oops.Code(CodeArticleExists).
			With("url", rawURL).
			Errorf("article already clipped")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code(CodeStorageError).
			With("operation", "find article by url").
			Wrap(err)
	}

	tags, err := ParseTagNames(rawTags)
	if err != nil {
		return nil, err
	}

	meta, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, oops.Code(CodeMetadataFetchFailed).
			With("url", rawURL).
			Wrap(err)
	}

	article, err := NewArticle(url, *meta, tags, memo)
	if err != nil {
		return nil, err
	}
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save article").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "article clipped", "url", rawURL, "source", article.Source)
	return article, nil
}

// Get retrieves an article with its tags.
func (s *Service) Get(ctx context.Context, rawID string) (*Article, error) {
	id, err := parseArticleID(rawID)
	if err != nil {
		return nil, err
	}

	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeArticleNotFound).
				With("id", rawID).
				Errorf("article not found")
		}
		return nil, oops.Code(CodeStorageError).
			With("operation", "find article").
			Wrap(err)
	}
	return article, nil
}

// List returns one page of articles matching the params.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	result, err := s.articles.List(ctx, params)
	if err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "list articles").
			Wrap(err)
	}
	return result, nil
}

// UpdateParams carries the optional changes of an article update. Nil
// fields are left untouched; MemoSet distinguishes "clear the memo" from
// "leave it alone".
type UpdateParams struct {
	IsRead  *bool
	Memo    *string
	MemoSet bool
	Tags    []string
	TagsSet bool
}

// Update applies partial changes to an article and persists the result.
func (s *Service) Update(ctx context.Context, rawID string, params UpdateParams) (*Article, error) {
	current, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if params.MemoSet {
		updated = updated.WithMemo(params.Memo)
	}
	if params.IsRead != nil {
		if *params.IsRead {
			updated = updated.MarkRead()
		} else {
			updated = updated.MarkUnread()
		}
	}
	if params.TagsSet {
		tags, err := ParseTagNames(params.Tags)
		if err != nil {
			return nil, err
		}
		updated = updated.WithTags(tags)
	}

	if err := s.articles.Save(ctx, &updated); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save article").
			Wrap(err)
	}
	return &updated, nil
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseArticleID(rawID)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeArticleNotFound).
				With("id", rawID).
				Errorf("article not found")
		}
		return oops.Code(CodeStorageError).
			With("operation", "delete article").
			Wrap(err)
	}
	return nil
}

// CreateTag creates a tag, rejecting duplicates by name.
func (s *Service) CreateTag(ctx context.Context, rawName string) (*Tag, error) {
	tag, err := NewTag(rawName)
	if err != nil {
		return nil, err
	}

	if _, err := s.tags.FindByName(ctx, tag.Name); err == nil {
		return nil, oops.Code(CodeTagExists).
			With("name", tag.Name.String()).
			Errorf("tag already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code(CodeStorageError).
			With("operation", "find tag by name").
			Wrap(err)
	}

	if err := s.tags.Save(ctx, tag); err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "save tag").
			Wrap(err)
	}
	return tag, nil
}

// ListTags returns all tags ordered by name, with article counts.
func (s *Service) ListTags(ctx context.Context) ([]TagWithCount, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, oops.Code(CodeStorageError).
			With("operation", "list tags").
			Wrap(err)
	}
	return tags, nil
}

// DeleteTag removes a tag; links from articles are dropped by the schema's
// cascading delete.
func (s *Service) DeleteTag(ctx context.Context, rawID string) error {
	id, err := ulid.Parse(rawID)
	if err != nil {
		return oops.Code(CodeTagNotFound).
			With("id", rawID).
			Wrap(err)
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeTagNotFound).
				With("id", rawID).
				Errorf("tag not found")
		}
		return oops.Code(CodeStorageError).
			With("operation", "delete tag").
			Wrap(err)
	}
	return nil
}

func parseArticleID(raw string) (ulid.ULID, error) {
	id, err := ulid.Parse(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeArticleNotFound).
			With("id", raw).
			Wrap(err)
	}
	return id, nil
}
