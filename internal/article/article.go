// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package article

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Article is a clipped page with its scraped metadata and reading state.
type Article struct {
	ID          ulid.ULID
	URL         URL
	Title       string
	Description *string
	Source      Source
	OGImageURL  *string
	Memo        *string
	IsRead      bool
	Tags        []TagName
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Metadata is what the fetcher scrapes from a page.
type Metadata struct {
	Title       string
	Description *string
	OGImageURL  *string
}

// NewArticle creates a validated, unread Article with a fresh ID.
func NewArticle(url URL, meta Metadata, tags []TagName, memo *string) (*Article, error) {
	if url == "" {
		return nil, oops.Code(CodeInvalidURL).Errorf("url is required")
	}
	title := meta.Title
	if title == "" {
		title = "Untitled"
	}

	now := time.Now()
	return &Article{
		ID:          ulid.Make(),
		URL:         url,
		Title:       title,
		Description: meta.Description,
		Source:      SourceFromURL(url.String()),
		OGImageURL:  meta.OGImageURL,
		Memo:        memo,
		IsRead:      false,
		Tags:        append([]TagName(nil), tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkRead returns a copy flagged as read.
func (a Article) MarkRead() Article {
	a.IsRead = true
	a.UpdatedAt = time.Now()
	return a
}

// MarkUnread returns a copy flagged as unread.
func (a Article) MarkUnread() Article {
	a.IsRead = false
	a.UpdatedAt = time.Now()
	return a
}

// WithMemo returns a copy with the memo replaced. A nil memo clears it.
func (a Article) WithMemo(memo *string) Article {
	a.Memo = memo
	a.UpdatedAt = time.Now()
	return a
}

// WithTags returns a copy with the tag set replaced.
func (a Article) WithTags(tags []TagName) Article {
	a.Tags = append([]TagName(nil), tags...)
	a.UpdatedAt = time.Now()
	return a
}

// ListParams filters and paginates a listing. Cursor is the ID of the last
// article of the previous page; pages run newest-first by creation time.
type ListParams struct {
	Source *Source
	Tag    *TagName
	IsRead *bool
	Search string
	Cursor *ulid.ULID
	Limit  int
}

// DefaultListLimit applies when ListParams.Limit is zero or negative.
const DefaultListLimit = 20

// ListItem is the slim listing shape; memo and tags stay on the detail view.
type ListItem struct {
	ID          ulid.ULID
	URL         URL
	Title       string
	Description *string
	Source      Source
	OGImageURL  *string
	IsRead      bool
	CreatedAt   time.Time
}

// ListResult is one page of articles. NextCursor is nil on the last page.
type ListResult struct {
	Articles   []ListItem
	NextCursor *ulid.ULID
}

// ArticleRepository manages article persistence, including the tag links.
type ArticleRepository interface {
	// FindByID retrieves an article with its tags.
	FindByID(ctx context.Context, id ulid.ULID) (*Article, error)

	// FindByURL retrieves an article by its exact URL.
	FindByURL(ctx context.Context, url URL) (*Article, error)

	// Save upserts an article and replaces its tag links. Unknown tag
	// names are created on the fly.
	Save(ctx context.Context, article *Article) error

	// Delete removes an article by ID. Returns an error wrapping
	// ErrNotFound if the article does not exist.
	Delete(ctx context.Context, id ulid.ULID) error

	// List returns one page of articles matching the params.
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// MetadataFetcher scrapes title/description/og:image from a page.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url URL) (*Metadata, error)
}
