// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package article

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxTagNameLength bounds a tag name after trimming.
const MaxTagNameLength = 50

// TagName is a validated, trimmed tag label. Construct through ParseTagName.
type TagName string

// ParseTagName validates and normalizes a raw tag name.
func ParseTagName(raw string) (TagName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", oops.Code(CodeInvalidTagName).Errorf("tag name cannot be empty")
	}
	if len(name) > MaxTagNameLength {
		return "", oops.Code(CodeInvalidTagName).
			With("max", MaxTagNameLength).
			Errorf("tag name must be at most %d characters", MaxTagNameLength)
	}
	return TagName(name), nil
}

// ParseTagNames validates a list of raw tag names, failing on the first
// invalid entry.
func ParseTagNames(raw []string) ([]TagName, error) {
	names := make([]TagName, 0, len(raw))
	for _, r := range raw {
		name, err := ParseTagName(r)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (n TagName) String() string { return string(n) }

// Tag is a named label articles can carry.
type Tag struct {
	ID        ulid.ULID
	Name      TagName
	CreatedAt time.Time
}

// NewTag creates a validated Tag with a fresh ID.
func NewTag(rawName string) (*Tag, error) {
	name, err := ParseTagName(rawName)
	if err != nil {
		return nil, err
	}
	return &Tag{
		ID:        ulid.Make(),
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// TagWithCount is a Tag together with the number of articles carrying it.
type TagWithCount struct {
	Tag
	ArticleCount int64
}

// TagRepository manages tag persistence.
type TagRepository interface {
	// FindByName retrieves a tag by its exact name.
	FindByName(ctx context.Context, name TagName) (*Tag, error)

	// Save inserts a new tag.
	Save(ctx context.Context, tag *Tag) error

	// List returns all tags ordered by name, with article counts.
	List(ctx context.Context) ([]TagWithCount, error)

	// Delete removes a tag by ID. Returns an error wrapping ErrNotFound
	// if the tag does not exist.
	Delete(ctx context.Context, id ulid.ULID) error
}
