// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/clipmark/clipmark/internal/article"
)

// TagRepository implements article.TagRepository using PostgreSQL.
type TagRepository struct {
	db DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByName retrieves a tag by its exact name.
func (r *TagRepository) FindByName(ctx context.Context, name article.TagName) (*article.Tag, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at
		FROM tags
		WHERE name = $1
	`, name.String())

	tag, err := r.scanTag(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TAG_NOT_FOUND").
			With("name", name.String()).
			Wrap(article.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TAG_GET_BY_NAME_FAILED").
			With("operation", "get tag by name").
			With("name", name.String()).
			Wrap(err)
	}
	return tag, nil
}

// Save upserts a tag by ID.
func (r *TagRepository) Save(ctx context.Context, tag *article.Tag) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
	`,
		tag.ID.String(),
		tag.Name.String(),
		tag.CreatedAt,
	)
	if err != nil {
		builder := oops.Code("TAG_SAVE_FAILED").
			With("operation", "upsert tag").
			With("name", tag.Name.String())
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			builder = builder.With("constraint", pgErr.ConstraintName)
		}
		return builder.Wrap(err)
	}
	return nil
}

// List returns all tags ordered by name, each with the number of articles
// carrying it.
func (r *TagRepository) List(ctx context.Context) ([]article.TagWithCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(at.article_id)
		FROM tags t
		LEFT JOIN article_tags at ON at.tag_id = t.id
		GROUP BY t.id, t.name, t.created_at
		ORDER BY t.name ASC
	`)
	if err != nil {
		return nil, oops.Code("TAG_LIST_FAILED").
			With("operation", "list tags").
			Wrap(err)
	}
	defer rows.Close()

	var tags []article.TagWithCount
	for rows.Next() {
		var (
			idStr     string
			name      string
			createdAt time.Time
			count     int64
		)
		if err := rows.Scan(&idStr, &name, &createdAt, &count); err != nil {
			return nil, oops.Code("TAG_SCAN_FAILED").
				With("operation", "scan tag row").
				Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("TAG_INVALID_ID").
				With("id", idStr).
				Wrap(err)
		}
		tags = append(tags, article.TagWithCount{
			Tag: article.Tag{
				ID:        id,
				Name:      article.TagName(name),
				CreatedAt: createdAt,
			},
			ArticleCount: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TAG_LIST_FAILED").
			With("operation", "iterate tag rows").
			Wrap(err)
	}
	return tags, nil
}

// Delete removes a tag by ID; article links go with it via the schema's
// cascading delete.
func (r *TagRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("TAG_DELETE_FAILED").
			With("operation", "delete tag").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TAG_NOT_FOUND").
			With("id", id.String()).
			Wrap(article.ErrNotFound)
	}
	return nil
}

// scanTag scans a single row into a Tag.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *TagRepository) scanTag(row pgx.Row) (*article.Tag, error) {
	var (
		idStr     string
		name      string
		createdAt time.Time
	)

	err := row.Scan(&idStr, &name, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TAG_SCAN_FAILED").
			With("operation", "scan tag").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TAG_INVALID_ID").
			With("operation", "parse tag id").
			With("id", idStr).
			Wrap(err)
	}

	return &article.Tag{
		ID:        id,
		Name:      article.TagName(name),
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ article.TagRepository = (*TagRepository)(nil)
