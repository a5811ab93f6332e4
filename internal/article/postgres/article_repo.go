// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/clipmark/clipmark/internal/article"
)

// ArticleRepository implements article.ArticleRepository using PostgreSQL.
type ArticleRepository struct {
	db DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = `id, url, title, description, source, og_image_url, memo, is_read, created_at, updated_at`

// FindByID retrieves an article with its tags.
func (r *ArticleRepository) FindByID(ctx context.Context, id ulid.ULID) (*article.Article, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE id = $1
	`, id.String())

	a, err := r.scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ARTICLE_NOT_FOUND").
			With("id", id.String()).
			Wrap(article.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ARTICLE_GET_BY_ID_FAILED").
			With("operation", "get article by id").
			With("id", id.String()).
			Wrap(err)
	}

	tags, err := r.loadTags(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Tags = tags
	return a, nil
}

// FindByURL retrieves an article by its exact URL.
func (r *ArticleRepository) FindByURL(ctx context.Context, url article.URL) (*article.Article, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE url = $1
	`, url.String())

	a, err := r.scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ARTICLE_NOT_FOUND").
			With("url", url.String()).
			Wrap(article.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ARTICLE_GET_BY_URL_FAILED").
			With("operation", "get article by url").
			Wrap(err)
	}

	tags, err := r.loadTags(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Tags = tags
	return a, nil
}

// Save upserts an article and replaces its tag links in one transaction.
// Tag names not yet present in the tags table are created on the fly.
func (r *ArticleRepository) Save(ctx context.Context, a *article.Article) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("ARTICLE_SAVE_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO articles (id, url, title, description, source, og_image_url, memo, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			source = EXCLUDED.source,
			og_image_url = EXCLUDED.og_image_url,
			memo = EXCLUDED.memo,
			is_read = EXCLUDED.is_read,
			updated_at = EXCLUDED.updated_at
	`,
		a.ID.String(),
		a.URL.String(),
		a.Title,
		a.Description,
		string(a.Source),
		a.OGImageURL,
		a.Memo,
		a.IsRead,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ARTICLE_SAVE_FAILED").
			With("operation", "upsert article").
			With("url", a.URL.String()).
			Wrap(err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, a.ID.String())
	if err != nil {
		return oops.Code("ARTICLE_SAVE_FAILED").
			With("operation", "clear tag links").
			Wrap(err)
	}

	for _, name := range a.Tags {
		_, err = tx.Exec(ctx, `
			INSERT INTO tags (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, ulid.Make().String(), name.String(), time.Now())
		if err != nil {
			return oops.Code("ARTICLE_SAVE_FAILED").
				With("operation", "ensure tag").
				With("tag", name.String()).
				Wrap(err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO article_tags (article_id, tag_id)
			SELECT $1, id FROM tags WHERE name = $2
		`, a.ID.String(), name.String())
		if err != nil {
			return oops.Code("ARTICLE_SAVE_FAILED").
				With("operation", "link tag").
				With("tag", name.String()).
				Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("ARTICLE_SAVE_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}
	return nil
}

// Delete removes an article by ID.
func (r *ArticleRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("ARTICLE_DELETE_FAILED").
			With("operation", "delete article").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ARTICLE_NOT_FOUND").
			With("id", id.String()).
			Wrap(article.ErrNotFound)
	}
	return nil
}

// List returns one page of articles, newest first. It fetches one row past
// the limit to decide whether another page exists.
func (r *ArticleRepository) List(ctx context.Context, params article.ListParams) (*article.ListResult, error) {
	query, args := buildListQuery(params)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("ARTICLE_LIST_FAILED").
			With("operation", "list articles").
			Wrap(err)
	}
	defer rows.Close()

	items := make([]article.ListItem, 0, params.Limit+1)
	for rows.Next() {
		var (
			idStr       string
			rawURL      string
			title       string
			description *string
			source      string
			ogImageURL  *string
			isRead      bool
			createdAt   time.Time
		)
		if err := rows.Scan(&idStr, &rawURL, &title, &description, &source, &ogImageURL, &isRead, &createdAt); err != nil {
			return nil, oops.Code("ARTICLE_SCAN_FAILED").
				With("operation", "scan article row").
				Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("ARTICLE_INVALID_ID").
				With("id", idStr).
				Wrap(err)
		}
		items = append(items, article.ListItem{
			ID:          id,
			URL:         article.URL(rawURL),
			Title:       title,
			Description: description,
			Source:      article.Source(source),
			OGImageURL:  ogImageURL,
			IsRead:      isRead,
			CreatedAt:   createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ARTICLE_LIST_FAILED").
			With("operation", "iterate article rows").
			Wrap(err)
	}

	result := &article.ListResult{Articles: items}
	if len(items) > params.Limit {
		result.Articles = items[:params.Limit]
		last := result.Articles[params.Limit-1].ID
		result.NextCursor = &last
	}
	return result, nil
}

// buildListQuery assembles the filtered listing statement. IDs are ULIDs,
// so ordering by id descending is ordering by creation time, newest first,
// and the cursor is a plain comparison on the same column.
func buildListQuery(params article.ListParams) (string, []any) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)

	sb.WriteString(`SELECT a.id, a.url, a.title, a.description, a.source, a.og_image_url, a.is_read, a.created_at FROM articles a`)

	if params.Tag != nil {
		sb.WriteString(` JOIN article_tags at ON at.article_id = a.id JOIN tags t ON t.id = at.tag_id`)
		args = append(args, params.Tag.String())
		conds = append(conds, fmt.Sprintf("t.name = $%d", len(args)))
	}
	if params.Source != nil {
		args = append(args, string(*params.Source))
		conds = append(conds, fmt.Sprintf("a.source = $%d", len(args)))
	}
	if params.IsRead != nil {
		args = append(args, *params.IsRead)
		conds = append(conds, fmt.Sprintf("a.is_read = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		conds = append(conds, fmt.Sprintf("(a.title ILIKE $%d OR a.memo ILIKE $%d)", len(args), len(args)))
	}
	if params.Cursor != nil {
		args = append(args, params.Cursor.String())
		conds = append(conds, fmt.Sprintf("a.id < $%d", len(args)))
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	args = append(args, params.Limit+1)
	sb.WriteString(fmt.Sprintf(" ORDER BY a.id DESC LIMIT $%d", len(args)))

	return sb.String(), args
}

// loadTags returns the tag names linked to an article, ordered by name.
func (r *ArticleRepository) loadTags(ctx context.Context, articleID ulid.ULID) ([]article.TagName, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.name
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name ASC
	`, articleID.String())
	if err != nil {
		return nil, oops.Code("ARTICLE_TAGS_FAILED").
			With("operation", "load article tags").
			With("article_id", articleID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var tags []article.TagName
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.Code("ARTICLE_TAGS_FAILED").
				With("operation", "scan tag name").
				Wrap(err)
		}
		tags = append(tags, article.TagName(name))
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ARTICLE_TAGS_FAILED").
			With("operation", "iterate tag rows").
			Wrap(err)
	}
	return tags, nil
}

// scanArticle scans a single row into an Article, tags excluded.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *ArticleRepository) scanArticle(row pgx.Row) (*article.Article, error) {
	var (
		idStr       string
		rawURL      string
		title       string
		description *string
		source      string
		ogImageURL  *string
		memo        *string
		isRead      bool
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&idStr, &rawURL, &title, &description, &source, &ogImageURL, &memo, &isRead, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ARTICLE_SCAN_FAILED").
			With("operation", "scan article").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ARTICLE_INVALID_ID").
			With("operation", "parse article id").
			With("id", idStr).
			Wrap(err)
	}

	return &article.Article{
		ID:          id,
		URL:         article.URL(rawURL),
		Title:       title,
		Description: description,
		Source:      article.Source(source),
		OGImageURL:  ogImageURL,
		Memo:        memo,
		IsRead:      isRead,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// Compile-time interface check.
var _ article.ArticleRepository = (*ArticleRepository)(nil)
