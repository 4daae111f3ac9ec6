package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/saffan19/MindScroll/internal/domain"
	"github.com/saffan19/MindScroll/internal/ports"
)

// Mode selects how the parent articles row resolves a guid conflict.
type Mode int

const (
	// ModeIgnore is append-only ingestion: conflicting guids are no-ops.
	ModeIgnore Mode = iota
	// ModeUpsert is re-sync: content fields are rewritten in place while
	// the likes/views counters already stored are left untouched.
	ModeUpsert
)

// PostgresSink persists accepted batches into the relational store.
type PostgresSink struct {
	db      *sql.DB
	mode    Mode
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ArticleSink = (*PostgresSink)(nil)

// NewPostgresSink wires a sql.DB connection. The connection is single-owner
// for the duration of a batch write.
func NewPostgresSink(db *sql.DB, mode Mode, logger *slog.Logger) *PostgresSink {
	return &PostgresSink{
		db:      db,
		mode:    mode,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// ExistingGUIDs loads every stored guid to seed the dedup ledger.
func (s *PostgresSink) ExistingGUIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guid FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("query existing guids: %w", err)
	}
	defer rows.Close()

	guids := make(map[string]struct{})
	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, fmt.Errorf("scan guid: %w", err)
		}
		guids[guid] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return guids, nil
}

// Persist writes the batch article by article, each inside its own
// transaction so one malformed record cannot take down the rest. It returns
// the number of articles committed and the guids that failed.
func (s *PostgresSink) Persist(ctx context.Context, batch []domain.Article) (ports.PersistResult, error) {
	var result ports.PersistResult
	for _, article := range batch {
		if err := s.persistOne(ctx, article); err != nil {
			result.FailedGUIDs = append(result.FailedGUIDs, article.GUID)
			if s.logger != nil {
				s.logger.Error("persist article failed", "guid", article.GUID, "error", err)
			}
			continue
		}
		result.Persisted++
	}

	return result, nil
}

func (s *PostgresSink) persistOne(ctx context.Context, article domain.Article) error {
	if article.GUID == "" || article.Link == "" {
		return fmt.Errorf("article missing required fields (guid=%q, link=%q)", article.GUID, article.Link)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertArticle(ctx, tx, article); err != nil {
		return err
	}
	if err := s.insertChildren(ctx, tx, article); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *PostgresSink) insertArticle(ctx context.Context, tx *sql.Tx, article domain.Article) error {
	insert := s.builder.
		Insert("articles").
		Columns("guid", "title", "link", "published", "summary", "description",
			"image_url", "author", "source", "content", "likes", "views",
			"rating", "difficulty").
		Values(article.GUID, article.Title, article.Link, publishedValue(article),
			article.Summary, article.Description, nullable(article.ImageURL),
			article.Author, article.Source, article.Content, article.Likes,
			article.Views, string(article.Enriched.Rating), string(article.Enriched.Difficulty)).
		Suffix(articleConflictClause(s.mode))

	if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}

	return nil
}

// articleConflictClause resolves guid conflicts per mode. Upsert rewrites
// content fields but never touches the stored counters.
func articleConflictClause(mode Mode) string {
	if mode == ModeIgnore {
		return "ON CONFLICT (guid) DO NOTHING"
	}
	return `ON CONFLICT (guid) DO UPDATE SET
		title = EXCLUDED.title,
		link = EXCLUDED.link,
		published = EXCLUDED.published,
		summary = EXCLUDED.summary,
		description = EXCLUDED.description,
		image_url = EXCLUDED.image_url,
		author = EXCLUDED.author,
		source = EXCLUDED.source,
		content = EXCLUDED.content,
		rating = EXCLUDED.rating,
		difficulty = EXCLUDED.difficulty,
		likes = COALESCE(articles.likes, EXCLUDED.likes),
		views = COALESCE(articles.views, EXCLUDED.views)`
}

func (s *PostgresSink) insertChildren(ctx context.Context, tx *sql.Tx, article domain.Article) error {
	if len(article.RSSCategories) > 0 {
		insert := s.builder.
			Insert("rss_categories").
			Columns("article_guid", "category").
			Suffix("ON CONFLICT DO NOTHING")
		for _, category := range article.RSSCategories {
			insert = insert.Values(article.GUID, category)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert rss categories: %w", err)
		}
	}

	if len(article.Categories) > 0 {
		insert := s.builder.
			Insert("categories").
			Columns("article_guid", "category", "score").
			Suffix("ON CONFLICT DO NOTHING")
		for _, scored := range article.Categories {
			insert = insert.Values(article.GUID, scored.Category, scored.Score)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert categories: %w", err)
		}
	}

	if len(article.Enriched.Tags) > 0 {
		insert := s.builder.
			Insert("tags").
			Columns("article_guid", "tag").
			Suffix("ON CONFLICT DO NOTHING")
		for _, tag := range article.Enriched.Tags {
			insert = insert.Values(article.GUID, tag)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert tags: %w", err)
		}
	}

	llmInsert := s.builder.
		Insert("llm_content").
		Columns("article_guid", "title", "content").
		Values(article.GUID, article.Enriched.Title, article.Enriched.Content).
		Suffix(llmConflictClause(s.mode))
	if _, err := llmInsert.RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert llm content: %w", err)
	}

	return nil
}

func llmConflictClause(mode Mode) string {
	if mode == ModeIgnore {
		return "ON CONFLICT (article_guid) DO NOTHING"
	}
	return "ON CONFLICT (article_guid) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content"
}

func publishedValue(article domain.Article) any {
	if article.PublishedAt.IsZero() {
		return nil
	}
	return article.PublishedAt
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
