package storage

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/saffan19/MindScroll/internal/domain"
)

func TestArticleConflictClauses(t *testing.T) {
	t.Parallel()

	ignore := articleConflictClause(ModeIgnore)
	if ignore != "ON CONFLICT (guid) DO NOTHING" {
		t.Fatalf("unexpected ignore clause: %s", ignore)
	}

	upsert := articleConflictClause(ModeUpsert)
	if !strings.Contains(upsert, "ON CONFLICT (guid) DO UPDATE SET") {
		t.Fatalf("upsert clause must update in place: %s", upsert)
	}
	if !strings.Contains(upsert, "likes = COALESCE(articles.likes, EXCLUDED.likes)") {
		t.Fatalf("upsert must preserve stored likes: %s", upsert)
	}
	if !strings.Contains(upsert, "views = COALESCE(articles.views, EXCLUDED.views)") {
		t.Fatalf("upsert must preserve stored views: %s", upsert)
	}
	if !strings.Contains(upsert, "content = EXCLUDED.content") {
		t.Fatalf("upsert must rewrite content: %s", upsert)
	}
}

func TestLLMConflictClauses(t *testing.T) {
	t.Parallel()

	if c := llmConflictClause(ModeIgnore); c != "ON CONFLICT (article_guid) DO NOTHING" {
		t.Fatalf("unexpected ignore clause: %s", c)
	}
	if c := llmConflictClause(ModeUpsert); !strings.Contains(c, "DO UPDATE SET title = EXCLUDED.title") {
		t.Fatalf("unexpected upsert clause: %s", c)
	}
}

func TestArticleInsertSQLShape(t *testing.T) {
	t.Parallel()

	article := sampleArticle("A")
	article.PublishedAt = time.Date(2025, time.August, 14, 20, 38, 20, 0, time.UTC)

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := builder.
		Insert("articles").
		Columns("guid", "title", "link", "published", "summary", "description",
			"image_url", "author", "source", "content", "likes", "views",
			"rating", "difficulty").
		Values(article.GUID, article.Title, article.Link, publishedValue(article),
			article.Summary, article.Description, nullable(article.ImageURL),
			article.Author, article.Source, article.Content, article.Likes,
			article.Views, string(article.Enriched.Rating), string(article.Enriched.Difficulty)).
		Suffix(articleConflictClause(ModeIgnore)).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}

	if !strings.HasPrefix(query, "INSERT INTO articles") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.Contains(query, "$14") || strings.Contains(query, "$15") {
		t.Fatalf("expected exactly 14 placeholders: %s", query)
	}
	if !strings.HasSuffix(query, "ON CONFLICT (guid) DO NOTHING") {
		t.Fatalf("conflict clause missing: %s", query)
	}
	if len(args) != 14 {
		t.Fatalf("expected 14 args, got %d", len(args))
	}
	if args[0] != "A" {
		t.Fatalf("guid must be the first argument, got %v", args[0])
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if v := nullable(""); v != nil {
		t.Fatalf("empty string must map to NULL, got %v", v)
	}
	if v := nullable("x"); v != "x" {
		t.Fatalf("non-empty string must pass through, got %v", v)
	}

	var article domain.Article
	if v := publishedValue(article); v != nil {
		t.Fatalf("zero time must map to NULL, got %v", v)
	}
	article.PublishedAt = time.Now()
	if v := publishedValue(article); v == nil {
		t.Fatal("set time must not map to NULL")
	}
}
