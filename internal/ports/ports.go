package ports

import (
	"context"

	"github.com/saffan19/MindScroll/internal/domain"
)

// FeedSource yields raw entries for a single feed URL.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]domain.Entry, error)
}

// ContentExtractor returns best-effort full article text for a link.
// Total failure yields an empty string, never an error.
type ContentExtractor interface {
	Extract(ctx context.Context, link string) string
}

// Classifier scores a query string against a fixed label taxonomy.
type Classifier interface {
	Classify(ctx context.Context, query string, labels []string) ([]domain.CategoryScore, error)
}

// Enricher produces a voice-ready rewrite of an article. A nil error with
// empty content signals a per-article enrichment failure; rotation-related
// errors (key exhaustion) come back as errors.
type Enricher interface {
	Enrich(ctx context.Context, article domain.Article) (domain.EnrichedContent, error)
}

// ArticleSink persists accepted batches and seeds the dedup ledger.
type ArticleSink interface {
	ExistingGUIDs(ctx context.Context) (map[string]struct{}, error)
	Persist(ctx context.Context, batch []domain.Article) (PersistResult, error)
}

// PersistResult summarizes a batch write. FailedGUIDs lists articles that
// could not be stored; the rest of the batch is still attempted.
type PersistResult struct {
	Persisted   int
	FailedGUIDs []string
}

// Notifier publishes the end-of-run summary to an external channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}
