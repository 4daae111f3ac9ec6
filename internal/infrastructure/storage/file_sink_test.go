package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/saffan19/MindScroll/internal/domain"
)

func sampleArticle(guid string) domain.Article {
	return domain.Article{
		GUID:    guid,
		Title:   "Title " + guid,
		Link:    "https://example.org/" + guid,
		Content: "content",
		Enriched: domain.EnrichedContent{
			Title:      "Rewritten",
			Content:    "Rewritten body",
			Tags:       []string{"a", "b", "c"},
			Difficulty: domain.DifficultyBeginner,
			Rating:     domain.RatingU,
		},
	}
}

func TestFileSinkRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "content", "content.json")
	sink := NewFileSink(path, nil)

	// Fresh file: no known guids.
	guids, err := sink.ExistingGUIDs(ctx)
	if err != nil {
		t.Fatalf("ExistingGUIDs: %v", err)
	}
	if len(guids) != 0 {
		t.Fatalf("expected empty ledger, got %d guids", len(guids))
	}

	result, err := sink.Persist(ctx, []domain.Article{sampleArticle("A"), sampleArticle("B")})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if result.Persisted != 2 {
		t.Fatalf("expected 2 persisted, got %d", result.Persisted)
	}

	guids, err = sink.ExistingGUIDs(ctx)
	if err != nil {
		t.Fatalf("ExistingGUIDs after persist: %v", err)
	}
	if _, ok := guids["A"]; !ok {
		t.Fatal("guid A missing from stored collection")
	}
	if _, ok := guids["B"]; !ok {
		t.Fatal("guid B missing from stored collection")
	}
}

func TestFileSinkIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := NewFileSink(filepath.Join(t.TempDir(), "content.json"), nil)

	first, err := sink.Persist(ctx, []domain.Article{sampleArticle("A")})
	if err != nil {
		t.Fatalf("first Persist: %v", err)
	}
	second, err := sink.Persist(ctx, []domain.Article{sampleArticle("A")})
	if err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	if first.Persisted != 1 || second.Persisted != 0 {
		t.Fatalf("re-running must not duplicate: first=%d second=%d", first.Persisted, second.Persisted)
	}

	guids, err := sink.ExistingGUIDs(ctx)
	if err != nil {
		t.Fatalf("ExistingGUIDs: %v", err)
	}
	if len(guids) != 1 {
		t.Fatalf("expected exactly one stored article, got %d", len(guids))
	}
}

func TestFileSinkRejectsMissingGUID(t *testing.T) {
	t.Parallel()

	sink := NewFileSink(filepath.Join(t.TempDir(), "content.json"), nil)
	article := sampleArticle("")

	result, err := sink.Persist(context.Background(), []domain.Article{article, sampleArticle("ok")})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if result.Persisted != 1 || len(result.FailedGUIDs) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
