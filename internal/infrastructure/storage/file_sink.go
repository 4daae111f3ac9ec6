package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/saffan19/MindScroll/internal/domain"
	"github.com/saffan19/MindScroll/internal/ports"
)

// FileSink is the legacy flat-file variant of the article sink: the whole
// collection lives in one JSON document and each run rewrites it.
type FileSink struct {
	path   string
	logger *slog.Logger
}

var _ ports.ArticleSink = (*FileSink)(nil)

// NewFileSink points the sink at its backing JSON file.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	return &FileSink{path: path, logger: logger}
}

// ExistingGUIDs loads the guids already present in the backing file.
func (s *FileSink) ExistingGUIDs(ctx context.Context) (map[string]struct{}, error) {
	existing, err := s.load()
	if err != nil {
		return nil, err
	}

	guids := make(map[string]struct{}, len(existing))
	for _, article := range existing {
		guids[article.GUID] = struct{}{}
	}

	return guids, nil
}

// Persist appends the batch to the stored collection, skipping guids that
// are already present, and rewrites the file.
func (s *FileSink) Persist(ctx context.Context, batch []domain.Article) (ports.PersistResult, error) {
	existing, err := s.load()
	if err != nil {
		return ports.PersistResult{}, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, article := range existing {
		seen[article.GUID] = struct{}{}
	}

	var result ports.PersistResult
	for _, article := range batch {
		if article.GUID == "" {
			result.FailedGUIDs = append(result.FailedGUIDs, article.GUID)
			continue
		}
		if _, dup := seen[article.GUID]; dup {
			continue
		}
		seen[article.GUID] = struct{}{}
		existing = append(existing, article)
		result.Persisted++
	}

	if err := s.write(existing); err != nil {
		return ports.PersistResult{}, err
	}

	return result, nil
}

func (s *FileSink) load() ([]domain.Article, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var articles []domain.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return articles, nil
}

func (s *FileSink) write(articles []domain.Article) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	raw, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}

	return nil
}
