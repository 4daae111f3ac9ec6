package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saffan19/MindScroll/internal/domain"
	"github.com/saffan19/MindScroll/internal/ports"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sources    []string
	Labels     []string
	Feed       ports.FeedSource
	Extractor  ports.ContentExtractor
	Classifier ports.Classifier
	Enricher   ports.Enricher
	Sink       ports.ArticleSink
	Notifier   ports.Notifier
	Logger     *slog.Logger

	// SkipOnEmptyEnrichment keeps the run going past a failed enrichment
	// instead of treating it as a systemic signal and stopping.
	SkipOnEmptyEnrichment bool
}

// Pipeline implements the ingestion workflow: fetch, filter, extract,
// classify, enrich, accumulate, persist. Entries are processed one at a
// time; external calls are rate-limited and rotation state is serial.
type Pipeline struct {
	deps   PipelineDeps
	ledger map[string]struct{}
}

// Summary reports what one run did, per stage.
type Summary struct {
	Entries         int
	Accepted        int
	Persisted       int
	FailedGUIDs     []string
	Duplicates      int
	MissingFields   int
	ShortContent    int
	ClassifyErrors  int
	EmptyEnrichment int
	Stopped         bool
	Elapsed         time.Duration
}

// String renders the end-of-run report.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ingested %d of %d entries (%d persisted", s.Accepted, s.Entries, s.Persisted)
	if len(s.FailedGUIDs) > 0 {
		fmt.Fprintf(&b, ", %d failed", len(s.FailedGUIDs))
	}
	fmt.Fprintf(&b, ") in %.2fs", s.Elapsed.Seconds())
	fmt.Fprintf(&b, "; rejected: %d duplicate, %d incomplete, %d short, %d unclassified, %d unenriched",
		s.Duplicates, s.MissingFields, s.ShortContent, s.ClassifyErrors, s.EmptyEnrichment)
	if s.Stopped {
		b.WriteString("; run stopped early")
	}
	return b.String()
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes one ingestion batch. The accumulated batch is persisted even
// when the run aborts early (key exhaustion, fail-fast stop); the returned
// error reports the abort cause.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	ledger, err := p.deps.Sink.ExistingGUIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("load dedup ledger: %w", err)
	}
	p.ledger = ledger
	p.info("run starting", "sources", len(p.deps.Sources), "known_guids", len(ledger))

	batch, runErr := p.ingest(ctx, &summary)

	if len(batch) > 0 {
		result, persistErr := p.deps.Sink.Persist(ctx, batch)
		if persistErr != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("persist batch: %w", persistErr)
		}
		summary.Persisted = result.Persisted
		summary.FailedGUIDs = result.FailedGUIDs
	}

	summary.Elapsed = time.Since(start)
	p.info("run finished", "summary", summary.String())
	p.notify(ctx, summary)

	return summary, runErr
}

// ingest walks every source and accumulates accepted articles. A non-nil
// error means the run aborted; the partial batch is still returned.
func (p *Pipeline) ingest(ctx context.Context, summary *Summary) ([]domain.Article, error) {
	var batch []domain.Article

	for _, source := range p.deps.Sources {
		p.info("fetching feed", "url", source)
		entries, err := p.deps.Feed.Fetch(ctx, source)
		if err != nil {
			// One bad feed must not take down the run.
			p.warn("feed skipped", "url", source, "error", err)
			continue
		}

		for _, entry := range entries {
			summary.Entries++

			article, ok := p.processEntry(ctx, entry, source, summary)
			if !ok {
				continue
			}

			enriched, err := p.deps.Enricher.Enrich(ctx, article)
			if err != nil {
				// Enrichment errors (key exhaustion, cancellation) are
				// run-fatal; the batch so far still persists.
				p.warn("enrichment aborted the run", "guid", article.GUID, "error", err)
				return batch, fmt.Errorf("enrich %s: %w", article.GUID, err)
			}
			if enriched.Empty() {
				summary.EmptyEnrichment++
				if !p.deps.SkipOnEmptyEnrichment {
					// Empty enrichment is read as systemic (quota, not
					// this entry), so the run stops ingesting here.
					p.warn("empty enrichment, stopping run", "guid", article.GUID)
					summary.Stopped = true
					return batch, nil
				}
				p.debug("entry rejected: empty enrichment", "guid", article.GUID)
				continue
			}

			article.Enriched = enriched
			batch = append(batch, article)
			p.ledger[article.GUID] = struct{}{}
			summary.Accepted++
			p.debug("entry accepted", "guid", article.GUID, "title", article.Title)
		}
	}

	return batch, nil
}

// processEntry runs the pre-enrichment gates: field presence, dedup,
// extraction length, classification. It never calls the extractor or the
// classifier for a guid already in the ledger.
func (p *Pipeline) processEntry(ctx context.Context, entry domain.Entry, source string, summary *Summary) (domain.Article, bool) {
	if entry.GUID == "" || entry.Link == "" {
		summary.MissingFields++
		return domain.Article{}, false
	}
	if _, dup := p.ledger[entry.GUID]; dup {
		summary.Duplicates++
		p.debug("entry rejected: duplicate", "guid", entry.GUID)
		return domain.Article{}, false
	}

	content := p.deps.Extractor.Extract(ctx, entry.Link)
	if len(content) < domain.MinContentLength {
		summary.ShortContent++
		p.debug("entry rejected: short content", "guid", entry.GUID, "length", len(content))
		return domain.Article{}, false
	}

	scored, err := p.deps.Classifier.Classify(ctx, classifyQuery(entry), p.deps.Labels)
	if err != nil {
		summary.ClassifyErrors++
		p.warn("entry rejected: classification failed", "guid", entry.GUID, "error", err)
		return domain.Article{}, false
	}

	return domain.Article{
		GUID:          entry.GUID,
		Title:         entry.Title,
		Link:          entry.Link,
		Published:     entry.Published,
		PublishedAt:   entry.PublishedAt,
		Summary:       entry.Summary,
		Description:   entry.Description,
		ImageURL:      entry.ImageURL,
		Author:        entry.Author,
		Source:        source,
		Content:       content,
		RSSCategories: entry.Tags,
		Categories:    confidentOnly(scored),
	}, true
}

// classifyQuery derives the classifier input: feed tags joined by comma,
// or the title when the feed supplied none.
func classifyQuery(entry domain.Entry) string {
	if len(entry.Tags) > 0 {
		return strings.Join(entry.Tags, ", ")
	}
	return entry.Title
}

func confidentOnly(scored []domain.CategoryScore) []domain.CategoryScore {
	kept := make([]domain.CategoryScore, 0, len(scored))
	for _, cs := range scored {
		if cs.Score >= domain.MinConfidence {
			kept = append(kept, cs)
		}
	}
	return kept
}

func (p *Pipeline) notify(ctx context.Context, summary Summary) {
	if p.deps.Notifier == nil {
		return
	}
	if err := p.deps.Notifier.PublishSummary(ctx, summary.String()); err != nil {
		p.warn("summary notification failed", "error", err)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Debug(msg, args...)
	}
}
