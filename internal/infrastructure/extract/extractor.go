package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/saffan19/MindScroll/internal/ports"
)

const fallbackTimeout = 10 * time.Second

// Extractor pulls best-effort full article text from a link. The first tier
// looks for structured article markup; the second refetches with a hard
// timeout and strips the whole body. Total failure yields an empty string.
type Extractor struct {
	client   *http.Client
	fallback *http.Client
	logger   *slog.Logger
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client; nil gets sane defaults.
func NewExtractor(client *http.Client, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{
		client:   client,
		fallback: &http.Client{Timeout: fallbackTimeout},
		logger:   logger,
	}
}

// Extract returns the article text for link, or "" when nothing usable
// could be fetched. Errors are swallowed on purpose: the pipeline's length
// filter discards empty results.
func (e *Extractor) Extract(ctx context.Context, link string) string {
	if doc, err := e.fetchDocument(ctx, e.client, link); err == nil {
		if text := articleText(doc); text != "" {
			return text
		}
	} else {
		e.debug("structured extraction failed", "link", link, "error", err)
	}

	doc, err := e.fetchDocument(ctx, e.fallback, link)
	if err != nil {
		e.debug("fallback extraction failed", "link", link, "error", err)
		return ""
	}

	return bodyText(doc)
}

func (e *Extractor) fetchDocument(ctx context.Context, client *http.Client, link string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "MindScroll/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// articleText collects paragraph text from structured article containers.
// Containers are tried most-specific first and the longest result wins.
func articleText(doc *goquery.Document) string {
	dropNoise(doc)

	var best string
	for _, selector := range []string{"article", "[itemprop=articleBody]", "main"} {
		doc.Find(selector).Each(func(_ int, container *goquery.Selection) {
			var parts []string
			container.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
				if text := strings.TrimSpace(s.Text()); text != "" {
					parts = append(parts, text)
				}
			})
			candidate := strings.Join(parts, "\n")
			if len(candidate) > len(best) {
				best = candidate
			}
		})
	}

	return best
}

// bodyText strips tags from the whole body, one line per text block.
func bodyText(doc *goquery.Document) string {
	dropNoise(doc)

	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}

	lines := strings.Split(body.Text(), "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return strings.Join(parts, "\n")
}

func dropNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript, nav, footer, header, aside").Remove()
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
