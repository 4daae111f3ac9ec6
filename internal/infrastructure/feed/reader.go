package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/saffan19/MindScroll/internal/domain"
	"github.com/saffan19/MindScroll/internal/ports"
)

// Reader implements ports.FeedSource on top of gofeed.
type Reader struct {
	parser *gofeed.Parser
}

var _ ports.FeedSource = (*Reader)(nil)

// NewReader builds a reader with a fresh RSS/Atom parser.
func NewReader() *Reader {
	return &Reader{parser: gofeed.NewParser()}
}

// Fetch parses one feed URL into raw entries. A feed that cannot be parsed
// yields an empty slice and the error; the caller decides to log and move on.
func (r *Reader) Fetch(ctx context.Context, url string) ([]domain.Entry, error) {
	parsed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	entries := make([]domain.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, toEntry(item))
	}

	return entries, nil
}

func toEntry(item *gofeed.Item) domain.Entry {
	entry := domain.Entry{
		GUID:        item.GUID,
		Link:        item.Link,
		Title:       item.Title,
		Description: item.Description,
		Summary:     item.Description,
		Published:   item.Published,
		ImageURL:    firstImageURL(item),
		Tags:        tagTerms(item),
	}

	if entry.GUID == "" {
		entry.GUID = item.Link
	}
	if item.Content != "" && entry.Summary == "" {
		entry.Summary = item.Content
	}
	if item.PublishedParsed != nil {
		entry.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = *item.UpdatedParsed
	} else {
		entry.PublishedAt = time.Time{}
	}
	if item.Author != nil {
		entry.Author = item.Author.Name
	}

	return entry
}

func tagTerms(item *gofeed.Item) []string {
	var tags []string
	for _, c := range item.Categories {
		if term := strings.TrimSpace(c); term != "" {
			tags = append(tags, term)
		}
	}
	return tags
}

// firstImageURL walks description, content, enclosures and media extensions
// in that priority order and returns the first image URL found.
func firstImageURL(item *gofeed.Item) string {
	if src := imageFromHTML(item.Description); src != "" {
		return src
	}
	if src := imageFromHTML(item.Content); src != "" {
		return src
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	if item.Image != nil {
		return item.Image.URL
	}

	return ""
}

func imageFromHTML(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}
