package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSources(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rss_urls.txt")
	content := `# primary feeds
https://techcrunch.com/feed/

https://example.org/rss
  # indented comment
https://another.example/feed
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	urls, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}

	want := []string{
		"https://techcrunch.com/feed/",
		"https://example.org/rss",
		"https://another.example/feed",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for i, url := range want {
		if urls[i] != url {
			t.Fatalf("url %d: expected %s, got %s", i, url, urls[i])
		}
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadSources(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
