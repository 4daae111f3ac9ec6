package feed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadSources reads the newline-delimited feed URL list. Blank lines and
// lines starting with # are ignored; order is preserved.
func LoadSources(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources %s: %w", path, err)
	}
	defer file.Close()

	var urls []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}

	return urls, nil
}
