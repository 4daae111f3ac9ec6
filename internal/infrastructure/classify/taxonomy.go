package classify

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadTaxonomy reads the newline-delimited label list. Blank lines are
// skipped. The result is loaded once per run and treated as immutable.
func LoadTaxonomy(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy %s: %w", path, err)
	}
	defer file.Close()

	var labels []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if label := strings.TrimSpace(sc.Text()); label != "" {
			labels = append(labels, label)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("taxonomy %s contains no labels", path)
	}

	return labels, nil
}
