package suggest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// NormalizeWord trims and upper-cases a custom dictionary entry.
func NormalizeWord(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// ReadDictionaryJSON decodes a JSON array of words. Entries are normalized,
// blanks dropped and duplicates removed, first occurrence winning.
func ReadDictionaryJSON(r io.Reader) ([]string, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("suggest: decode dictionary: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		w = NormalizeWord(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words, nil
}

// LoadDictionaryFile reads a JSON dictionary file.
func LoadDictionaryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("suggest: open dictionary %q: %w", path, err)
	}
	defer f.Close()

	return ReadDictionaryJSON(f)
}
