package suggest

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
)

//go:embed words.txt
var embeddedWords string

// maxEditDistance bounds how far a candidate may be from the token.
const maxEditDistance = 2

// Lexicon is a frequency-ordered word list that implements Oracle by edit
// distance. It is safe for concurrent use.
type Lexicon struct {
	words []string
	known map[string]struct{}
}

var (
	defaultLexicon     *Lexicon
	defaultLexiconOnce sync.Once
)

// DefaultLexicon returns the built-in English word list.
func DefaultLexicon() *Lexicon {
	defaultLexiconOnce.Do(func() {
		l, err := ReadLexicon(strings.NewReader(embeddedWords))
		if err != nil {
			panic(fmt.Sprintf("suggest: embedded word list: %v", err))
		}
		defaultLexicon = l
	})
	return defaultLexicon
}

// LoadLexicon reads a word-per-line file, most frequent word first.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("suggest: open lexicon %q: %w", path, err)
	}
	defer f.Close()

	return ReadLexicon(f)
}

// ReadLexicon builds a lexicon from r. Blank lines and lines starting with
// '#' are skipped; duplicates keep their first position.
func ReadLexicon(r io.Reader) (*Lexicon, error) {
	l := &Lexicon{known: make(map[string]struct{})}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, dup := l.known[w]; dup {
			continue
		}
		l.known[w] = struct{}{}
		l.words = append(l.words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("suggest: read lexicon: %w", err)
	}
	if len(l.words) == 0 {
		return nil, fmt.Errorf("suggest: lexicon is empty")
	}
	return l, nil
}

// Len returns the number of words.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Known reports whether word is in the lexicon.
func (l *Lexicon) Known(word string) bool {
	_, ok := l.known[strings.ToLower(word)]
	return ok
}

// Candidates returns the word itself when it is known. Otherwise it returns
// the known words at the smallest edit distance (1, then 2), in lexicon
// order. It returns nil when nothing is close enough.
func (l *Lexicon) Candidates(word string) ([]string, error) {
	word = strings.ToLower(word)
	if word == "" {
		return nil, nil
	}
	if l.Known(word) {
		return []string{word}, nil
	}

	byDistance := make([][]string, maxEditDistance+1)
	n := len([]rune(word))
	for _, w := range l.words {
		if abs(len([]rune(w))-n) > maxEditDistance {
			continue
		}
		d := matchr.DamerauLevenshtein(word, w)
		if d >= 1 && d <= maxEditDistance {
			byDistance[d] = append(byDistance[d], w)
		}
	}

	for d := 1; d <= maxEditDistance; d++ {
		if len(byDistance[d]) > 0 {
			return byDistance[d], nil
		}
	}
	return nil, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
