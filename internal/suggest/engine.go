// Package suggest derives word completions for the in-progress word of a
// transcript, either from a custom dictionary or a spelling-correction oracle.
package suggest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/signbridge/internal/transcript"
)

// MaxSuggestions caps every suggestion set.
const MaxSuggestions = 3

// minInbuiltToken is the shortest token the oracle is asked about.
const minInbuiltToken = 2

// Oracle returns correction candidates for a lower-case word.
type Oracle interface {
	Candidates(word string) ([]string, error)
}

// Engine computes suggestion sets. It is read-only after construction.
type Engine struct {
	mode       Mode
	dictionary []string
	oracle     Oracle
	logger     *zap.Logger
}

// NewEngine returns an engine for mode. dictionary is used by ModeCustom and
// oracle by ModeInbuilt; either may be nil when unused.
func NewEngine(mode Mode, dictionary []string, oracle Oracle, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		mode:       mode,
		dictionary: dictionary,
		oracle:     oracle,
		logger:     logger,
	}
}

// Mode returns the configured mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Suggest returns up to MaxSuggestions candidates for the trailing token of
// text. It never fails; oracle errors produce an empty set.
func (e *Engine) Suggest(text string) []string {
	token := transcript.TrailingToken(text)
	if token == "" {
		return nil
	}

	switch e.mode {
	case ModeOff:
		return nil
	case ModeCustom:
		return e.custom(token)
	case ModeInbuilt:
		return e.inbuilt(token)
	}
	return nil
}

func (e *Engine) custom(token string) []string {
	prefix := strings.ToUpper(token)

	var out []string
	for _, w := range e.dictionary {
		if strings.HasPrefix(strings.ToUpper(w), prefix) {
			out = append(out, w)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

func (e *Engine) inbuilt(token string) []string {
	if len([]rune(token)) < minInbuiltToken || e.oracle == nil {
		return nil
	}

	candidates, err := e.oracle.Candidates(strings.ToLower(token))
	if err != nil {
		e.logger.Debug("spelling oracle failed", zap.String("token", token), zap.Error(err))
		return nil
	}

	var out []string
	for _, c := range candidates {
		out = append(out, strings.ToUpper(c))
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Ghost returns the display-only remainder of the top suggestion after the
// trailing token of text, or "" when the top suggestion does not extend it.
func Ghost(text string, suggestions []string) string {
	token := transcript.TrailingToken(text)
	if token == "" || len(suggestions) == 0 {
		return ""
	}

	top := suggestions[0]
	if !strings.HasPrefix(strings.ToUpper(top), strings.ToUpper(token)) {
		return ""
	}

	rest := []rune(top)
	n := len([]rune(token))
	if n >= len(rest) {
		return ""
	}
	return string(rest[n:])
}
