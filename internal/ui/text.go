package ui

import (
	"fmt"
	"strings"

	"github.com/ayusman/signbridge/internal/suggest"
)

// MaxTextLines is how many wrapped transcript lines the sidebar shows.
const MaxTextLines = 15

// Wrap breaks text into lines no wider than width as reported by measure.
// Words wider than width get a line of their own. A trailing space on text
// is kept on the last line so the cursor position stays visible.
func Wrap(text string, width int, measure func(string) int) []string {
	if text == "" {
		return nil
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && measure(candidate) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if strings.HasSuffix(text, " ") {
		line += " "
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Tail returns the last n lines.
func Tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// SuggestionLabels renders suggestions as "[1] WORD" entries.
func SuggestionLabels(suggestions []string) []string {
	labels := make([]string, len(suggestions))
	for i, s := range suggestions {
		labels[i] = fmt.Sprintf("[%d] %s", i+1, s)
	}
	return labels
}

// ModeLabel is the heading shown above the suggestion list.
func ModeLabel(m suggest.Mode) string {
	switch m {
	case suggest.ModeOff:
		return "Suggestions: off"
	case suggest.ModeInbuilt:
		return "Suggestions: built-in"
	case suggest.ModeCustom:
		return "Suggestions: custom"
	}
	return "Suggestions"
}
