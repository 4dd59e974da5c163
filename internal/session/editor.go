package session

import (
	"github.com/ayusman/signbridge/internal/alphabet"
	"github.com/ayusman/signbridge/internal/suggest"
	"github.com/ayusman/signbridge/internal/transcript"
)

// Editor couples the transcript with its suggestion set. Every mutation
// except Backspace recomputes or clears the suggestions.
type Editor struct {
	buf         *transcript.Buffer
	engine      *suggest.Engine
	suggestions []string
}

// NewEditor returns an editor over an empty transcript.
func NewEditor(engine *suggest.Engine) *Editor {
	return &Editor{buf: transcript.New(""), engine: engine}
}

// Text returns the committed text.
func (e *Editor) Text() string {
	return e.buf.String()
}

// Suggestions returns the current suggestion set.
func (e *Editor) Suggestions() []string {
	return e.suggestions
}

// Ghost returns the display-only completion of the trailing word.
func (e *Editor) Ghost() string {
	return suggest.Ghost(e.buf.String(), e.suggestions)
}

// InsertLetter appends l. Invalid letters are ignored.
func (e *Editor) InsertLetter(l alphabet.Letter) bool {
	if !l.Valid() {
		return false
	}
	e.buf.InsertLetter(rune(l))
	e.recompute()
	return true
}

// InsertSpace appends a space.
func (e *Editor) InsertSpace() {
	e.buf.InsertSpace()
	e.recompute()
}

// Backspace removes the last character. Suggestions are left as they were.
func (e *Editor) Backspace() {
	e.buf.Backspace()
}

// Clear empties the transcript and the suggestions.
func (e *Editor) Clear() {
	e.buf.Clear()
	e.suggestions = nil
}

// Select replaces the trailing word with suggestion i. It is a no-op when
// there is no suggestion at i or nothing to replace.
func (e *Editor) Select(i int) bool {
	if i < 0 || i >= len(e.suggestions) {
		return false
	}
	if !e.buf.ReplaceLastWord(e.suggestions[i]) {
		return false
	}
	e.suggestions = nil
	return true
}

func (e *Editor) recompute() {
	if e.engine == nil {
		e.suggestions = nil
		return
	}
	e.suggestions = e.engine.Suggest(e.buf.String())
}
