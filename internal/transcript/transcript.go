// Package transcript holds the committed text of a session and the edit
// operations allowed on it.
package transcript

import "strings"

// Buffer is the mutable transcript. The zero value is an empty buffer.
// It is not safe for concurrent use.
type Buffer struct {
	text []rune
}

// New returns a buffer holding text.
func New(text string) *Buffer {
	return &Buffer{text: []rune(text)}
}

// String returns the committed text.
func (b *Buffer) String() string {
	return string(b.text)
}

// Len returns the number of characters.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Empty reports whether the buffer holds no characters.
func (b *Buffer) Empty() bool {
	return len(b.text) == 0
}

// InsertLetter appends ch.
func (b *Buffer) InsertLetter(ch rune) {
	b.text = append(b.text, ch)
}

// InsertSpace appends a single space.
func (b *Buffer) InsertSpace() {
	b.text = append(b.text, ' ')
}

// Backspace removes the last character. It is a no-op on an empty buffer.
func (b *Buffer) Backspace() {
	if len(b.text) == 0 {
		return
	}
	b.text = b.text[:len(b.text)-1]
}

// Clear truncates the buffer.
func (b *Buffer) Clear() {
	b.text = b.text[:0]
}

// ReplaceLastWord swaps the last whitespace-delimited word for candidate,
// collapses the words onto single spaces and appends one trailing space.
// It reports false and leaves the buffer untouched when there are no words.
func (b *Buffer) ReplaceLastWord(candidate string) bool {
	words := strings.Fields(string(b.text))
	if len(words) == 0 {
		return false
	}
	words[len(words)-1] = candidate
	b.text = []rune(strings.Join(words, " ") + " ")
	return true
}

// Words returns the whitespace-delimited words.
func (b *Buffer) Words() []string {
	return strings.Fields(string(b.text))
}

// TrailingToken returns the text after the last whitespace character. It is
// empty when the buffer is empty or ends in whitespace.
func (b *Buffer) TrailingToken() string {
	return TrailingToken(string(b.text))
}

// TrailingToken returns the in-progress word at the end of text.
func TrailingToken(text string) string {
	i := strings.LastIndexFunc(text, isSpace)
	return text[i+1:]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
