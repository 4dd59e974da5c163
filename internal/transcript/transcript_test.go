package transcript

import (
	"strings"
	"testing"
)

func TestBuffer_Insert(t *testing.T) {
	var b Buffer
	b.InsertLetter('H')
	b.InsertLetter('I')
	b.InsertSpace()
	b.InsertLetter('Y')

	if got := b.String(); got != "HI Y" {
		t.Errorf("String() = %q, want %q", got, "HI Y")
	}
	if b.Len() != 4 {
		t.Errorf("Len() = %d, want 4", b.Len())
	}
}

func TestBuffer_Backspace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty is no-op", text: "", want: ""},
		{name: "single char", text: "A", want: ""},
		{name: "trailing space", text: "AB ", want: "AB"},
		{name: "word", text: "HELLO", want: "HELL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.text)
			b.Backspace()
			if got := b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := New("SOME TEXT")
	b.Clear()
	if !b.Empty() {
		t.Errorf("buffer not empty after Clear: %q", b.String())
	}
	b.InsertLetter('X')
	if b.String() != "X" {
		t.Errorf("String() = %q after reuse, want %q", b.String(), "X")
	}
}

func TestBuffer_ReplaceLastWord(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		candidate string
		want      string
		wantOK    bool
	}{
		{name: "single word", text: "AP", candidate: "APPLY", want: "APPLY ", wantOK: true},
		{name: "keeps earlier words", text: "I LIKE AP", candidate: "APPLE", want: "I LIKE APPLE ", wantOK: true},
		{name: "collapses spacing", text: "I  LIKE   AP  ", candidate: "APPLE", want: "I LIKE APPLE ", wantOK: true},
		{name: "empty buffer", text: "", candidate: "APPLE", want: "", wantOK: false},
		{name: "only spaces", text: "   ", candidate: "APPLE", want: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.text)
			before := b.Words()

			ok := b.ReplaceLastWord(tt.candidate)
			if ok != tt.wantOK {
				t.Fatalf("ReplaceLastWord() = %v, want %v", ok, tt.wantOK)
			}
			if got := b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if !ok {
				return
			}

			after := b.Words()
			for i := 0; i < len(before)-1; i++ {
				if after[i] != before[i] {
					t.Errorf("word %d changed: %q -> %q", i, before[i], after[i])
				}
			}
			if !strings.HasSuffix(b.String(), " ") || strings.HasSuffix(b.String(), "  ") {
				t.Errorf("%q must end with exactly one space", b.String())
			}
		})
	}
}

func TestTrailingToken(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "", want: ""},
		{text: "AP", want: "AP"},
		{text: "HELLO WO", want: "WO"},
		{text: "HELLO ", want: ""},
		{text: "   ", want: ""},
	}

	for _, tt := range tests {
		if got := TrailingToken(tt.text); got != tt.want {
			t.Errorf("TrailingToken(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
