package ui

import (
	"image"
	"reflect"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/session"
	"github.com/ayusman/signbridge/internal/suggest"
)

// runeWidth measures text as ten pixels per rune.
func runeWidth(s string) int {
	return 10 * len([]rune(s))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{name: "empty", text: "", width: 100, want: nil},
		{name: "fits", text: "HELLO", width: 100, want: []string{"HELLO"}},
		{name: "breaks", text: "HELLO WORLD AGAIN", width: 110, want: []string{"HELLO WORLD", "AGAIN"}},
		{name: "breaks every word", text: "HELLO WORLD AGAIN", width: 100, want: []string{"HELLO", "WORLD", "AGAIN"}},
		{name: "long word own line", text: "A SUPERCALIFRAGILISTIC B", width: 50, want: []string{"A", "SUPERCALIFRAGILISTIC", "B"}},
		{name: "keeps trailing space", text: "HI THERE ", width: 200, want: []string{"HI THERE "}},
		{name: "collapses runs of spaces", text: "HI   THERE", width: 200, want: []string{"HI THERE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width, runeWidth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}

	if got := Tail(lines, 2); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("Tail(2) = %v", got)
	}
	if got := Tail(lines, 10); len(got) != 4 {
		t.Errorf("Tail(10) = %v", got)
	}
}

func TestSuggestionLabels(t *testing.T) {
	got := SuggestionLabels([]string{"APPLE", "APPLY"})
	want := []string{"[1] APPLE", "[2] APPLY"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestionLabels() = %v, want %v", got, want)
	}
}

func TestModeLabel(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range []suggest.Mode{suggest.ModeOff, suggest.ModeInbuilt, suggest.ModeCustom} {
		label := ModeLabel(m)
		if seen[label] {
			t.Errorf("duplicate label %q", label)
		}
		seen[label] = true
	}
}

func TestThemeFor(t *testing.T) {
	if ThemeFor(true) == ThemeFor(false) {
		t.Error("dark and light themes should differ")
	}
}

func TestPaint(t *testing.T) {
	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	view := session.View{
		Letter:       'A',
		Box:          image.Rect(200, 200, 400, 500),
		Text:         "I LIKE AP",
		Ghost:        "PLE",
		Suggestions:  []string{"APPLE", "APPLY"},
		Mode:         suggest.ModeCustom,
		AutoInput:    true,
		Progress:     0.5,
		ShowProgress: true,
		Dark:         true,
		Buttons:      interact.LayoutButtons(image.Pt(1280, 720)),
		Hover:        2,
	}

	Paint(&frame, view)

	if frame.Cols() != 1280 || frame.Rows() != 720 {
		t.Fatalf("frame resized to %dx%d", frame.Cols(), frame.Rows())
	}

	// The sidebar background is the dark panel colour away from any text.
	px := frame.GetVecbAt(710, 1270)
	if px[0] != 30 || px[1] != 30 || px[2] != 30 {
		t.Errorf("sidebar pixel = %v, want dark panel", px)
	}
}

func TestWindow_UnopenedIsClosed(t *testing.T) {
	w := NewWindow("test", nil)

	if !w.Closed() {
		t.Error("unopened window should report closed")
	}
	if got := w.Poll(); got != interact.KeyNone {
		t.Errorf("Poll() = %d, want KeyNone", got)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Open(interact.NewPanel(nil)); err == nil {
		t.Error("Open() after Close() should fail")
	}
}
