package alphabet

import "testing"

func TestFromIndex(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  Letter
	}{
		{name: "first", index: 0, want: 'A'},
		{name: "last", index: 25, want: 'Z'},
		{name: "middle", index: 12, want: 'M'},
		{name: "negative", index: -1, want: None},
		{name: "past end", index: 26, want: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromIndex(tt.index); got != tt.want {
				t.Errorf("FromIndex(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestLetter_String(t *testing.T) {
	if got := Letter('Q').String(); got != "Q" {
		t.Errorf("String() = %q, want %q", got, "Q")
	}
	if got := None.String(); got != "" {
		t.Errorf("None.String() = %q, want empty", got)
	}
	if None.Valid() {
		t.Error("None should not be valid")
	}
}
