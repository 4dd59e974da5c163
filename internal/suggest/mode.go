package suggest

import (
	"fmt"
	"strings"
)

// Mode selects where suggestions come from.
type Mode int

const (
	// ModeOff disables suggestions.
	ModeOff Mode = iota
	// ModeInbuilt asks the spelling-correction oracle.
	ModeInbuilt
	// ModeCustom prefix-matches the user's custom dictionary.
	ModeCustom
)

// String returns the persisted name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeInbuilt:
		return "inbuilt"
	case ModeCustom:
		return "custom"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a persisted mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "inbuilt":
		return ModeInbuilt, nil
	case "custom":
		return ModeCustom, nil
	}
	return ModeOff, fmt.Errorf("suggest: unknown mode %q; valid values: off, inbuilt, custom", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
