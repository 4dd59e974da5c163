// Package alphabet defines the fixed letter table the gesture classifier predicts into.
package alphabet

// Letters is the classifier label table, indexed by prediction index.
const Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Letter is a single observed sign. The zero value is None.
type Letter byte

// None means no hand or no classification this frame.
const None Letter = 0

// FromIndex maps a classifier prediction index into the alphabet.
// Out-of-range indexes yield None.
func FromIndex(i int) Letter {
	if i < 0 || i >= len(Letters) {
		return None
	}
	return Letter(Letters[i])
}

// Valid reports whether l is one of the 26 letters.
func (l Letter) Valid() bool {
	return l >= 'A' && l <= 'Z'
}

// String returns the letter as a one-character string, or "" for None.
func (l Letter) String() string {
	if !l.Valid() {
		return ""
	}
	return string(rune(l))
}
