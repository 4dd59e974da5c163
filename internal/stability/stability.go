// Package stability turns the noisy per-frame letter stream into discrete
// commit events once a letter has been held for a threshold of wall time.
package stability

import (
	"time"

	"github.com/ayusman/signbridge/internal/alphabet"
)

// DefaultThreshold is the hold time before a letter is committed.
const DefaultThreshold = time.Second

// Automaton is the Idle/Tracking state machine. It is not safe for concurrent
// use; the session loop is its only owner.
type Automaton struct {
	threshold   time.Duration
	autoCommit  bool
	last        alphabet.Letter
	accumulated time.Duration
}

// New returns an idle automaton. A non-positive threshold selects
// DefaultThreshold. With autoCommit false the automaton still tracks the
// current letter but never emits commits.
func New(threshold time.Duration, autoCommit bool) *Automaton {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Automaton{threshold: threshold, autoCommit: autoCommit}
}

// Observe advances the automaton by one frame. delta is the wall time since
// the previous frame was processed. It returns the committed letter and true
// when the hold threshold is reached.
func (a *Automaton) Observe(obs alphabet.Letter, delta time.Duration) (alphabet.Letter, bool) {
	switch {
	case !obs.Valid():
		a.last = alphabet.None
		a.accumulated = 0
		return alphabet.None, false

	case obs != a.last:
		a.last = obs
		a.accumulated = 0
		return alphabet.None, false

	case !a.autoCommit:
		return alphabet.None, false
	}

	if delta > 0 {
		a.accumulated += delta
	}
	if a.accumulated < a.threshold {
		return alphabet.None, false
	}

	// The letter stays locked, so a held sign repeats at the threshold cadence.
	a.accumulated = 0
	return obs, true
}

// Reset returns the automaton to Idle.
func (a *Automaton) Reset() {
	a.last = alphabet.None
	a.accumulated = 0
}

// Current is the letter being tracked, or None.
func (a *Automaton) Current() alphabet.Letter {
	return a.last
}

// Accumulated is the hold time gathered for the current letter.
func (a *Automaton) Accumulated() time.Duration {
	return a.accumulated
}

// Threshold is the configured hold time.
func (a *Automaton) Threshold() time.Duration {
	return a.threshold
}

// AutoCommit reports whether commits are emitted.
func (a *Automaton) AutoCommit() bool {
	return a.autoCommit
}

// Progress is the fraction of the threshold reached, capped at 1.
func (a *Automaton) Progress() float64 {
	p := float64(a.accumulated) / float64(a.threshold)
	if p > 1 {
		return 1
	}
	return p
}
