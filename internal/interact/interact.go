// Package interact turns pointer and key events into transcript actions.
//
// Buttons are circles hit-tested against the pointer. A click is latched on
// pointer-down and consumed once per loop iteration, so at most one button
// reacts to a click even when several overlap.
package interact

import (
	"image"
	"sync"
)

// Action is what an input event asks the session to do.
type Action int

const (
	ActionNone Action = iota
	ActionBackspace
	ActionSpace
	ActionEnd
	ActionClear
	ActionConfirm
	ActionSelect
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionBackspace:
		return "backspace"
	case ActionSpace:
		return "space"
	case ActionEnd:
		return "end"
	case ActionClear:
		return "clear"
	case ActionConfirm:
		return "confirm"
	case ActionSelect:
		return "select"
	case ActionQuit:
		return "quit"
	}
	return "unknown"
}

// Terminates reports whether the action ends the session.
func (a Action) Terminates() bool {
	return a == ActionEnd || a == ActionQuit
}

// ButtonRadius is the hit radius of every button, in pixels.
const ButtonRadius = 28

// Button is a circular on-screen control.
type Button struct {
	Name   string
	Label  string
	Action Action
	Center image.Point
}

// Hit reports whether p lies within ButtonRadius of the button center.
func (b Button) Hit(p image.Point) bool {
	dx := p.X - b.Center.X
	dy := p.Y - b.Center.Y
	return dx*dx+dy*dy <= ButtonRadius*ButtonRadius
}

// Panel holds the buttons and the latest pointer state. Pointer methods may
// be called from a UI callback goroutine; Take is called by the session loop.
type Panel struct {
	mu      sync.Mutex
	buttons []Button
	pointer image.Point
	clicked bool
}

// NewPanel returns a panel over buttons, tested in the given order.
func NewPanel(buttons []Button) *Panel {
	return &Panel{buttons: buttons}
}

// Buttons returns the configured buttons.
func (p *Panel) Buttons() []Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buttons
}

// SetButtons replaces the buttons, keeping pointer and click state.
func (p *Panel) SetButtons(buttons []Button) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buttons = buttons
}

// Move records the pointer position.
func (p *Panel) Move(pt image.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointer = pt
}

// Press records a pointer-down at pt and latches the click.
func (p *Panel) Press(pt image.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointer = pt
	p.clicked = true
}

// Pointer returns the last known pointer position.
func (p *Panel) Pointer() image.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pointer
}

// Hover returns the index of the first button under the pointer, or -1.
func (p *Panel) Hover() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.buttons {
		if b.Hit(p.pointer) {
			return i
		}
	}
	return -1
}

// Take consumes the click latch. If a click was pending and hit a button,
// the first such button's action is returned. The latch is cleared either way.
func (p *Panel) Take() Action {
	p.mu.Lock()
	defer p.mu.Unlock()

	clicked := p.clicked
	p.clicked = false
	if !clicked {
		return ActionNone
	}
	for _, b := range p.buttons {
		if b.Hit(p.pointer) {
			return b.Action
		}
	}
	return ActionNone
}

// KeyNone is the key code for "no key pressed".
const KeyNone = -1

// Key maps a key code to an action. For ActionSelect, index is the zero-based
// suggestion index.
func Key(code int) (action Action, index int) {
	if code < 0 {
		return ActionNone, 0
	}
	switch c := code & 0xFF; {
	case c == ' ':
		return ActionConfirm, 0
	case c >= '1' && c <= '3':
		return ActionSelect, c - '1'
	case c == 'q':
		return ActionQuit, 0
	}
	return ActionNone, 0
}
