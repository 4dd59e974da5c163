package ui

import (
	"errors"
	"image"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/session"
)

// OpenCV mouse event codes.
const (
	eventMouseMove      = 0
	eventLeftButtonDown = 1
)

// Window is a session.Surface backed by an OpenCV highgui window.
type Window struct {
	name   string
	logger *zap.Logger

	mu     sync.Mutex
	win    *gocv.Window
	panel  *interact.Panel
	closed bool
}

var _ session.Surface = (*Window)(nil)

// NewWindow returns an unopened window titled name.
func NewWindow(name string, logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{name: name, logger: logger.Named("ui")}
}

// Open creates the window and routes pointer events to panel.
func (w *Window) Open(panel *interact.Panel) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.win != nil {
		return nil
	}
	if w.closed {
		return errors.New("ui: window already closed")
	}

	w.panel = panel
	w.win = gocv.NewWindow(w.name)
	w.win.SetMouseHandler(w.onMouse, nil)
	w.logger.Debug("window opened", zap.String("name", w.name))
	return nil
}

func (w *Window) onMouse(event, x, y, flags int, _ interface{}) {
	pt := image.Pt(x, y)
	switch event {
	case eventMouseMove:
		w.panel.Move(pt)
	case eventLeftButtonDown:
		w.panel.Press(pt)
	}
}

// Poll pumps window events for one millisecond and returns the key pressed.
func (w *Window) Poll() int {
	win := w.window()
	if win == nil {
		return interact.KeyNone
	}
	key := win.WaitKey(1)
	if key < 0 {
		return interact.KeyNone
	}
	return key
}

// Render paints view onto frame and shows it.
func (w *Window) Render(frame *gocv.Mat, view session.View) error {
	win := w.window()
	if win == nil {
		return errors.New("ui: window not open")
	}
	if frame == nil || frame.Empty() {
		return errors.New("ui: empty frame")
	}

	Paint(frame, view)
	win.IMShow(*frame)
	return nil
}

// Closed reports whether the user closed the window.
func (w *Window) Closed() bool {
	win := w.window()
	if win == nil {
		return true
	}
	return win.GetWindowProperty(gocv.WindowPropertyVisible) < 1
}

// Close destroys the window. It is safe to call more than once.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}

func (w *Window) window() *gocv.Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.win
}
