// Package session runs one capture-classify-edit loop from start to stop.
//
// A Session is created per launch with an immutable Settings snapshot. Run
// drives the loop on the caller's goroutine; Stop may be called from any
// goroutine and takes effect at the top of the next iteration. Done is
// closed once the session reaches Stopped.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/alphabet"
	"github.com/ayusman/signbridge/internal/canvas"
	"github.com/ayusman/signbridge/internal/capture"
	"github.com/ayusman/signbridge/internal/classifier"
	"github.com/ayusman/signbridge/internal/detector"
	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/observe"
	"github.com/ayusman/signbridge/internal/stability"
	"github.com/ayusman/signbridge/internal/suggest"
)

// ErrAcquisition means the camera or the surface could not be opened.
var ErrAcquisition = errors.New("session: acquisition failed")

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("session: already run")

// State is the lifecycle phase of a session.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Reason records why the loop ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonStopped
	ReasonQuit
	ReasonWindowClosed
	ReasonFrameError
	ReasonCanceled
	ReasonAcquisition
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonStopped:
		return "stopped"
	case ReasonQuit:
		return "quit"
	case ReasonWindowClosed:
		return "window closed"
	case ReasonFrameError:
		return "frame error"
	case ReasonCanceled:
		return "canceled"
	case ReasonAcquisition:
		return "acquisition failed"
	}
	return "unknown"
}

// Settings is the per-session configuration snapshot.
type Settings struct {
	Mirror      bool
	DarkOverlay bool
	AutoInput   bool
	Mode        suggest.Mode
	Threshold   time.Duration
}

// Surface displays frames and collects user input.
type Surface interface {
	// Open shows the surface. Pointer events are reported to panel.
	Open(panel *interact.Panel) error
	// Poll pumps pending UI events and returns the pressed key code, or
	// interact.KeyNone.
	Poll() int
	Render(frame *gocv.Mat, view View) error
	// Closed reports whether the user closed the surface.
	Closed() bool
	Close() error
}

// HistorySink receives the final transcript of a session.
type HistorySink func(text string) error

// Config wires a session to its collaborators.
type Config struct {
	Settings Settings

	Camera  capture.Camera
	Surface Surface

	// Detector and Classifier may be nil; the session then runs without
	// ever observing a letter.
	Detector   detector.Detector
	Classifier classifier.Classifier
	Normalizer *canvas.Normalizer

	// Dictionary loads the custom dictionary at start. Failures yield an
	// empty dictionary.
	Dictionary func() ([]string, error)
	// Oracle serves inbuilt-mode suggestions.
	Oracle suggest.Oracle

	History HistorySink

	Logger  *zap.Logger
	Metrics *observe.Metrics
	// Clock supplies the wall time used for stability timing.
	Clock func() time.Time
}

// Result is the outcome of a finished session.
type Result struct {
	Text   string
	Reason Reason
}

// Session is one run of the translation loop.
type Session struct {
	id      string
	cfg     Config
	logger  *zap.Logger
	metrics *observe.Metrics
	clock   func() time.Time

	state   atomic.Int32
	started atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	releaseOnce sync.Once

	panel     *interact.Panel
	automaton *stability.Automaton
	editor    *Editor
	frameSize struct{ x, y int }
	last      time.Time

	mu     sync.Mutex
	result Result
}

// New validates cfg and returns a session in StateStarting.
func New(cfg Config) (*Session, error) {
	if cfg.Camera == nil {
		return nil, errors.New("session: camera is required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("session: surface is required")
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = canvas.NewNormalizer()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	id := uuid.New().String()
	return &Session{
		id:      id,
		cfg:     cfg,
		logger:  cfg.Logger.Named("session").With(zap.String("session_id", id)),
		metrics: cfg.Metrics,
		clock:   cfg.Clock,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		panel:   interact.NewPanel(nil),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done is closed when the session reaches StateStopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the final transcript and stop reason. It is complete once
// Done is closed.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Stop requests termination. It is safe to call more than once and after
// the loop has exited.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Run starts the session and blocks until it stops. Only a failure to
// acquire the camera or surface is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer close(s.done)

	s.setState(StateStarting)
	if err := s.start(); err != nil {
		s.logger.Error("session start failed", zap.Error(err))
		s.release()
		s.finish(ReasonAcquisition)
		return fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	s.metrics.SessionStarted(ctx)
	defer s.metrics.SessionStopped(context.WithoutCancel(ctx))

	s.setState(StateRunning)
	s.logger.Info("session running",
		zap.Bool("auto_input", s.cfg.Settings.AutoInput),
		zap.Stringer("mode", s.cfg.Settings.Mode),
		zap.Duration("threshold", s.automaton.Threshold()),
	)

	reason := s.loop(ctx)

	s.setState(StateStopping)
	s.release()
	s.finish(reason)
	return nil
}

func (s *Session) start() error {
	st := s.cfg.Settings
	s.automaton = stability.New(st.Threshold, st.AutoInput)

	var dict []string
	if st.Mode == suggest.ModeCustom && s.cfg.Dictionary != nil {
		words, err := s.cfg.Dictionary()
		if err != nil {
			s.logger.Warn("custom dictionary unavailable, using empty", zap.Error(err))
		} else {
			dict = words
		}
	}
	s.editor = NewEditor(suggest.NewEngine(st.Mode, dict, s.cfg.Oracle, s.logger))

	if s.cfg.Detector == nil || s.cfg.Classifier == nil {
		s.logger.Warn("running without letter recognition",
			zap.Bool("detector", s.cfg.Detector != nil),
			zap.Bool("classifier", s.cfg.Classifier != nil),
		)
	}

	if err := s.cfg.Camera.Open(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := s.cfg.Surface.Open(s.panel); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	return nil
}

func (s *Session) loop(ctx context.Context) Reason {
	s.last = s.clock()
	for {
		select {
		case <-s.stop:
			return ReasonStopped
		case <-ctx.Done():
			return ReasonCanceled
		default:
		}

		if reason := s.iterate(ctx); reason != ReasonNone {
			return reason
		}
	}
}

// iterate runs one frame: acquire, observe, advance the automaton, apply
// input, render, then check the surface.
func (s *Session) iterate(ctx context.Context) Reason {
	began := time.Now()

	frame, err := s.cfg.Camera.ReadFrame()
	if err != nil {
		s.logger.Error("frame read failed", zap.Error(err))
		return ReasonFrameError
	}
	defer frame.Close()

	if s.cfg.Settings.Mirror {
		capture.Mirror(frame)
	}
	s.layout(frame)

	letter, box := s.observe(ctx, frame)

	now := s.clock()
	delta := now.Sub(s.last)
	s.last = now

	committed := false
	if l, ok := s.automaton.Observe(letter, delta); ok {
		committed = s.editor.InsertLetter(l)
		s.metrics.RecordCommit(ctx, observe.SourceAuto)
		s.logger.Debug("auto commit", zap.Stringer("letter", l))
	}

	reason := s.applyInput(ctx, committed)

	view := View{
		Letter:       s.automaton.Current(),
		Text:         s.editor.Text(),
		Ghost:        s.editor.Ghost(),
		Suggestions:  s.editor.Suggestions(),
		Mode:         s.cfg.Settings.Mode,
		AutoInput:    s.cfg.Settings.AutoInput,
		Progress:     s.automaton.Progress(),
		ShowProgress: s.cfg.Settings.AutoInput && s.automaton.Current().Valid(),
		Dark:         s.cfg.Settings.DarkOverlay,
		Buttons:      s.panel.Buttons(),
		Hover:        s.panel.Hover(),
	}
	if box != nil {
		view.Box = box.Rect()
	}
	if err := s.cfg.Surface.Render(frame, view); err != nil {
		s.logger.Debug("render failed", zap.Error(err))
	}

	s.metrics.RecordFrame(ctx, time.Since(began))

	if reason != ReasonNone {
		return reason
	}
	if s.cfg.Surface.Closed() {
		return ReasonWindowClosed
	}
	return ReasonNone
}

func (s *Session) layout(frame *gocv.Mat) {
	size := capture.Size(frame)
	if size.X == s.frameSize.x && size.Y == s.frameSize.y {
		return
	}
	s.frameSize.x, s.frameSize.y = size.X, size.Y
	s.panel.SetButtons(interact.LayoutButtons(size))
}

// observe runs detection, normalization and classification. Every failure,
// including a panic from OpenCV, drops this frame's observation.
func (s *Session) observe(ctx context.Context, frame *gocv.Mat) (letter alphabet.Letter, box *detector.BoundingBox) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("recovered frame panic", zap.Any("panic", r))
			s.metrics.RecordTransient(ctx, observe.StagePanic)
			letter, box = alphabet.None, nil
		}
	}()

	if s.cfg.Detector == nil {
		return alphabet.None, nil
	}

	box, err := s.cfg.Detector.Detect(frame)
	if err != nil {
		s.logger.Debug("detect failed", zap.Error(err))
		s.metrics.RecordTransient(ctx, observe.StageDetect)
		return alphabet.None, nil
	}
	if box == nil || box.Empty() || s.cfg.Classifier == nil {
		return alphabet.None, box
	}

	canvasMat, err := s.cfg.Normalizer.Normalize(*frame, box.Rect())
	if err != nil {
		s.logger.Debug("normalize failed", zap.Error(err))
		s.metrics.RecordTransient(ctx, observe.StageNormalize)
		return alphabet.None, box
	}
	defer canvasMat.Close()

	letter, err = classifier.Letter(s.cfg.Classifier, canvasMat)
	if err != nil {
		s.logger.Debug("classify failed", zap.Error(err))
		s.metrics.RecordTransient(ctx, observe.StageClassify)
		return alphabet.None, box
	}
	return letter, box
}

// applyInput drains one button click and one key press. A confirm key is
// ignored when the automaton already committed a letter this iteration.
func (s *Session) applyInput(ctx context.Context, committed bool) Reason {
	code := s.cfg.Surface.Poll()
	reason := ReasonNone

	switch action := s.panel.Take(); action {
	case interact.ActionBackspace:
		s.editor.Backspace()
	case interact.ActionSpace:
		s.editor.InsertSpace()
		s.metrics.RecordCommit(ctx, observe.SourceManual)
	case interact.ActionClear:
		s.editor.Clear()
	case interact.ActionEnd:
		reason = ReasonQuit
	}

	switch action, index := interact.Key(code); action {
	case interact.ActionConfirm:
		if committed {
			break
		}
		if s.editor.InsertLetter(s.automaton.Current()) {
			s.metrics.RecordCommit(ctx, observe.SourceManual)
		}
	case interact.ActionSelect:
		if s.editor.Select(index) {
			s.metrics.RecordCommit(ctx, observe.SourceSuggestion)
		}
	case interact.ActionQuit:
		reason = ReasonQuit
	}

	return reason
}

// release closes the surface and camera exactly once.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		if err := s.cfg.Surface.Close(); err != nil {
			s.logger.Warn("surface close failed", zap.Error(err))
		}
		if err := s.cfg.Camera.Close(); err != nil {
			s.logger.Warn("camera close failed", zap.Error(err))
		}
	})
}

func (s *Session) finish(reason Reason) {
	text := ""
	if s.editor != nil {
		text = s.editor.Text()
	}

	s.mu.Lock()
	s.result = Result{Text: text, Reason: reason}
	s.mu.Unlock()

	s.setState(StateStopped)
	s.logger.Info("session stopped",
		zap.Stringer("reason", reason),
		zap.Int("length", len(text)),
	)

	if strings.TrimSpace(text) == "" || s.cfg.History == nil {
		return
	}
	if err := s.cfg.History(text); err != nil {
		s.logger.Warn("saving history failed", zap.Error(err))
	}
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}
