// Package app is the shell around translation sessions: it launches at most
// one session at a time, hands finished transcripts to history, and manages
// the persisted settings and custom dictionary.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/signbridge/internal/canvas"
	"github.com/ayusman/signbridge/internal/capture"
	"github.com/ayusman/signbridge/internal/classifier"
	"github.com/ayusman/signbridge/internal/config"
	"github.com/ayusman/signbridge/internal/detector"
	"github.com/ayusman/signbridge/internal/observe"
	"github.com/ayusman/signbridge/internal/session"
	"github.com/ayusman/signbridge/internal/store"
	"github.com/ayusman/signbridge/internal/suggest"
	"github.com/ayusman/signbridge/internal/ui"
)

// WindowTitle is the title of the session window.
const WindowTitle = "SignBridge"

// ErrSessionActive is returned when a session is already running.
var ErrSessionActive = errors.New("app: a session is already active")

// Config holds the application's collaborators. Only Store is required;
// the rest default to the real devices and models described by Process.
type Config struct {
	Store   *store.Store
	Process *config.Config
	Logger  *zap.Logger
	Metrics *observe.Metrics

	// NewCamera and NewSurface build fresh devices for each session.
	NewCamera  func() capture.Camera
	NewSurface func() session.Surface

	Detector   detector.Detector
	Classifier classifier.Classifier
	Oracle     suggest.Oracle
}

// App launches sessions and owns the long-lived collaborators.
type App struct {
	config Config
	logger *zap.Logger

	mu           sync.Mutex
	active       *session.Session
	onSessionEnd func(session.Result)
}

// New creates an App. Collaborators that fail to initialize are logged and
// left out; sessions then run without letter recognition.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if cfg.Process == nil {
		cfg.Process = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.Default()
	}
	logger := cfg.Logger

	if cfg.NewCamera == nil {
		camCfg := cfg.Process.CaptureConfig()
		cfg.NewCamera = func() capture.Camera { return capture.NewCamera(camCfg) }
	}
	if cfg.NewSurface == nil {
		cfg.NewSurface = func() session.Surface { return ui.NewWindow(WindowTitle, logger) }
	}

	if cfg.Detector == nil {
		mp, err := detector.NewMediaPipeDetector(cfg.Process.DetectorConfig(), logger)
		if err != nil {
			logger.Warn("hand detection unavailable", zap.Error(err))
		} else {
			cfg.Detector = mp
		}
	}
	if cfg.Classifier == nil {
		net, err := classifier.NewNetClassifier(cfg.Process.ClassifierConfig(), logger)
		if err != nil {
			logger.Warn("letter classifier unavailable", zap.Error(err))
		} else {
			cfg.Classifier = net
		}
	}
	if cfg.Oracle == nil {
		cfg.Oracle = loadOracle(cfg.Process.Suggest.Lexicon, logger)
	}

	return &App{config: cfg, logger: logger.Named("app")}, nil
}

func loadOracle(path string, logger *zap.Logger) suggest.Oracle {
	if path == "" {
		return suggest.DefaultLexicon()
	}
	lex, err := suggest.LoadLexicon(path)
	if err != nil {
		logger.Warn("custom lexicon unavailable, using built-in", zap.String("path", path), zap.Error(err))
		return suggest.DefaultLexicon()
	}
	return lex
}

// OnSessionEnd sets a callback run after each session stops.
func (a *App) OnSessionEnd(fn func(session.Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSessionEnd = fn
}

// Active reports whether a session is running.
func (a *App) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isActive()
}

func (a *App) isActive() bool {
	if a.active == nil {
		return false
	}
	select {
	case <-a.active.Done():
		return false
	default:
		return true
	}
}

// RunSession runs a session on the calling goroutine until it stops.
func (a *App) RunSession(ctx context.Context) (session.Result, error) {
	s, err := a.claim()
	if err != nil {
		return session.Result{}, err
	}
	err = s.Run(ctx)
	res := s.Result()
	a.finished(s, res)
	return res, err
}

// StartSession launches a session on a new goroutine. Completion is
// signalled by the returned session's Done channel.
func (a *App) StartSession(ctx context.Context) (*session.Session, error) {
	s, err := a.claim()
	if err != nil {
		return nil, err
	}
	go func() {
		// highgui windows must be driven from a single OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := s.Run(ctx); err != nil {
			a.logger.Error("session failed", zap.String("session_id", s.ID()), zap.Error(err))
		}
		a.finished(s, s.Result())
	}()
	return s, nil
}

// StopSession asks the running session, if any, to stop.
func (a *App) StopSession() {
	a.mu.Lock()
	s := a.active
	a.mu.Unlock()

	if s != nil {
		s.Stop()
	}
}

func (a *App) claim() (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isActive() {
		return nil, ErrSessionActive
	}

	s, err := session.New(a.sessionConfig())
	if err != nil {
		return nil, err
	}
	a.active = s
	return s, nil
}

func (a *App) finished(s *session.Session, res session.Result) {
	a.mu.Lock()
	if a.active == s {
		a.active = nil
	}
	fn := a.onSessionEnd
	a.mu.Unlock()

	if fn != nil {
		fn(res)
	}
}

func (a *App) sessionConfig() session.Config {
	return session.Config{
		Settings:   a.settingsSnapshot(),
		Camera:     a.config.NewCamera(),
		Surface:    a.config.NewSurface(),
		Detector:   a.config.Detector,
		Classifier: a.config.Classifier,
		Normalizer: canvas.NewNormalizer(),
		Dictionary: a.config.Store.Words().List,
		Oracle:     a.config.Oracle,
		History:    a.config.Store.History().Sink,
		Logger:     a.config.Logger,
		Metrics:    a.config.Metrics,
	}
}

func (a *App) settingsSnapshot() session.Settings {
	st, err := a.config.Store.Settings().Load()
	if err != nil {
		a.logger.Warn("loading settings failed, using defaults", zap.Error(err))
		st = store.DefaultSettings()
	}
	return SessionSettings(st)
}

// SessionSettings converts persisted settings into a session snapshot.
func SessionSettings(st store.Settings) session.Settings {
	return session.Settings{
		Mirror:      st.Mirror,
		DarkOverlay: st.DarkOverlay,
		AutoInput:   st.AutoInput,
		Mode:        st.SuggestionMode,
		Threshold:   time.Duration(st.StabilitySeconds * float64(time.Second)),
	}
}

// Settings returns the persisted session settings.
func (a *App) Settings() (store.Settings, error) {
	return a.config.Store.Settings().Load()
}

// SaveSettings persists st. The stability threshold is clamped to the range
// the shell offers. Running sessions keep their snapshot.
func (a *App) SaveSettings(st store.Settings) error {
	st.StabilitySeconds = store.ClampStability(st.StabilitySeconds)
	return a.config.Store.Settings().Save(st)
}

// Words returns the custom dictionary.
func (a *App) Words() ([]string, error) {
	return a.config.Store.Words().List()
}

// AddWord adds a word to the custom dictionary and returns its stored form.
func (a *App) AddWord(word string) (string, error) {
	return a.config.Store.Words().Add(word)
}

// RemoveWord removes a word from the custom dictionary.
func (a *App) RemoveWord(word string) error {
	return a.config.Store.Words().Remove(word)
}

// ImportDictionary merges a JSON array of words from path into the custom
// dictionary and returns how many were new.
func (a *App) ImportDictionary(path string) (int, error) {
	words, err := suggest.LoadDictionaryFile(path)
	if err != nil {
		return 0, err
	}
	n, err := a.config.Store.Words().Import(words)
	if err != nil {
		return 0, fmt.Errorf("app: import dictionary: %w", err)
	}
	a.logger.Info("dictionary imported", zap.String("path", path), zap.Int("added", n))
	return n, nil
}

// History returns saved transcripts, newest first.
func (a *App) History() ([]*store.Entry, error) {
	return a.config.Store.History().List()
}

// DeleteHistory removes one saved transcript.
func (a *App) DeleteHistory(id string) error {
	return a.config.Store.History().Delete(id)
}

// ClearHistory removes every saved transcript.
func (a *App) ClearHistory() (int64, error) {
	return a.config.Store.History().Clear()
}

// Close stops any running session, waits for it, and releases the
// detector and classifier.
func (a *App) Close() error {
	a.mu.Lock()
	s := a.active
	a.mu.Unlock()

	if s != nil {
		s.Stop()
		<-s.Done()
	}

	var errs []error
	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	if a.config.Classifier != nil {
		if err := a.config.Classifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close classifier: %w", err))
		}
	}
	return errors.Join(errs...)
}
