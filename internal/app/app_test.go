package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/zaptest"
	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/capture"
	"github.com/ayusman/signbridge/internal/classifier"
	"github.com/ayusman/signbridge/internal/detector"
	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/observe"
	"github.com/ayusman/signbridge/internal/session"
	"github.com/ayusman/signbridge/internal/store"
	"github.com/ayusman/signbridge/internal/suggest"
)

// scriptedSurface presses keys on given polls and closes after closeAfter
// renders (never when zero).
type scriptedSurface struct {
	mu         sync.Mutex
	keys       map[int]int
	closeAfter int
	polls      int
	renders    int
	last       session.View
}

func (s *scriptedSurface) Open(*interact.Panel) error { return nil }

func (s *scriptedSurface) Poll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if k, ok := s.keys[s.polls]; ok {
		return k
	}
	return interact.KeyNone
}

func (s *scriptedSurface) Render(_ *gocv.Mat, v session.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	s.last = v
	return nil
}

func (s *scriptedSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeAfter > 0 && s.renders >= s.closeAfter
}

func (s *scriptedSurface) Close() error { return nil }

type testEnv struct {
	app      *App
	store    *store.Store
	surfaces []*scriptedSurface
	script   func() *scriptedSurface
	detector *detector.MockDetector
	cls      *classifier.MockClassifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	env := &testEnv{
		store:    st,
		detector: detector.NewMockDetector(),
		cls:      classifier.NewMockClassifier(0),
		script:   func() *scriptedSurface { return &scriptedSurface{keys: map[int]int{}} },
	}
	env.detector.SetBox(&detector.BoundingBox{X: 200, Y: 100, Width: 100, Height: 150})

	var mu sync.Mutex
	env.app, err = New(Config{
		Store:   st,
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics,
		NewCamera: func() capture.Camera {
			return capture.NewMockCamera([]*gocv.Mat{&frame}, true)
		},
		NewSurface: func() session.Surface {
			mu.Lock()
			defer mu.Unlock()
			s := env.script()
			env.surfaces = append(env.surfaces, s)
			return s
		},
		Detector:   env.detector,
		Classifier: env.cls,
		Oracle:     suggest.DefaultLexicon(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return env
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without store")
	}
}

func TestRunSession_SavesHistory(t *testing.T) {
	env := newTestEnv(t)

	st := store.DefaultSettings()
	st.AutoInput = false
	if err := env.app.SaveSettings(st); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	env.script = func() *scriptedSurface {
		return &scriptedSurface{keys: map[int]int{2: ' ', 3: ' '}, closeAfter: 3}
	}

	var ended []session.Result
	env.app.OnSessionEnd(func(r session.Result) { ended = append(ended, r) })

	res, err := env.app.RunSession(context.Background())
	if err != nil {
		t.Fatalf("RunSession() error = %v", err)
	}
	if res.Text != "AA" {
		t.Errorf("Text = %q, want AA", res.Text)
	}
	if len(ended) != 1 || ended[0].Text != "AA" {
		t.Errorf("OnSessionEnd results = %v", ended)
	}

	entries, err := env.app.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "AA" {
		t.Fatalf("History() = %v, want one AA entry", entries)
	}

	if err := env.app.DeleteHistory(entries[0].ID); err != nil {
		t.Errorf("DeleteHistory() error = %v", err)
	}
	if n, err := env.app.ClearHistory(); err != nil || n != 0 {
		t.Errorf("ClearHistory() = %d, %v, want 0, nil", n, err)
	}
}

func TestStartSession_OneAtATime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s, err := env.app.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if !env.app.Active() {
		t.Error("Active() should be true while the session runs")
	}

	if _, err := env.app.StartSession(ctx); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second StartSession() error = %v, want ErrSessionActive", err)
	}
	if _, err := env.app.RunSession(ctx); !errors.Is(err, ErrSessionActive) {
		t.Errorf("RunSession() error = %v, want ErrSessionActive", err)
	}

	env.app.StopSession()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
	if s.Result().Reason != session.ReasonStopped {
		t.Errorf("Reason = %v, want stopped", s.Result().Reason)
	}

	// A finished session frees the slot at once.
	next, err := env.app.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession() after stop error = %v", err)
	}
	if next.ID() == s.ID() {
		t.Error("each launch should create a fresh session")
	}
	if err := env.app.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if env.app.Active() {
		t.Error("Active() should be false after Close")
	}
}

func TestSessionUsesSettingsSnapshot(t *testing.T) {
	env := newTestEnv(t)

	st := store.DefaultSettings()
	st.AutoInput = false
	st.SuggestionMode = suggest.ModeCustom
	if err := env.app.SaveSettings(st); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if _, err := env.app.AddWord("apple"); err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	if _, err := env.app.AddWord("apply"); err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	env.script = func() *scriptedSurface {
		return &scriptedSurface{keys: map[int]int{2: ' ', 3: '1'}, closeAfter: 3}
	}

	res, err := env.app.RunSession(context.Background())
	if err != nil {
		t.Fatalf("RunSession() error = %v", err)
	}
	if res.Text != "APPLE " {
		t.Errorf("Text = %q, want %q", res.Text, "APPLE ")
	}
}

func TestSaveSettings_ClampsThreshold(t *testing.T) {
	env := newTestEnv(t)

	st := store.DefaultSettings()
	st.StabilitySeconds = 12
	if err := env.app.SaveSettings(st); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	got, err := env.app.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if got.StabilitySeconds != store.MaxStabilitySeconds {
		t.Errorf("StabilitySeconds = %v, want %v", got.StabilitySeconds, store.MaxStabilitySeconds)
	}
}

func TestSessionSettings(t *testing.T) {
	got := SessionSettings(store.Settings{
		Mirror:           true,
		AutoInput:        true,
		SuggestionMode:   suggest.ModeCustom,
		StabilitySeconds: 1.5,
	})
	want := session.Settings{
		Mirror:    true,
		AutoInput: true,
		Mode:      suggest.ModeCustom,
		Threshold: 1500 * time.Millisecond,
	}
	if got != want {
		t.Errorf("SessionSettings() = %+v, want %+v", got, want)
	}
}

func TestDictionaryManagement(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "custom_dict.json")
	if err := os.WriteFile(path, []byte(`["hello", "WORLD", "hello", " "]`), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := env.app.ImportDictionary(path)
	if err != nil {
		t.Fatalf("ImportDictionary() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ImportDictionary() added %d, want 2", n)
	}

	if _, err := env.app.AddWord("world"); !errors.Is(err, store.ErrDuplicateWord) {
		t.Errorf("AddWord duplicate error = %v", err)
	}
	if err := env.app.RemoveWord("hello"); err != nil {
		t.Errorf("RemoveWord() error = %v", err)
	}

	words, err := env.app.Words()
	if err != nil {
		t.Fatalf("Words() error = %v", err)
	}
	if !reflect.DeepEqual(words, []string{"WORLD"}) {
		t.Errorf("Words() = %v, want [WORLD]", words)
	}

	if _, err := env.app.ImportDictionary(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing dictionary file")
	}
}

func TestLoadOracle(t *testing.T) {
	if loadOracle("", nil) != suggest.DefaultLexicon() {
		t.Error("empty path should use the built-in lexicon")
	}

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("zebra\nzero\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	oracle := loadOracle(path, zaptest.NewLogger(t))
	got, err := oracle.Candidates("zebr")
	if err != nil || !reflect.DeepEqual(got, []string{"zebra"}) {
		t.Errorf("Candidates(zebr) = %v, %v", got, err)
	}

	if loadOracle(filepath.Join(t.TempDir(), "missing.txt"), zaptest.NewLogger(t)) != suggest.DefaultLexicon() {
		t.Error("unreadable lexicon should fall back to the built-in list")
	}
}
