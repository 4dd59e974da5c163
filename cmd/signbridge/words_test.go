package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/signbridge/internal/app"
	"github.com/ayusman/signbridge/internal/classifier"
	"github.com/ayusman/signbridge/internal/detector"
	"github.com/ayusman/signbridge/internal/store"
	"github.com/ayusman/signbridge/internal/suggest"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a, err := app.New(app.Config{
		Store:      st,
		Logger:     zaptest.NewLogger(t),
		Detector:   detector.NewMockDetector(),
		Classifier: classifier.NewMockClassifier(0),
		Oracle:     suggest.DefaultLexicon(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return a
}

func TestDictionaryOps_Requested(t *testing.T) {
	if (dictionaryOps{}).requested() {
		t.Error("zero value should not be requested")
	}
	if !(dictionaryOps{list: true}).requested() {
		t.Error("list should be requested")
	}
}

func TestDictionaryOps_Run(t *testing.T) {
	a := newTestApp(t)

	path := filepath.Join(t.TempDir(), "custom_dict.json")
	if err := os.WriteFile(path, []byte(`["apple", "apply"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ops := dictionaryOps{importPath: path, add: " banana ", remove: "apple", list: true}
	if err := ops.run(&out, a); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := "imported 2 new words\nadded BANANA\nremoved apple\nAPPLY\nBANANA\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDictionaryOps_Errors(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer

	if err := (dictionaryOps{remove: "missing"}).run(&out, a); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("remove missing error = %v, want ErrNotFound", err)
	}
	if err := (dictionaryOps{add: "  "}).run(&out, a); !errors.Is(err, store.ErrEmptyWord) {
		t.Errorf("add blank error = %v, want ErrEmptyWord", err)
	}
}
