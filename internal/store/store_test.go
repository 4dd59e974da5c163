package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/signbridge/internal/suggest"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"settings", "custom_words", "history"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := s.Words().Add("hello"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	words, err := s.Words().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(words, []string{"HELLO"}) {
		t.Errorf("words = %v, want [HELLO]", words)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestSettings_DefaultsWhenEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Settings().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("Load() = %+v, want defaults %+v", got, DefaultSettings())
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	want := Settings{
		Mirror:           false,
		DarkOverlay:      false,
		AutoInput:        false,
		SuggestionMode:   suggest.ModeCustom,
		StabilitySeconds: 2.5,
	}
	if err := repo.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// Saving again overwrites rather than duplicating.
	want.Mirror = true
	if err := repo.Save(want); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	got, _ = repo.Load()
	if !got.Mirror {
		t.Error("Mirror should be true after second save")
	}
}

func TestSettings_SaveRejectsNonPositiveThreshold(t *testing.T) {
	s := newTestStore(t)

	st := DefaultSettings()
	st.StabilitySeconds = 0
	if err := s.Settings().Save(st); err == nil {
		t.Error("expected error for zero threshold")
	}
}

func TestSettings_CorruptValuesFallBack(t *testing.T) {
	s := newTestStore(t)

	rows := map[string]string{
		KeyMirror:           "sideways",
		KeyAutoInput:        "false",
		KeySuggestionMode:   "telepathy",
		KeyStabilitySeconds: "-3",
	}
	for k, v := range rows {
		if _, err := s.DB().Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}

	got, err := s.Settings().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := DefaultSettings()
	if got.Mirror != def.Mirror {
		t.Errorf("Mirror = %v, want default %v", got.Mirror, def.Mirror)
	}
	if got.AutoInput {
		t.Error("AutoInput should take the valid stored value false")
	}
	if got.SuggestionMode != def.SuggestionMode {
		t.Errorf("SuggestionMode = %v, want default %v", got.SuggestionMode, def.SuggestionMode)
	}
	if got.StabilitySeconds != def.StabilitySeconds {
		t.Errorf("StabilitySeconds = %v, want default %v", got.StabilitySeconds, def.StabilitySeconds)
	}
}

func TestClampStability(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.2, 1},
		{1, 1},
		{3.5, 3.5},
		{9, 5},
	}
	for _, tt := range tests {
		if got := ClampStability(tt.in); got != tt.want {
			t.Errorf("ClampStability(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWordRepository_AddListRemove(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	for _, w := range []string{" apple", "apply", "Banana"} {
		if _, err := repo.Add(w); err != nil {
			t.Fatalf("Add(%q) error = %v", w, err)
		}
	}

	if _, err := repo.Add("APPLE "); !errors.Is(err, ErrDuplicateWord) {
		t.Errorf("Add duplicate error = %v, want ErrDuplicateWord", err)
	}
	if _, err := repo.Add("   "); !errors.Is(err, ErrEmptyWord) {
		t.Errorf("Add blank error = %v, want ErrEmptyWord", err)
	}

	words, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"APPLE", "APPLY", "BANANA"}; !reflect.DeepEqual(words, want) {
		t.Errorf("List() = %v, want %v", words, want)
	}

	if err := repo.Remove("apply"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := repo.Remove("apply"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}

	// New words go after the current last one.
	if _, err := repo.Add("cherry"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	words, _ = repo.List()
	if want := []string{"APPLE", "BANANA", "CHERRY"}; !reflect.DeepEqual(words, want) {
		t.Errorf("List() = %v, want %v", words, want)
	}
}

func TestWordRepository_Import(t *testing.T) {
	s := newTestStore(t)
	repo := s.Words()

	if _, err := repo.Add("apple"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	n, err := repo.Import([]string{"Apple", "", "kiwi", "mango", "KIWI"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Import() added %d, want 2", n)
	}

	words, _ := repo.List()
	if want := []string{"APPLE", "KIWI", "MANGO"}; !reflect.DeepEqual(words, want) {
		t.Errorf("List() = %v, want %v", words, want)
	}
}

func TestHistoryRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.History()

	if _, err := repo.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() on empty history error = %v, want ErrNotFound", err)
	}

	if _, err := repo.Append("  \n "); !errors.Is(err, ErrBlankTranscript) {
		t.Errorf("Append blank error = %v, want ErrBlankTranscript", err)
	}

	first, err := repo.Append("HELLO ")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first.Text != "HELLO" {
		t.Errorf("Text = %q, want trimmed HELLO", first.Text)
	}
	if err := repo.Sink("GOOD NIGHT"); err != nil {
		t.Fatalf("Sink() error = %v", err)
	}

	entries, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Text != "GOOD NIGHT" || entries[1].Text != "HELLO" {
		t.Errorf("List() order = [%q %q], want newest first", entries[0].Text, entries[1].Text)
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Text != "GOOD NIGHT" {
		t.Errorf("Latest() = %q, want GOOD NIGHT", latest.Text)
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	n, err := repo.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Clear() removed %d, want 1", n)
	}
	entries, _ = repo.List()
	if len(entries) != 0 {
		t.Errorf("List() after Clear = %d entries, want 0", len(entries))
	}
}
