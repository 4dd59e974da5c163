package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBlankTranscript is returned when appending whitespace-only text.
var ErrBlankTranscript = errors.New("transcript is blank")

// Entry is one saved transcript.
type Entry struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// HistoryRepository stores finished transcripts.
type HistoryRepository struct {
	db *sql.DB
}

// History returns the history repository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

// Append saves text as a new entry. Surrounding whitespace is trimmed.
func (r *HistoryRepository) Append(text string) (*Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrBlankTranscript
	}

	e := &Entry{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO history (id, text, created_at) VALUES (?, ?, ?)`,
		e.ID, e.Text, e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns all entries, newest first.
func (r *HistoryRepository) List() ([]*Entry, error) {
	rows, err := r.db.Query(
		`SELECT id, text, created_at FROM history ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Latest returns the newest entry.
func (r *HistoryRepository) Latest() (*Entry, error) {
	e := &Entry{}
	err := r.db.QueryRow(
		`SELECT id, text, created_at FROM history ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&e.ID, &e.Text, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes an entry by its ID.
func (r *HistoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Clear removes every entry and reports how many were deleted.
func (r *HistoryRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM history`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Sink adapts the repository to a session's history hand-off.
func (r *HistoryRepository) Sink(text string) error {
	_, err := r.Append(text)
	return err
}
