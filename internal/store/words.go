package store

import (
	"database/sql"
	"errors"

	"github.com/ayusman/signbridge/internal/suggest"
)

// Custom dictionary errors.
var (
	ErrEmptyWord     = errors.New("word is empty")
	ErrDuplicateWord = errors.New("word already in dictionary")
)

// WordRepository manages the custom dictionary.
type WordRepository struct {
	db *sql.DB
}

// Words returns the custom dictionary repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// List returns the dictionary in insertion order.
func (r *WordRepository) List() ([]string, error) {
	rows, err := r.db.Query(`SELECT word FROM custom_words ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Add appends a word after normalizing it. It returns the stored form.
func (r *WordRepository) Add(word string) (string, error) {
	w := suggest.NormalizeWord(word)
	if w == "" {
		return "", ErrEmptyWord
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	added, err := insertWord(tx, w)
	if err != nil {
		return "", err
	}
	if !added {
		return "", ErrDuplicateWord
	}

	return w, tx.Commit()
}

// Remove deletes a word. Matching is on the normalized form.
func (r *WordRepository) Remove(word string) error {
	result, err := r.db.Exec(`DELETE FROM custom_words WHERE word = ?`, suggest.NormalizeWord(word))
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

// Import appends every word not already present, in order, and returns how
// many were added. Blank entries are skipped.
func (r *WordRepository) Import(words []string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for _, word := range words {
		w := suggest.NormalizeWord(word)
		if w == "" {
			continue
		}
		added, err := insertWord(tx, w)
		if err != nil {
			return 0, err
		}
		if added {
			n++
		}
	}

	return n, tx.Commit()
}

func insertWord(tx *sql.Tx, w string) (bool, error) {
	result, err := tx.Exec(
		`INSERT INTO custom_words (word, position)
		 SELECT ?, COALESCE(MAX(position), 0) + 1 FROM custom_words
		 WHERE NOT EXISTS (SELECT 1 FROM custom_words WHERE word = ?)`,
		w, w,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}
