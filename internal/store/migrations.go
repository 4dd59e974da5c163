package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - session settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Custom words table - the user's dictionary, in insertion order
		`CREATE TABLE IF NOT EXISTS custom_words (
			word TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// History table - final transcripts of finished sessions
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_custom_words_position ON custom_words(position)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
