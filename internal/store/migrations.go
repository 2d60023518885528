package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Label events - one row per stable label change
		`CREATE TABLE IF NOT EXISTS label_events (
			id TEXT PRIMARY KEY,
			stream TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('letter', 'word')),
			label TEXT NOT NULL,
			committed_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_label_events_stream_time ON label_events(stream, committed_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
