package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per finished capture session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			frame_count INTEGER NOT NULL,
			elapsed_seconds REAL NOT NULL,
			fps REAL NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Track points table - the smoothed position of every processed frame
		`CREATE TABLE IF NOT EXISTS track_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			x REAL NOT NULL CHECK(x >= 0 AND x <= 1),
			y REAL NOT NULL CHECK(y >= 0 AND y <= 1),
			detected INTEGER NOT NULL DEFAULT 0,
			UNIQUE(session_id, seq)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_track_points_session_id ON track_points(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
