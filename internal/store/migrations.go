package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profile overrides - one JSON document per exercise
		`CREATE TABLE IF NOT EXISTS profile_overrides (
			exercise_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recordings - named landmark sequences for one exercise
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recording frames - one wire-format frame per row
		`CREATE TABLE IF NOT EXISTS recording_frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			captured_at_ms INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recordings_exercise_id ON recordings(exercise_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_recording_frames_sequence ON recording_frames(recording_id, sequence)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
