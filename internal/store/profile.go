package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
)

// ProfileRepository persists exercise profile overrides.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile override repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Upsert stores the override for exerciseID, replacing any previous one.
func (r *ProfileRepository) Upsert(exerciseID string, o exercise.Override) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO profile_overrides (exercise_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(exercise_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		exerciseID, string(data), time.Now(),
	)
	return err
}

// Get returns the override stored for exerciseID.
func (r *ProfileRepository) Get(exerciseID string) (exercise.Override, error) {
	var data string
	err := r.db.QueryRow(
		`SELECT data FROM profile_overrides WHERE exercise_id = ?`,
		exerciseID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exercise.Override{}, ErrNotFound
		}
		return exercise.Override{}, err
	}

	var o exercise.Override
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return exercise.Override{}, fmt.Errorf("failed to decode override for %s: %w", exerciseID, err)
	}
	return o, nil
}

// List returns every stored override keyed by exercise identifier.
func (r *ProfileRepository) List() (map[string]exercise.Override, error) {
	rows, err := r.db.Query(`SELECT exercise_id, data FROM profile_overrides ORDER BY exercise_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]exercise.Override)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}

		var o exercise.Override
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, fmt.Errorf("failed to decode override for %s: %w", id, err)
		}
		out[id] = o
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the override for exerciseID.
func (r *ProfileRepository) Delete(exerciseID string) error {
	result, err := r.db.Exec(`DELETE FROM profile_overrides WHERE exercise_id = ?`, exerciseID)
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
