package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Recording is a named sequence of frames captured for one exercise.
type Recording struct {
	ID         string    `json:"id"`
	ExerciseID string    `json:"exercise_id"`
	Name       string    `json:"name"`
	Frames     int       `json:"frames"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordingRepository provides CRUD operations for recordings and their frames.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create inserts a new, empty recording. An empty ID is filled with a UUID.
func (r *RecordingRepository) Create(rec *Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Frames = 0
	rec.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO recordings (id, exercise_id, name, frames, created_at) VALUES (?, ?, ?, 0, ?)`,
		rec.ID, rec.ExerciseID, rec.Name, rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*Recording, error) {
	rec := &Recording{}
	err := r.db.QueryRow(
		`SELECT id, exercise_id, name, frames, created_at FROM recordings WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.ExerciseID, &rec.Name, &rec.Frames, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, exercise_id, name, frames, created_at FROM recordings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec := &Recording{}
		if err := rows.Scan(&rec.ID, &rec.ExerciseID, &rec.Name, &rec.Frames, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// AppendFrames adds frames to the end of a recording in a single transaction
// and returns the new frame total.
func (r *RecordingRepository) AppendFrames(id string, frames []*pose.Frame) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT frames FROM recordings WHERE id = ?`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO recording_frames (recording_id, sequence, captured_at_ms, data) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, f := range frames {
		if f == nil {
			continue
		}
		data, err := json.Marshal(f)
		if err != nil {
			return 0, fmt.Errorf("failed to encode frame %d: %w", count, err)
		}

		var capturedMs int64
		if !f.CapturedAt.IsZero() {
			capturedMs = f.CapturedAt.UnixMilli()
		}

		if _, err := stmt.Exec(id, count, capturedMs, string(data)); err != nil {
			return 0, err
		}
		count++
	}

	if _, err := tx.Exec(`UPDATE recordings SET frames = ? WHERE id = ?`, count, id); err != nil {
		return 0, err
	}

	return count, tx.Commit()
}

// Frames returns the frames of a recording in capture order.
func (r *RecordingRepository) Frames(id string) ([]*pose.Frame, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT data FROM recording_frames WHERE recording_id = ? ORDER BY sequence`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []*pose.Frame
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		f := pose.NewFrame()
		if err := json.Unmarshal([]byte(data), f); err != nil {
			return nil, fmt.Errorf("failed to decode frame: %w", err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
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
