package app

import (
	"errors"
	"sync"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
)

// recordBatch is the number of frames written per transaction.
const recordBatch = 30

var (
	// ErrNoStore is returned by recording calls when the app has no store.
	ErrNoStore = errors.New("no store configured")
	// ErrAlreadyRecording is returned when a recording is in progress.
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNotRecording is returned when no recording is in progress.
	ErrNotRecording = errors.New("not recording")
)

// recorder buffers detected frames and appends them to a stored recording.
type recorder struct {
	mu   sync.Mutex
	repo *store.RecordingRepository
	id   string
	buf  []*pose.Frame
}

func (r *recorder) add(f *pose.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = append(r.buf, f.Clone())
	if len(r.buf) < recordBatch {
		return nil
	}
	return r.flushLocked()
}

func (r *recorder) flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *recorder) flushLocked() error {
	if len(r.buf) == 0 {
		return nil
	}
	_, err := r.repo.AppendFrames(r.id, r.buf)
	r.buf = r.buf[:0]
	return err
}

// StartRecording stores every detected frame of the selected exercise under
// a new recording until StopRecording.
func (a *App) StartRecording(name string) (*store.Recording, error) {
	s := a.config.Store
	if s == nil {
		return nil, ErrNoStore
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recorder != nil {
		return nil, ErrAlreadyRecording
	}

	rec := &store.Recording{ExerciseID: a.exercise, Name: name}
	if err := s.Recordings().Create(rec); err != nil {
		return nil, err
	}
	a.recorder = &recorder{repo: s.Recordings(), id: rec.ID}
	return rec, nil
}

// StopRecording flushes buffered frames and returns the finished recording.
func (a *App) StopRecording() (*store.Recording, error) {
	a.mu.Lock()
	r := a.recorder
	a.recorder = nil
	a.mu.Unlock()

	if r == nil {
		return nil, ErrNotRecording
	}
	if err := r.flush(); err != nil {
		return nil, err
	}
	return r.repo.GetByID(r.id)
}

// Recording reports whether frames are being recorded.
func (a *App) Recording() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.recorder != nil
}
