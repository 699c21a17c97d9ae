// Package rep implements the repetition state machines: a hysteresis counter
// for discrete repetitions and a timer for isometric holds.
package rep

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Result is the state emitted after each processed frame.
type Result struct {
	Kind  exercise.Kind `json:"kind"`
	Stage string        `json:"stage"`
	// Count is the repetition count of a threshold exercise.
	Count int `json:"count"`
	// Seconds is the accrued hold time of a hold exercise.
	Seconds int `json:"seconds"`
	// Angle is the smoothed signal, or the body-line angle for a hold.
	Angle float64 `json:"angle"`
	// Visible is false when the visibility gate rejected the frame.
	Visible      bool `json:"visible"`
	StageChanged bool `json:"stage_changed"`
	Counted      bool `json:"counted"`
	Holding      bool `json:"holding"`
	Swinging     bool `json:"swinging,omitempty"`
}

// Value returns the count or the seconds depending on the kind.
func (r Result) Value() int {
	if r.Kind == exercise.KindHold {
		return r.Seconds
	}
	return r.Count
}

// Machine advances per-session detection state one frame at a time.
// Implementations are not safe for concurrent use.
type Machine interface {
	// Step processes one frame observed at now.
	Step(f *pose.Frame, now time.Time) Result
	// Reset returns the machine to the profile's initial state.
	Reset()
	// Snapshot returns the latest result without advancing.
	Snapshot() Result
}

// New returns the state machine variant matching the profile kind.
func New(p exercise.Profile) (Machine, error) {
	switch p.Kind {
	case exercise.KindThreshold:
		return NewCounter(p), nil
	case exercise.KindHold:
		return NewTimer(p), nil
	default:
		return nil, errors.Wrapf(exercise.ErrInvalidProfile, "%s: no state machine for kind %q", p.ID, p.Kind)
	}
}
