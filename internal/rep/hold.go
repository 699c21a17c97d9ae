package rep

import (
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Timer accrues whole seconds while a posture is held. The posture must stay
// valid for the stabilization window before any time accrues, and breaking it
// restarts stabilization from zero. Time spent out of view is never credited.
// Seconds never decrease.
type Timer struct {
	profile exercise.Profile

	holding     bool
	stableSince time.Time
	lastTick    time.Time
	lastSeen    time.Time
	occluded    bool
	seconds     int
	last        Result
}

// NewTimer creates a timer that is not holding.
func NewTimer(p exercise.Profile) *Timer {
	t := &Timer{profile: p}
	t.Reset()
	return t
}

// Reset clears the accrued time and the stabilization state.
func (t *Timer) Reset() {
	t.holding = false
	t.stableSince = time.Time{}
	t.lastTick = time.Time{}
	t.lastSeen = time.Time{}
	t.occluded = false
	t.seconds = 0
	t.last = Result{
		Kind:  exercise.KindHold,
		Stage: t.profile.InitialStage,
	}
}

// Snapshot returns the latest result.
func (t *Timer) Snapshot() Result {
	return t.last
}

// Step assesses the posture in f observed at now.
func (t *Timer) Step(f *pose.Frame, now time.Time) Result {
	h := t.profile.Hold
	posture := AssessPlank(t.profile, f)
	if !posture.Visible {
		res := t.last
		res.Visible = false
		res.StageChanged = false
		t.last = res
		t.occluded = true
		return res
	}

	wasHolding := t.holding

	if !t.lastSeen.IsZero() {
		gap := now.Sub(t.lastSeen)
		switch {
		case gap > h.OcclusionGrace:
			t.breakHold()
		case t.occluded && t.holding:
			t.lastTick = t.lastTick.Add(gap)
		case t.occluded && !t.stableSince.IsZero():
			t.stableSince = t.stableSince.Add(gap)
		}
	}
	t.lastSeen = now
	t.occluded = false

	if !posture.Valid {
		t.breakHold()
	} else {
		if !t.holding {
			if t.stableSince.IsZero() {
				t.stableSince = now
			}
			if now.Sub(t.stableSince) >= h.Stabilize {
				t.holding = true
				t.lastTick = now
			}
		}
		if t.holding {
			for now.Sub(t.lastTick) >= h.Tick {
				t.seconds++
				t.lastTick = t.lastTick.Add(h.Tick)
			}
		}
	}

	stage := t.profile.RestStage
	if t.holding {
		stage = t.profile.ActiveStage
	}

	t.last = Result{
		Kind:         exercise.KindHold,
		Stage:        stage,
		Seconds:      t.seconds,
		Angle:        posture.Angle,
		Visible:      true,
		StageChanged: t.holding != wasHolding,
		Holding:      t.holding,
	}
	return t.last
}

func (t *Timer) breakHold() {
	t.holding = false
	t.stableSince = time.Time{}
}
