package smoothing

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// PositionFilter smooths landmark positions with one 2D Kalman filter per
// landmark. It runs before the angle computation and leaves landmarks that
// fail the visibility gate untouched, so an occluded point never drags its
// filter toward the estimator's pinned coordinates.
type PositionFilter struct {
	dt       float64
	stdDevA  float64
	stdDevM  float64
	trackers map[pose.LandmarkID]*kalman_filter.Kalman2D
}

// NewPositionFilter creates a filter stepping dt (in frames) per update.
func NewPositionFilter(dt float64) *PositionFilter {
	if dt <= 0 {
		dt = 1.0
	}
	return &PositionFilter{
		dt: dt,
		/* Kalman filter props, in normalized image units */
		stdDevA:  0.05,
		stdDevM:  0.02,
		trackers: make(map[pose.LandmarkID]*kalman_filter.Kalman2D),
	}
}

// Apply returns a copy of frame whose usable landmarks carry filtered positions.
func (p *PositionFilter) Apply(frame *pose.Frame, minConfidence float64) (*pose.Frame, error) {
	if frame == nil {
		return nil, nil
	}

	out := frame.Clone()
	for id, lm := range frame.Points {
		if !pose.IsUsable(lm, minConfidence) {
			continue
		}

		tracker, ok := p.trackers[id]
		if !ok {
			// No control input: landmarks are not driven by a known acceleration.
			tracker = kalman_filter.NewKalman2D(p.dt, 0, 0, p.stdDevA, p.stdDevM, p.stdDevM, kalman_filter.WithState2D(lm.X, lm.Y))
			p.trackers[id] = tracker
		}

		tracker.Predict()
		if err := tracker.Update(lm.X, lm.Y); err != nil {
			return nil, errors.Wrapf(err, "Can't update position tracker for landmark %d", id)
		}

		x, y := tracker.GetState()
		lm.X, lm.Y = x, y
		out.Points[id] = lm
	}

	return out, nil
}

// Reset drops every per-landmark tracker.
func (p *PositionFilter) Reset() {
	p.trackers = make(map[pose.LandmarkID]*kalman_filter.Kalman2D)
}
