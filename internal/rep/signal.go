package rep

import (
	"math"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/geometry"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Reading is the raw, unsmoothed signal extracted from one frame.
type Reading struct {
	// Value is the combined signal fed to the smoothing filter.
	Value float64
	// Left and Right hold the per-side signal when that side was usable.
	Left, Right float64
	// Sides counts the usable sides.
	Sides int
	// Spread is |Left-Right| when both sides were usable.
	Spread float64
}

// Visible reports whether at least one side passed the visibility gate.
func (r Reading) Visible() bool {
	return r.Sides > 0
}

// Read extracts the profile's signal from f, applying the visibility gate per
// side and the profile's combine policy.
func Read(p exercise.Profile, f *pose.Frame) Reading {
	var (
		r      Reading
		values = make(map[pose.Side]float64, 2)
	)

	for _, s := range p.Sides {
		v, ok := sideValue(p, f, s)
		if !ok {
			continue
		}
		values[s] = v
		if s == pose.Left {
			r.Left = v
		} else {
			r.Right = v
		}
	}

	r.Sides = len(values)
	switch r.Sides {
	case 0:
		return r
	case 1:
		for _, v := range values {
			r.Value = v
		}
		return r
	}

	r.Spread = math.Abs(r.Left - r.Right)

	switch p.Combine {
	case exercise.CombineMax:
		r.Value = math.Max(r.Left, r.Right)
	case exercise.CombineMin:
		r.Value = math.Min(r.Left, r.Right)
	case exercise.CombineAverage:
		r.Value = (r.Left + r.Right) / 2
	case exercise.CombinePreferVisible:
		// Ties go to the left side.
		if f.MeanVisibility(pose.Right, p.Joints...) > f.MeanVisibility(pose.Left, p.Joints...) {
			r.Value = r.Right
		} else {
			r.Value = r.Left
		}
	}
	return r
}

func sideValue(p exercise.Profile, f *pose.Frame, s pose.Side) (float64, bool) {
	if f == nil || !f.SideUsable(s, p.MinVisibility, p.Joints...) {
		return 0, false
	}

	point := func(i int) pose.Point3D {
		lm, _ := f.Get(p.Joints[i].On(s))
		return lm.Point3D
	}

	switch p.Signal {
	case exercise.SignalAngle:
		return geometry.Angle(point(0), point(1), point(2)), true
	case exercise.SignalLift:
		return geometry.Lift(point(0), point(1)), true
	default:
		return 0, false
	}
}
