package rep

import (
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/geometry"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Posture is the plank assessment of one frame.
type Posture struct {
	// Visible is true when shoulders, hips, knees and ankles are each usable
	// on at least one side.
	Visible bool
	// Valid is the full plank predicate.
	Valid bool
	// Angle is the shoulder-hip-ankle line of the first fully usable side.
	Angle float64
}

// AssessPlank evaluates the plank predicate: the torso and one leg run
// horizontally and a shoulder sits above its elbow.
func AssessPlank(p exercise.Profile, f *pose.Frame) Posture {
	if f == nil {
		return Posture{}
	}
	minVis := p.MinVisibility

	usable := func(j pose.Joint, s pose.Side) (pose.Point3D, bool) {
		lm, ok := f.Usable(j.On(s), minVis)
		return lm.Point3D, ok
	}
	either := func(j pose.Joint) (pose.Point3D, bool) {
		for _, s := range p.Sides {
			if pt, ok := usable(j, s); ok {
				return pt, true
			}
		}
		return pose.Point3D{}, false
	}
	onSides := func(j pose.Joint) []pose.LandmarkID {
		ids := make([]pose.LandmarkID, 0, len(p.Sides))
		for _, s := range p.Sides {
			ids = append(ids, j.On(s))
		}
		return ids
	}
	point := func(j pose.Joint, s pose.Side) pose.Point3D {
		lm, _ := f.Get(j.On(s))
		return lm.Point3D
	}

	shoulder, okShoulder := either(pose.Shoulder)
	hip, okHip := either(pose.Hip)

	var out Posture
	out.Visible = okShoulder && okHip &&
		f.AnyUsable(minVis, onSides(pose.Knee)...) &&
		f.AnyUsable(minVis, onSides(pose.Ankle)...)
	if !out.Visible {
		return out
	}

	for _, s := range p.Sides {
		if f.AllUsable(minVis, pose.Shoulder.On(s), pose.Hip.On(s), pose.Ankle.On(s)) {
			out.Angle = geometry.Angle(point(pose.Shoulder, s), point(pose.Hip, s), point(pose.Ankle, s))
			break
		}
	}

	torso := geometry.Horizontal(shoulder, hip, p.Hold.TorsoRatio)

	legs := false
	for _, s := range p.Sides {
		if f.AllUsable(minVis, pose.Hip.On(s), pose.Knee.On(s), pose.Ankle.On(s)) &&
			geometry.Horizontal(point(pose.Knee, s), point(pose.Ankle, s), p.Hold.LegRatio) {
			legs = true
			break
		}
	}

	supported := false
	for _, s := range p.Sides {
		sh, okS := usable(pose.Shoulder, s)
		elbow, okE := usable(pose.Elbow, s)
		if okS && okE && geometry.Lift(sh, elbow) > 0 {
			supported = true
			break
		}
	}

	out.Valid = torso && legs && supported
	return out
}
