// Package posetest builds synthetic pose frames for tests.
package posetest

import (
	"math"
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Visible is the visibility assigned to landmarks the estimator sees clearly.
const Visible = 0.95

// segment is the limb length used by the synthetic chains.
const segment = 0.15

func lm(x, y, vis float64) pose.Landmark {
	return pose.Landmark{Point3D: pose.Point3D{X: x, Y: y}, Visibility: vis}
}

// Chain places a three-joint chain on one side of f so that the interior angle
// at v equals angleDeg. The a segment points up from the vertex and the c
// segment is rotated outward, mirrored between the left and right side.
func Chain(f *pose.Frame, s pose.Side, a, v, c pose.Joint, vertex pose.Point3D, angleDeg, vis float64) {
	dir := -1.0
	if s == pose.Right {
		dir = 1.0
	}
	rad := angleDeg * math.Pi / 180

	f.Set(a.On(s), lm(vertex.X, vertex.Y-segment, vis))
	f.Set(v.On(s), lm(vertex.X, vertex.Y, vis))
	f.Set(c.On(s), lm(vertex.X+dir*segment*math.Sin(rad), vertex.Y-segment*math.Cos(rad), vis))
}

func bilateral(a, v, c pose.Joint, y, leftDeg, rightDeg, vis float64) *pose.Frame {
	f := pose.NewFrame()
	Chain(f, pose.Left, a, v, c, pose.Point3D{X: 0.35, Y: y}, leftDeg, vis)
	Chain(f, pose.Right, a, v, c, pose.Point3D{X: 0.65, Y: y}, rightDeg, vis)
	return f
}

// Arms returns a frame whose elbows (shoulder-elbow-wrist) bend to angleDeg on both sides.
func Arms(angleDeg float64) *pose.Frame {
	return bilateral(pose.Shoulder, pose.Elbow, pose.Wrist, 0.45, angleDeg, angleDeg, Visible)
}

// Legs returns a frame whose knees (hip-knee-ankle) bend to angleDeg on both sides.
func Legs(angleDeg float64) *pose.Frame {
	return bilateral(pose.Hip, pose.Knee, pose.Ankle, 0.6, angleDeg, angleDeg, Visible)
}

// LegsSplit bends the left and right knee independently.
func LegsSplit(leftDeg, rightDeg float64) *pose.Frame {
	return bilateral(pose.Hip, pose.Knee, pose.Ankle, 0.6, leftDeg, rightDeg, Visible)
}

// Hips returns a frame whose hips (shoulder-hip-knee) flex to angleDeg on both sides.
func Hips(angleDeg float64) *pose.Frame {
	return bilateral(pose.Shoulder, pose.Hip, pose.Knee, 0.5, angleDeg, angleDeg, Visible)
}

// Raise returns a frame with the arms abducted (hip-shoulder-elbow) to the given angles.
func Raise(leftDeg, rightDeg float64) *pose.Frame {
	return bilateral(pose.Hip, pose.Shoulder, pose.Elbow, 0.4, leftDeg, rightDeg, Visible)
}

// Press returns a frame with both elbows lifted by lift above the shoulders.
// Negative values put the elbows below the shoulders.
func Press(lift float64) *pose.Frame {
	f := pose.NewFrame()
	for _, side := range []pose.Side{pose.Left, pose.Right} {
		x := 0.4
		if side == pose.Right {
			x = 0.6
		}
		f.Set(pose.Shoulder.On(side), lm(x, 0.4, Visible))
		f.Set(pose.Elbow.On(side), lm(x, 0.4-lift, Visible))
		f.Set(pose.Wrist.On(side), lm(x, 0.4-lift-0.1, Visible))
	}
	return f
}

// Plank returns a side-view frame of a correct forearm plank.
func Plank() *pose.Frame {
	f := pose.NewFrame()
	for _, side := range []pose.Side{pose.Left, pose.Right} {
		f.Set(pose.Shoulder.On(side), lm(0.30, 0.50, Visible))
		f.Set(pose.Elbow.On(side), lm(0.30, 0.65, Visible))
		f.Set(pose.Wrist.On(side), lm(0.20, 0.66, Visible))
		f.Set(pose.Hip.On(side), lm(0.50, 0.52, Visible))
		f.Set(pose.Knee.On(side), lm(0.65, 0.54, Visible))
		f.Set(pose.Ankle.On(side), lm(0.80, 0.56, Visible))
	}
	return f
}

// Standing returns a frame of a person standing upright facing the camera.
func Standing() *pose.Frame {
	f := pose.NewFrame()
	for _, side := range []pose.Side{pose.Left, pose.Right} {
		x := 0.45
		if side == pose.Right {
			x = 0.55
		}
		f.Set(pose.Shoulder.On(side), lm(x, 0.30, Visible))
		f.Set(pose.Elbow.On(side), lm(x, 0.45, Visible))
		f.Set(pose.Wrist.On(side), lm(x, 0.58, Visible))
		f.Set(pose.Hip.On(side), lm(x, 0.55, Visible))
		f.Set(pose.Knee.On(side), lm(x, 0.72, Visible))
		f.Set(pose.Ankle.On(side), lm(x, 0.90, Visible))
	}
	return f
}

// Occluded returns a copy of f with every landmark at visibility 0.
func Occluded(f *pose.Frame) *pose.Frame {
	c := f.Clone()
	for id, l := range c.Points {
		l.Visibility = 0
		c.Points[id] = l
	}
	return c
}

// HideSide returns a copy of f with every landmark on one side at visibility 0.
func HideSide(f *pose.Frame, s pose.Side) *pose.Frame {
	c := f.Clone()
	for id, l := range c.Points {
		// Right-side landmarks carry even IDs from 12 on.
		right := id >= pose.LeftShoulder && id%2 == 0
		if right == (s == pose.Right) {
			l.Visibility = 0
			c.Points[id] = l
		}
	}
	return c
}

// At stamps a copy of f with a capture time.
func At(f *pose.Frame, t time.Time) *pose.Frame {
	c := f.Clone()
	c.CapturedAt = t
	return c
}
