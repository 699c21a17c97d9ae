// Package geometry computes joint angles and posture relations from landmark positions.
package geometry

import (
	"math"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

// Extended is returned for a degenerate joint where a limb segment has zero
// length. A collapsed segment reads as a fully extended joint so it never
// suppresses detection.
const Extended = 180.0

// minSegment is the shortest segment length treated as non-degenerate.
const minSegment = 1e-9

// Angle returns the interior angle in degrees at vertex b formed by the rays
// b->a and b->c. Only the X and Y components are used. The result is in [0, 180].
func Angle(a, b, c pose.Point3D) float64 {
	ux, uy := a.X-b.X, a.Y-b.Y
	vx, vy := c.X-b.X, c.Y-b.Y

	nu := math.Hypot(ux, uy)
	nv := math.Hypot(vx, vy)
	if nu < minSegment || nv < minSegment {
		return Extended
	}

	cos := (ux*vx + uy*vy) / (nu * nv)
	// Floating-point drift can push the cosine slightly outside [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// Lift returns how far point p sits above ref. Image Y grows downward, so the
// result is positive when p is higher in the frame than ref.
func Lift(p, ref pose.Point3D) float64 {
	return ref.Y - p.Y
}

// Horizontal reports whether the segment a-b runs more horizontally than
// vertically by the given ratio: |dx| > |dy| * ratio.
func Horizontal(a, b pose.Point3D, ratio float64) bool {
	dx := math.Abs(b.X - a.X)
	dy := math.Abs(b.Y - a.Y)
	return dx > dy*ratio
}
