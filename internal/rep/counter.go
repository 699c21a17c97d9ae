package rep

import (
	"time"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/smoothing"
)

// Counter counts discrete repetitions with two thresholds. The signal must
// pass the rest threshold before a crossing of the active threshold counts,
// and a cooldown of profile.Cooldown usable frames follows every count.
type Counter struct {
	profile exercise.Profile
	ema     *smoothing.EMA

	atRest   bool
	label    string
	count    int
	cooldown int
	last     Result
}

// NewCounter creates a counter in the profile's initial stage.
func NewCounter(p exercise.Profile) *Counter {
	c := &Counter{profile: p}
	c.Reset()
	return c
}

// Reset returns to the initial stage with a zero count.
func (c *Counter) Reset() {
	c.ema = smoothing.NewEMA(c.profile.Alpha, c.profile.Neutral)
	c.atRest = c.profile.InitialStage == c.profile.RestStage
	c.label = c.profile.InitialStage
	c.count = 0
	c.cooldown = 0
	c.last = Result{
		Kind:  exercise.KindThreshold,
		Stage: c.label,
		Angle: c.ema.Value(),
	}
}

// Snapshot returns the latest result.
func (c *Counter) Snapshot() Result {
	return c.last
}

// Step reads the signal from f and advances the counter. A frame with no
// usable side leaves the state untouched and reports Visible=false.
func (c *Counter) Step(f *pose.Frame, _ time.Time) Result {
	r := Read(c.profile, f)
	if !r.Visible() {
		res := c.last
		res.Visible = false
		res.StageChanged = false
		res.Counted = false
		res.Swinging = false
		c.last = res
		return res
	}

	swinging := c.profile.SwingThreshold > 0 && r.Sides == 2 && r.Spread > c.profile.SwingThreshold
	return c.Advance(c.ema.Update(r.Value), swinging)
}

// Advance applies one smoothed observation. While swinging, the displayed
// stage keeps its previous label; counting is unaffected.
func (c *Counter) Advance(theta float64, swinging bool) Result {
	p := c.profile
	prevLabel := c.label
	counted := false

	if c.cooldown > 0 {
		c.cooldown--
	}

	switch {
	case p.RestReached(theta):
		c.atRest = true
		if !swinging {
			c.label = p.RestStage
		}
	case c.atRest && c.cooldown == 0 && p.ActiveReached(theta):
		c.atRest = false
		c.count++
		c.cooldown = p.Cooldown
		counted = true
		if !swinging {
			c.label = p.ActiveStage
		}
	}

	c.last = Result{
		Kind:         exercise.KindThreshold,
		Stage:        c.label,
		Count:        c.count,
		Angle:        theta,
		Visible:      true,
		StageChanged: c.label != prevLabel,
		Counted:      counted,
		Swinging:     swinging,
	}
	return c.last
}
