package rep

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/pose/posetest"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func profile(t *testing.T, id string) exercise.Profile {
	t.Helper()
	p, err := exercise.NewRegistry().Lookup(id)
	require.NoError(t, err)
	return p
}

// feed steps m with f n times and returns the last result.
func feed(m Machine, f *pose.Frame, n int) Result {
	var res Result
	for i := 0; i < n; i++ {
		res = m.Step(f, t0)
	}
	return res
}

func TestNew(t *testing.T) {
	m, err := New(profile(t, exercise.Squats))
	require.NoError(t, err)
	assert.IsType(t, &Counter{}, m)

	m, err = New(profile(t, exercise.Plank))
	require.NoError(t, err)
	assert.IsType(t, &Timer{}, m)

	_, err = New(exercise.Profile{ID: "x", Kind: "sprint"})
	assert.ErrorIs(t, err, exercise.ErrInvalidProfile)
}

func TestRead(t *testing.T) {
	t.Run("angle on both sides", func(t *testing.T) {
		r := Read(profile(t, exercise.Lunges), posetest.LegsSplit(170, 90))
		assert.Equal(t, 2, r.Sides)
		assert.InDelta(t, 170, r.Left, 1e-6)
		assert.InDelta(t, 90, r.Right, 1e-6)
		assert.InDelta(t, 90, r.Value, 1e-6, "min picks the more bent knee")
		assert.InDelta(t, 80, r.Spread, 1e-6)
	})

	t.Run("one usable side is used alone", func(t *testing.T) {
		f := posetest.HideSide(posetest.LegsSplit(170, 90), pose.Right)
		r := Read(profile(t, exercise.Lunges), f)
		assert.Equal(t, 1, r.Sides)
		assert.InDelta(t, 170, r.Value, 1e-6)
		assert.Zero(t, r.Spread)
	})

	t.Run("no usable side", func(t *testing.T) {
		r := Read(profile(t, exercise.Squats), posetest.Occluded(posetest.Legs(90)))
		assert.False(t, r.Visible())
	})

	t.Run("prefer visible picks the clearer side", func(t *testing.T) {
		f := posetest.LegsSplit(170, 80)
		for _, j := range []pose.Joint{pose.Hip, pose.Knee, pose.Ankle} {
			lm, _ := f.Get(j.On(pose.Left))
			lm.Visibility = 0.7
			f.Set(j.On(pose.Left), lm)
		}
		r := Read(profile(t, exercise.Squats), f)
		assert.Equal(t, 2, r.Sides)
		assert.InDelta(t, 80, r.Value, 1e-6)
	})

	t.Run("average", func(t *testing.T) {
		f := pose.NewFrame()
		posetest.Chain(f, pose.Left, pose.Shoulder, pose.Hip, pose.Knee, pose.Point3D{X: 0.35, Y: 0.5}, 100, posetest.Visible)
		posetest.Chain(f, pose.Right, pose.Shoulder, pose.Hip, pose.Knee, pose.Point3D{X: 0.65, Y: 0.5}, 140, posetest.Visible)
		r := Read(profile(t, exercise.Crunches), f)
		assert.InDelta(t, 120, r.Value, 1e-6)
	})

	t.Run("lift", func(t *testing.T) {
		r := Read(profile(t, exercise.ShoulderPress), posetest.Press(0.1))
		assert.InDelta(t, 0.1, r.Value, 1e-9)
	})

	t.Run("out of frame landmark is unusable", func(t *testing.T) {
		f := posetest.Legs(90)
		ankle, _ := f.Get(pose.LeftAnkle)
		ankle.Y = 1.2
		f.Set(pose.LeftAnkle, ankle)
		r := Read(profile(t, exercise.Squats), f)
		assert.Equal(t, 1, r.Sides)
	})
}

var squatsScenario = []struct {
	angle float64
	stage string
	count int
}{
	{170, exercise.StageUp, 0},
	{80, exercise.StageDown, 1},
	{170, exercise.StageUp, 1},
	{80, exercise.StageDown, 2},
}

func TestCounterSquatsScenario(t *testing.T) {
	c := NewCounter(profile(t, exercise.Squats))
	assert.Equal(t, exercise.StageUp, c.Snapshot().Stage)

	for _, s := range squatsScenario {
		res := c.Advance(s.angle, false)
		assert.Equal(t, s.stage, res.Stage, "angle %v", s.angle)
		assert.Equal(t, s.count, res.Count, "angle %v", s.angle)
	}
	assert.Equal(t, 2, c.Snapshot().Count)
}

func TestCounterSquatsScenarioFromFrames(t *testing.T) {
	c := NewCounter(profile(t, exercise.Squats))

	for _, s := range squatsScenario {
		res := c.Step(posetest.Legs(s.angle), t0)
		assert.InDelta(t, s.angle, res.Angle, 1e-6)
		assert.Equal(t, s.stage, res.Stage, "angle %v", s.angle)
		assert.Equal(t, s.count, res.Count, "angle %v", s.angle)
	}
	assert.Equal(t, 2, c.Snapshot().Count)
}

func TestCounterDeadBand(t *testing.T) {
	c := NewCounter(profile(t, exercise.Squats))
	c.Advance(170, false)

	for i := 0; i < 200; i++ {
		res := c.Advance(100+float64(i%50), false)
		require.Zero(t, res.Count)
	}
	assert.Equal(t, exercise.StageUp, c.Snapshot().Stage)
}

func TestCounterCooldown(t *testing.T) {
	p := profile(t, exercise.Lunges)
	require.Positive(t, p.Cooldown)
	c := NewCounter(p)

	counts := 0
	for _, a := range []float64{170, 80, 170, 80, 170} {
		if c.Advance(a, false).Counted {
			counts++
		}
	}
	assert.Equal(t, 1, counts)
	assert.Equal(t, 1, c.Snapshot().Count)
	assert.Equal(t, exercise.StageUp, c.Snapshot().Stage, "rest stage still updates during cooldown")

	// Once the cooldown has run out the next crossing counts.
	for i := 0; i < p.Cooldown; i++ {
		c.Advance(170, false)
	}
	res := c.Advance(80, false)
	assert.True(t, res.Counted)
	assert.Equal(t, 2, res.Count)
}

func TestCounterRequiresRestBeforeCounting(t *testing.T) {
	c := NewCounter(profile(t, exercise.Squats))
	c.Advance(170, false)
	c.Advance(80, false)

	for i := 0; i < 30; i++ {
		c.Advance(80, false)
	}
	assert.Equal(t, 1, c.Snapshot().Count)
}

func TestCounterFromFrames(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		rest   *pose.Frame
		active *pose.Frame
		stages [2]string
	}{
		{"bicep curl", exercise.BicepCurl, posetest.Arms(170), posetest.Arms(25), [2]string{exercise.StageDown, exercise.StageUp}},
		{"squats", exercise.Squats, posetest.Legs(175), posetest.Legs(70), [2]string{exercise.StageUp, exercise.StageDown}},
		{"lunges", exercise.Lunges, posetest.Legs(175), posetest.LegsSplit(170, 85), [2]string{exercise.StageUp, exercise.StageDown}},
		{"crunches", exercise.Crunches, posetest.Hips(175), posetest.Hips(80), [2]string{exercise.StageDown, exercise.StageUp}},
		{"shoulder press", exercise.ShoulderPress, posetest.Press(-0.08), posetest.Press(0.12), [2]string{exercise.StageDown, exercise.StageUp}},
		{"lateral raise", exercise.LateralRaise, posetest.Raise(20, 20), posetest.Raise(100, 100), [2]string{exercise.StageDown, exercise.StageUp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(profile(t, tt.id))
			require.NoError(t, err)

			for rep := 1; rep <= 3; rep++ {
				res := feed(m, tt.rest, 20)
				assert.Equal(t, tt.stages[0], res.Stage)
				res = feed(m, tt.active, 20)
				assert.Equal(t, tt.stages[1], res.Stage)
				assert.Equal(t, rep, res.Count)
			}
		})
	}
}

func TestCounterOcclusion(t *testing.T) {
	m := NewCounter(profile(t, exercise.Squats))
	feed(m, posetest.Legs(175), 20)
	before := feed(m, posetest.Legs(70), 20)
	require.Equal(t, 1, before.Count)

	res := m.Step(posetest.Occluded(posetest.Legs(175)), t0)
	assert.False(t, res.Visible)
	assert.Equal(t, before.Stage, res.Stage)
	assert.Equal(t, before.Count, res.Count)
	assert.Equal(t, before.Angle, res.Angle)

	res = m.Step(nil, t0)
	assert.False(t, res.Visible)

	res = m.Step(posetest.Legs(70), t0)
	assert.True(t, res.Visible)
	assert.Equal(t, 1, res.Count)
}

func TestCounterSwingGuard(t *testing.T) {
	m := NewCounter(profile(t, exercise.LateralRaise))
	feed(m, posetest.Raise(20, 20), 20)

	res := feed(m, posetest.Raise(100, 15), 20)
	assert.Equal(t, 1, res.Count, "a swinging rep still counts")
	assert.Equal(t, exercise.StageDown, res.Stage, "the swinging stage is not displayed")
	assert.True(t, res.Swinging)

	res = feed(m, posetest.Raise(20, 20), 20)
	assert.Equal(t, exercise.StageDown, res.Stage)
	assert.False(t, res.Swinging)

	res = feed(m, posetest.Raise(100, 100), 20)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, exercise.StageUp, res.Stage)
}

func TestCounterLateralRaiseUpperBound(t *testing.T) {
	m := NewCounter(profile(t, exercise.LateralRaise))
	feed(m, posetest.Raise(20, 20), 20)

	res := m.Advance(150, false)
	assert.Zero(t, res.Count)
}

func TestCounterReset(t *testing.T) {
	m := NewCounter(profile(t, exercise.BicepCurl))
	feed(m, posetest.Arms(170), 20)
	feed(m, posetest.Arms(25), 20)
	require.Equal(t, 1, m.Snapshot().Count)

	m.Reset()
	res := m.Snapshot()
	assert.Zero(t, res.Count)
	assert.Equal(t, exercise.StageDown, res.Stage)
	assert.Equal(t, 180.0, res.Angle)
}

func TestCounterNeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := NewCounter(profile(t, exercise.Squats))

	prev := 0
	for i := 0; i < 2000; i++ {
		f := posetest.Legs(40 + rng.Float64()*140)
		if rng.IntN(10) == 0 {
			f = posetest.Occluded(f)
		}
		res := m.Step(f, t0)
		require.GreaterOrEqual(t, res.Count, prev)
		prev = res.Count
	}
}

// hold steps a timer with frame every 100ms from start to end inclusive.
func hold(tm *Timer, f *pose.Frame, start, end time.Duration) Result {
	var res Result
	for at := start; at <= end; at += 100 * time.Millisecond {
		res = tm.Step(f, t0.Add(at))
	}
	return res
}

func TestAssessPlank(t *testing.T) {
	p := profile(t, exercise.Plank)

	got := AssessPlank(p, posetest.Plank())
	assert.True(t, got.Visible)
	assert.True(t, got.Valid)
	assert.Greater(t, got.Angle, 150.0)

	got = AssessPlank(p, posetest.Standing())
	assert.True(t, got.Visible)
	assert.False(t, got.Valid)

	got = AssessPlank(p, posetest.HideSide(posetest.Plank(), pose.Left))
	assert.True(t, got.Valid, "one side is enough")

	got = AssessPlank(p, posetest.Occluded(posetest.Plank()))
	assert.False(t, got.Visible)

	noKnees := posetest.Plank()
	for _, s := range []pose.Side{pose.Left, pose.Right} {
		lm, _ := noKnees.Get(pose.Knee.On(s))
		lm.Visibility = 0
		noKnees.Set(pose.Knee.On(s), lm)
	}
	assert.False(t, AssessPlank(p, noKnees).Visible, "knees must be seen on one side")

	assert.False(t, AssessPlank(p, nil).Visible)
}

func TestTimerScenario(t *testing.T) {
	tm := NewTimer(profile(t, exercise.Plank))

	res := hold(tm, posetest.Plank(), 0, 2500*time.Millisecond)
	assert.Equal(t, 1, res.Seconds)
	assert.True(t, res.Holding)
	assert.Equal(t, exercise.StageHolding, res.Stage)
	assert.Equal(t, 1, res.Value())
}

func TestTimerStabilization(t *testing.T) {
	tm := NewTimer(profile(t, exercise.Plank))

	res := hold(tm, posetest.Plank(), 0, 500*time.Millisecond)
	assert.False(t, res.Holding)
	assert.Zero(t, res.Seconds)

	res = tm.Step(posetest.Standing(), t0.Add(600*time.Millisecond))
	assert.False(t, res.Holding)
	assert.True(t, tm.stableSince.IsZero(), "dropping the posture resets stabilization")

	res = hold(tm, posetest.Plank(), 700*time.Millisecond, 1300*time.Millisecond)
	assert.False(t, res.Holding, "stabilization restarts from zero")
	assert.Equal(t, exercise.StageNotHolding, res.Stage)
	assert.Zero(t, res.Seconds)
}

func TestTimerBreakKeepsSeconds(t *testing.T) {
	tm := NewTimer(profile(t, exercise.Plank))
	res := hold(tm, posetest.Plank(), 0, 3000*time.Millisecond)
	require.Equal(t, 2, res.Seconds)

	res = tm.Step(posetest.Standing(), t0.Add(3100*time.Millisecond))
	assert.False(t, res.Holding)
	assert.True(t, res.StageChanged)
	assert.Equal(t, 2, res.Seconds)

	res = hold(tm, posetest.Plank(), 3200*time.Millisecond, 5000*time.Millisecond)
	assert.Equal(t, 3, res.Seconds)
}

func TestTimerCatchesUpSparseFrames(t *testing.T) {
	tm := NewTimer(profile(t, exercise.Plank))
	tm.Step(posetest.Plank(), t0)
	tm.Step(posetest.Plank(), t0.Add(700*time.Millisecond))
	tm.Step(posetest.Plank(), t0.Add(1500*time.Millisecond))
	res := tm.Step(posetest.Plank(), t0.Add(2400*time.Millisecond))
	assert.Equal(t, 1, res.Seconds)
}

func TestTimerOcclusion(t *testing.T) {
	t.Run("short occlusion leaves state unchanged", func(t *testing.T) {
		tm := NewTimer(profile(t, exercise.Plank))
		before := hold(tm, posetest.Plank(), 0, 2000*time.Millisecond)
		require.True(t, before.Holding)

		res := tm.Step(posetest.Occluded(posetest.Plank()), t0.Add(2100*time.Millisecond))
		assert.False(t, res.Visible)
		assert.Equal(t, before.Seconds, res.Seconds)
		assert.Equal(t, before.Stage, res.Stage)

		res = tm.Step(posetest.Plank(), t0.Add(2500*time.Millisecond))
		assert.True(t, res.Holding)
	})

	t.Run("time out of view is not credited", func(t *testing.T) {
		tm := NewTimer(profile(t, exercise.Plank))
		before := hold(tm, posetest.Plank(), 0, 1800*time.Millisecond)
		require.Equal(t, 1, before.Seconds)

		for at := 1900 * time.Millisecond; at <= 2700*time.Millisecond; at += 100 * time.Millisecond {
			tm.Step(posetest.Occluded(posetest.Plank()), t0.Add(at))
		}
		res := tm.Step(posetest.Plank(), t0.Add(2750*time.Millisecond))
		assert.True(t, res.Holding)
		assert.Equal(t, 1, res.Seconds)

		// 0.1s of the second was seen before the gap, the rest lands at 3.65s.
		res = hold(tm, posetest.Plank(), 2850*time.Millisecond, 2850*time.Millisecond)
		assert.Equal(t, 1, res.Seconds)
		res = hold(tm, posetest.Plank(), 2950*time.Millisecond, 3750*time.Millisecond)
		assert.Equal(t, 2, res.Seconds)
	})

	t.Run("stabilization does not run while out of view", func(t *testing.T) {
		tm := NewTimer(profile(t, exercise.Plank))
		hold(tm, posetest.Plank(), 0, 300*time.Millisecond)
		tm.Step(posetest.Occluded(posetest.Plank()), t0.Add(600*time.Millisecond))

		res := tm.Step(posetest.Plank(), t0.Add(900*time.Millisecond))
		assert.False(t, res.Holding, "only 0.3s of the window was seen")
		res = hold(tm, posetest.Plank(), 1000*time.Millisecond, 1500*time.Millisecond)
		assert.True(t, res.Holding)
	})

	t.Run("long occlusion requires stabilizing again", func(t *testing.T) {
		tm := NewTimer(profile(t, exercise.Plank))
		before := hold(tm, posetest.Plank(), 0, 2000*time.Millisecond)
		require.True(t, before.Holding)

		tm.Step(posetest.Occluded(posetest.Plank()), t0.Add(2500*time.Millisecond))
		res := tm.Step(posetest.Plank(), t0.Add(4000*time.Millisecond))
		assert.False(t, res.Holding)
		assert.Equal(t, before.Seconds, res.Seconds)
	})
}

func TestTimerReset(t *testing.T) {
	tm := NewTimer(profile(t, exercise.Plank))
	hold(tm, posetest.Plank(), 0, 3000*time.Millisecond)
	tm.Reset()

	res := tm.Snapshot()
	assert.Zero(t, res.Seconds)
	assert.False(t, res.Holding)
	assert.Equal(t, exercise.StageNotHolding, res.Stage)
}
