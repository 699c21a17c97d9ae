package session

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/pose"
	"github.com/Kkkiiiirran/FitFlow/internal/pose/posetest"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
)

type recorder struct {
	mu      sync.Mutex
	ids     []string
	results []rep.Result
}

func (r *recorder) OnResult(sessionID string, res rep.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, sessionID)
	r.results = append(r.results, res)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// fakeClock advances by step on every read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func nullLogger() (*log.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return log.NewEntry(logger), hook
}

func repeat(s *Session, f *pose.Frame, n int) rep.Result {
	var res rep.Result
	for i := 0; i < n; i++ {
		res = s.ProcessFrame(f)
	}
	return res
}

func TestNew(t *testing.T) {
	reg := exercise.NewRegistry()

	t.Run("unknown exercise is rejected", func(t *testing.T) {
		s, err := New(reg, "jumping-jacks")
		require.Error(t, err)
		assert.Nil(t, s)
		assert.True(t, errors.Is(err, exercise.ErrUnknownExercise))
	})

	t.Run("every registered exercise starts", func(t *testing.T) {
		entry, _ := nullLogger()
		for _, id := range reg.IDs() {
			s, err := New(reg, id, WithLogger(entry))
			require.NoError(t, err, id)
			assert.Equal(t, id, s.Exercise())
			assert.NotEmpty(t, s.ID())
		}
	})

	t.Run("initial stage follows the profile", func(t *testing.T) {
		entry, _ := nullLogger()
		curl, err := New(reg, exercise.BicepCurl, WithLogger(entry))
		require.NoError(t, err)
		assert.Equal(t, exercise.StageDown, curl.Snapshot().Stage)

		squats, err := New(reg, exercise.Squats, WithLogger(entry))
		require.NoError(t, err)
		assert.Equal(t, exercise.StageUp, squats.Snapshot().Stage)
	})
}

func TestProcessFrame(t *testing.T) {
	entry, hook := nullLogger()
	rec := &recorder{}
	s, err := New(exercise.NewRegistry(), exercise.Squats, WithLogger(entry), WithListener(rec))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		repeat(s, posetest.Legs(175), 15)
		repeat(s, posetest.Legs(70), 15)
	}

	res := s.Snapshot()
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, exercise.StageDown, res.Stage)
	assert.Equal(t, 90, rec.len())
	assert.Equal(t, s.ID(), rec.ids[0])

	counted := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "rep counted" {
			counted++
			assert.Equal(t, s.ID(), e.Data["session"])
			assert.Equal(t, exercise.Squats, e.Data["exercise"])
		}
	}
	assert.Equal(t, 3, counted)
}

func TestProcessFrameNotVisible(t *testing.T) {
	entry, hook := nullLogger()
	s, err := New(exercise.NewRegistry(), exercise.BicepCurl, WithLogger(entry))
	require.NoError(t, err)

	repeat(s, posetest.Arms(170), 10)
	before := repeat(s, posetest.Arms(25), 10)

	res := repeat(s, posetest.Occluded(posetest.Arms(170)), 5)
	assert.False(t, res.Visible)
	assert.Equal(t, before.Count, res.Count)
	assert.Equal(t, before.Stage, res.Stage)

	res = s.ProcessFrame(nil)
	assert.False(t, res.Visible)

	res = s.ProcessFrame(pose.NewFrame())
	assert.False(t, res.Visible)

	lost := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "subject not fully visible" {
			lost++
		}
	}
	assert.Equal(t, 1, lost, "visibility loss is logged once per transition")
}

func TestProcessFrameWithoutVisibilityScores(t *testing.T) {
	entry, _ := nullLogger()
	s, err := New(exercise.NewRegistry(), exercise.Squats, WithLogger(entry))
	require.NoError(t, err)

	// Left hip, knee and ankle in a straight line, no visibility fields.
	raw := `{"landmarks":[{"id":23,"x":0.35,"y":0.4},{"id":25,"x":0.35,"y":0.6},{"id":27,"x":0.35,"y":0.8}]}`
	f := pose.NewFrame()
	require.NoError(t, json.Unmarshal([]byte(raw), f))

	res := s.ProcessFrame(f)
	assert.True(t, res.Visible)
	assert.InDelta(t, 180, res.Angle, 1e-6)
	assert.Equal(t, exercise.StageUp, res.Stage)
}

func TestHoldUsesClock(t *testing.T) {
	entry, _ := nullLogger()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), step: 100 * time.Millisecond}
	s, err := New(exercise.NewRegistry(), exercise.Plank, WithLogger(entry), WithClock(clock.Now))
	require.NoError(t, err)

	// Frames at 0ms..2500ms.
	res := repeat(s, posetest.Plank(), 26)
	assert.Equal(t, 1, res.Seconds)
	assert.True(t, res.Holding)
	assert.Equal(t, exercise.StageHolding, res.Stage)
}

func TestHoldPrefersCaptureTime(t *testing.T) {
	entry, _ := nullLogger()
	frozen := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := New(exercise.NewRegistry(), exercise.Plank, WithLogger(entry), WithClock(func() time.Time { return frozen }))
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var res rep.Result
	for ms := 0; ms <= 4000; ms += 100 {
		res = s.ProcessFrame(posetest.At(posetest.Plank(), start.Add(time.Duration(ms)*time.Millisecond)))
	}
	assert.Equal(t, 3, res.Seconds)
}

func TestReset(t *testing.T) {
	entry, _ := nullLogger()
	s, err := New(exercise.NewRegistry(), exercise.Squats, WithLogger(entry))
	require.NoError(t, err)

	repeat(s, posetest.Legs(175), 15)
	repeat(s, posetest.Legs(70), 15)
	require.Equal(t, 1, s.Snapshot().Count)

	s.Reset()
	res := s.Snapshot()
	assert.Zero(t, res.Count)
	assert.Equal(t, exercise.StageUp, res.Stage)

	repeat(s, posetest.Legs(175), 15)
	res = repeat(s, posetest.Legs(70), 15)
	assert.Equal(t, 1, res.Count)
}

func TestStop(t *testing.T) {
	entry, hook := nullLogger()
	rec := &recorder{}
	s, err := New(exercise.NewRegistry(), exercise.Squats, WithLogger(entry), WithListener(rec))
	require.NoError(t, err)

	repeat(s, posetest.Legs(175), 15)
	final := repeat(s, posetest.Legs(70), 15)
	calls := rec.len()

	s.Stop()
	s.Stop()
	assert.True(t, s.Stopped())

	res := repeat(s, posetest.Legs(175), 15)
	assert.Equal(t, final.Count, res.Count)
	assert.Equal(t, final.Stage, res.Stage)
	assert.Equal(t, calls, rec.len(), "stopped sessions notify nobody")

	s.Reset()
	assert.Equal(t, final.Count, s.Snapshot().Count)

	stops := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "session stopped" {
			stops++
		}
	}
	assert.Equal(t, 1, stops)
}

func TestPositionFilter(t *testing.T) {
	entry, _ := nullLogger()
	reg := exercise.NewRegistry()
	enabled := true
	_, err := reg.Override(exercise.Squats, exercise.Override{PositionFilter: &enabled})
	require.NoError(t, err)

	s, err := New(reg, exercise.Squats, WithLogger(entry))
	require.NoError(t, err)
	require.True(t, s.Profile().PositionFilter)

	for i := 0; i < 2; i++ {
		repeat(s, posetest.Legs(175), 40)
		repeat(s, posetest.Legs(60), 40)
	}
	assert.Equal(t, 2, s.Snapshot().Count)
}

func TestListenerFunc(t *testing.T) {
	entry, _ := nullLogger()
	var got []int
	s, err := New(exercise.NewRegistry(), exercise.Squats,
		WithLogger(entry),
		WithListener(ListenerFunc(func(_ string, res rep.Result) {
			got = append(got, res.Count)
		})),
	)
	require.NoError(t, err)

	repeat(s, posetest.Legs(175), 15)
	repeat(s, posetest.Legs(70), 15)
	require.Len(t, got, 30)
	assert.Equal(t, 1, got[len(got)-1])
}
