package exercise

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultsAreValid(t *testing.T) {
	for _, p := range Defaults() {
		t.Run(p.ID, func(t *testing.T) {
			require.NoError(t, p.Validate())
		})
	}
}

func TestCrossingDirection(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		id      string
		falling bool
	}{
		{BicepCurl, true},
		{Squats, true},
		{Lunges, true},
		{Crunches, true},
		{ShoulderPress, false},
		{LateralRaise, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := reg.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.falling, p.Falling())
		})
	}
}

func TestThresholdPredicates(t *testing.T) {
	reg := NewRegistry()

	squats, err := reg.Lookup(Squats)
	require.NoError(t, err)
	assert.True(t, squats.RestReached(170))
	assert.False(t, squats.RestReached(160))
	assert.True(t, squats.ActiveReached(80))
	assert.False(t, squats.ActiveReached(120))

	raise, err := reg.Lookup(LateralRaise)
	require.NoError(t, err)
	assert.True(t, raise.RestReached(30))
	assert.True(t, raise.ActiveReached(100))
	assert.False(t, raise.ActiveReached(140), "above the upper bound is not a rep")
	assert.False(t, raise.ActiveReached(75), "dead-band")
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	t.Run("every exercise is registered", func(t *testing.T) {
		assert.Equal(t, []string{
			BicepCurl, Crunches, LateralRaise, Lunges, Plank, ShoulderPress, Squats,
		}, reg.IDs())
	})

	t.Run("unknown identifier is a configuration error", func(t *testing.T) {
		_, err := reg.Lookup("jumping-jacks")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownExercise))
	})

	t.Run("returned profiles are copies", func(t *testing.T) {
		p, err := reg.Lookup(BicepCurl)
		require.NoError(t, err)
		p.Joints[0] = p.Joints[2]
		p.Rest = 1

		again, err := reg.Lookup(BicepCurl)
		require.NoError(t, err)
		assert.Equal(t, 160.0, again.Rest)
		assert.NotEqual(t, again.Joints[0], again.Joints[2])
	})
}

func TestRegistryOverride(t *testing.T) {
	t.Run("merges over the default", func(t *testing.T) {
		reg := NewRegistry()
		p, err := reg.Override(Squats, Override{Active: ptr(95.0), Cooldown: ptr(4)})
		require.NoError(t, err)
		assert.Equal(t, 95.0, p.Active)
		assert.Equal(t, 4, p.Cooldown)
		assert.Equal(t, 160.0, p.Rest)
	})

	t.Run("overrides do not stack", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override(Squats, Override{Active: ptr(95.0)})
		require.NoError(t, err)
		p, err := reg.Override(Squats, Override{Cooldown: ptr(2)})
		require.NoError(t, err)
		assert.Equal(t, 90.0, p.Active)
	})

	t.Run("invalid override is rejected and leaves the profile alone", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override(Squats, Override{Active: ptr(160.0)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidProfile))

		p, err := reg.Lookup(Squats)
		require.NoError(t, err)
		assert.Equal(t, 90.0, p.Active)
	})

	t.Run("rejects unknown combine policy", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override(Lunges, Override{Combine: ptr("median")})
		assert.True(t, errors.Is(err, ErrInvalidProfile))
	})

	t.Run("rejects alpha outside range", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override(Crunches, Override{Alpha: ptr(1.5)})
		assert.True(t, errors.Is(err, ErrInvalidProfile))
	})

	t.Run("hold timing", func(t *testing.T) {
		reg := NewRegistry()
		p, err := reg.Override(Plank, Override{StabilizeMs: ptr(500)})
		require.NoError(t, err)
		assert.Equal(t, 500*time.Millisecond, p.Hold.Stabilize)
	})

	t.Run("restore drops the override", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override(Squats, Override{Active: ptr(95.0)})
		require.NoError(t, err)
		require.NoError(t, reg.Restore(Squats))

		p, err := reg.Lookup(Squats)
		require.NoError(t, err)
		assert.Equal(t, 90.0, p.Active)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.Override("burpees", Override{})
		assert.True(t, errors.Is(err, ErrUnknownExercise))
		assert.True(t, errors.Is(reg.Restore("burpees"), ErrUnknownExercise))
	})
}

func TestApplyTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	data := `
[profiles.bicep-curl]
active = 45.0
cooldown = 6

[profiles.plank]
occlusion_grace_ms = 1500
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reg := NewRegistry()
	require.NoError(t, reg.ApplyTOML(path))

	curl, err := reg.Lookup(BicepCurl)
	require.NoError(t, err)
	assert.Equal(t, 45.0, curl.Active)
	assert.Equal(t, 6, curl.Cooldown)

	plank, err := reg.Lookup(Plank)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, plank.Hold.OcclusionGrace)
}

func TestApplyTOMLRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	data := `
[profiles.bicep-curl]
active = 45.0

[profiles.squats]
rest = 90.0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reg := NewRegistry()
	err := reg.ApplyTOML(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))

	// The valid entry is not applied either.
	curl, err := reg.Lookup(BicepCurl)
	require.NoError(t, err)
	assert.Equal(t, 40.0, curl.Active)
}

func TestApplyOverridesIsAllOrNothing(t *testing.T) {
	reg := NewRegistry()
	err := reg.ApplyOverrides(map[string]Override{
		Lunges:    {Active: ptr(95.0)},
		"burpees": {Active: ptr(95.0)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownExercise))

	lunges, err := reg.Lookup(Lunges)
	require.NoError(t, err)
	assert.Equal(t, 100.0, lunges.Active)
}

func TestApplyOverridesReplacesEarlierSet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.ApplyOverrides(map[string]Override{Squats: {Active: ptr(95.0)}}))
	require.NoError(t, reg.ApplyOverrides(map[string]Override{Squats: {Rest: ptr(150.0)}}))

	squats, err := reg.Lookup(Squats)
	require.NoError(t, err)
	assert.Equal(t, 150.0, squats.Rest)
	assert.Equal(t, 90.0, squats.Active, "a later set replaces the whole override")
}
