package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
)

const sample = `
[development]
port = 9000
log_level = "debug"
log_to_stdout = true
db_path = "dev.db"
camera_id = 1
generator_plugin = "coach"
generator_timeout = "2s"
tray_enabled = true

[development.profiles.squats]
active = 95.0
cooldown = 6

[development.profiles.plank]
stabilize_ms = 900

[production]
log_level = "warn"
logs_path = "/var/log/fitflow/fitflow.log"
log_format_json = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestToml_Get(t *testing.T) {
	dev := &Config{Port: 1}
	prod := &Config{Port: 2}
	tm := &Toml{Development: dev, Production: prod}

	for _, env := range []string{"dev", "development", "DEV"} {
		c, err := tm.Get(env)
		require.NoError(t, err)
		assert.Same(t, dev, c)
	}
	for _, env := range []string{"prod", "production"} {
		c, err := tm.Get(env)
		require.NoError(t, err)
		assert.Same(t, prod, c)
	}

	_, err := tm.Get("staging")
	assert.Error(t, err)
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, "dev.db", cfg.DBPath)
	assert.Equal(t, 1, cfg.CameraID)
	assert.Equal(t, "coach", cfg.GeneratorPlugin)
	assert.True(t, cfg.TrayEnabled)
	assert.Equal(t, "plugins", cfg.PluginDir)

	timeout, err := cfg.Timeout(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)

	require.Len(t, cfg.Profiles, 2)
	squats := cfg.Profiles[exercise.Squats]
	require.NotNil(t, squats.Active)
	assert.Equal(t, 95.0, *squats.Active)
	require.NotNil(t, squats.Cooldown)
	assert.Equal(t, 6, *squats.Cooldown)
	require.NotNil(t, cfg.Profiles[exercise.Plank].StabilizeMs)

	reg := exercise.NewRegistry()
	require.NoError(t, reg.ApplyOverrides(cfg.Profiles))
	p, err := reg.Lookup(exercise.Squats)
	require.NoError(t, err)
	assert.Equal(t, 95.0, p.Active)
}

func TestLoad_ProductionDefaults(t *testing.T) {
	cfg, err := Load("prod", writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.LogFormatJSON)
	assert.Equal(t, "fitflow.db", cfg.DBPath)
	assert.Empty(t, cfg.Profiles)

	timeout, err := cfg.Timeout(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("development", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load("development", writeConfig(t, "[production]\nport = 1\n"))
	assert.Error(t, err)

	_, err = Load("development", writeConfig(t, "not = [valid"))
	assert.Error(t, err)

	cfg := &Config{GeneratorTimeout: "soon"}
	_, err = cfg.Timeout(time.Second)
	assert.Error(t, err)
}
