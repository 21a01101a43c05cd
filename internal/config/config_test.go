package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), s)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
bones:
  current_color: "#00FF00"
  saved_color: [0, 0, 0.5]
joints:
  finger_size: 0.01
  global_size: 2
tracker:
  window: 500ms
  tolerance: "0.001"
store:
  backend: sqlite
  location: /tmp/act.db
show_head: false
`)
	s, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, render.Color{G: 1, A: 1}, s.Bones.CurrentColor)
	assert.Equal(t, render.Color{B: 0.5, A: 1}, s.Bones.SavedColor)
	assert.Equal(t, config.Defaults().Bones.DefaultColor, s.Bones.DefaultColor)
	assert.Equal(t, 0.01, s.Joints.FingerSize)
	assert.Equal(t, 2.0, s.Joints.GlobalSize)
	assert.Equal(t, 0.024, s.Joints.CurrentSize)
	assert.Equal(t, 500*time.Millisecond, s.Tracker.Window)
	assert.Equal(t, 20*time.Millisecond, s.Tracker.Interval)
	assert.Equal(t, 0.001, s.Tracker.Tolerance)
	assert.Equal(t, config.BackendSQLite, s.Store.Backend)
	assert.False(t, s.ShowHead)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "store:\n  backend: sqlite\n")
	t.Setenv("ACT_STORE_BACKEND", "redis")
	t.Setenv("ACT_STORE_REDIS_ADDR", "localhost:6379")
	t.Setenv("ACT_TRACKER_INTERVAL", "50ms")
	t.Setenv("ACT_BONE_CURRENT_COLOR", "#0000FF80")
	t.Setenv("ACT_LOG_LEVEL", "debug")

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendRedis, s.Store.Backend)
	assert.Equal(t, "localhost:6379", s.Store.RedisAddr)
	assert.Equal(t, 50*time.Millisecond, s.Tracker.Interval)
	assert.Equal(t, 1.0, s.Bones.CurrentColor.B)
	assert.InDelta(t, 0.5, s.Bones.CurrentColor.A, 0.01)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"bad duration", "tracker:\n  window: soon\n", "window"},
		{"bad colour", "bones:\n  saved_color: [1, 2]\n", "channels"},
		{"bad backend", "store:\n  backend: floppy\n", "floppy"},
		{"short key", "store:\n  encryption_key: abcd\n", "32 bytes"},
		{"not yaml", "bones: [\n", "parse settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := config.Defaults()
	s.LastProjectPath = "projects/robot.json"
	s.Tracker.Window = time.Second
	s.Store.EncryptionKey = strings.Repeat("ab", 32)

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	require.NoError(t, s.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.LastProjectPath, loaded.LastProjectPath)
	assert.Equal(t, time.Second, loaded.Tracker.Window)
	assert.InDelta(t, s.Bones.DefaultColor.A, loaded.Bones.DefaultColor.A, 1.0/255)
	assert.InDelta(t, s.Bones.DefaultColor.R, loaded.Bones.DefaultColor.R, 1.0/255)

	key, err := loaded.EncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestReset(t *testing.T) {
	s := config.Defaults()
	s.ShowHead = false
	s.Joints.GlobalSize = 3
	s.Reset()
	assert.Equal(t, config.Defaults(), s)
}

func TestMarkerOptions(t *testing.T) {
	s := config.Defaults()
	s.Joints.CurrentSize = 0.03
	s.Joints.SavedSize = 0.02

	cur := s.MarkerOptions(config.StyleCurrent)
	assert.Equal(t, render.SourceCurrent, cur.Source)
	assert.Equal(t, 0.03, cur.JointSize)
	assert.Equal(t, s.Bones.CurrentColor, cur.Color)
	assert.True(t, cur.ShowHead)

	saved := s.MarkerOptions(config.StyleSaved)
	assert.Equal(t, render.SourceOriginal, saved.Source)
	assert.Equal(t, 0.02, saved.JointSize)
	assert.Equal(t, s.Bones.SavedColor, saved.Color)

	def := s.MarkerOptions(config.StyleDefault)
	assert.Equal(t, 0.024, def.JointSize)
	assert.Equal(t, 0.015, def.FingerJointSize)
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]config.Style{
		"":        config.StyleCurrent,
		"current": config.StyleCurrent,
		"saved":   config.StyleSaved,
		"default": config.StyleDefault,
	} {
		got, err := config.ParseStyle(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := config.ParseStyle("neon")
	assert.Error(t, err)
}
