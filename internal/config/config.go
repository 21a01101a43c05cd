// Package config holds the user preferences of the tool.
//
// Settings are read from a YAML file, decoded through mapstructure so that
// durations and colours can be written as strings, and finally overridden by
// ACT_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/aretw0/act/pkg/render"
	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ACT_"

// Settings is the full preference set.
type Settings struct {
	Bones   BoneSettings    `yaml:"bones" mapstructure:"bones" envPrefix:"BONE_"`
	Joints  JointSettings   `yaml:"joints" mapstructure:"joints" envPrefix:"JOINT_"`
	Tracker TrackerSettings `yaml:"tracker" mapstructure:"tracker" envPrefix:"TRACKER_"`
	Store   StoreSettings   `yaml:"store" mapstructure:"store" envPrefix:"STORE_"`

	ShowHead        bool   `yaml:"show_head" mapstructure:"show_head" env:"SHOW_HEAD"`
	LastProjectPath string `yaml:"last_project_path,omitempty" mapstructure:"last_project_path" env:"LAST_PROJECT_PATH"`
	LogLevel        string `yaml:"log_level" mapstructure:"log_level" env:"LOG_LEVEL"`
}

// BoneSettings are the marker colours.
type BoneSettings struct {
	DefaultColor render.Color `yaml:"default_color" mapstructure:"default_color" env:"DEFAULT_COLOR"`
	CurrentColor render.Color `yaml:"current_color" mapstructure:"current_color" env:"CURRENT_COLOR"`
	SavedColor   render.Color `yaml:"saved_color" mapstructure:"saved_color" env:"SAVED_COLOR"`
}

// JointSettings are the marker sizes.
type JointSettings struct {
	DefaultSize      float64 `yaml:"default_size" mapstructure:"default_size" env:"DEFAULT_SIZE"`
	CurrentSize      float64 `yaml:"current_size" mapstructure:"current_size" env:"CURRENT_SIZE"`
	SavedSize        float64 `yaml:"saved_size" mapstructure:"saved_size" env:"SAVED_SIZE"`
	FingerSize       float64 `yaml:"finger_size" mapstructure:"finger_size" env:"FINGER_SIZE"`
	GlobalSize       float64 `yaml:"global_size" mapstructure:"global_size" env:"GLOBAL_SIZE"`
	GlobalFingerSize float64 `yaml:"global_finger_size" mapstructure:"global_finger_size" env:"GLOBAL_FINGER_SIZE"`
}

// TrackerSettings drive change sampling and commit debouncing.
type TrackerSettings struct {
	Interval  time.Duration `yaml:"interval" mapstructure:"interval" env:"INTERVAL"`
	Window    time.Duration `yaml:"window" mapstructure:"window" env:"WINDOW"`
	Tolerance float64       `yaml:"tolerance" mapstructure:"tolerance" env:"TOLERANCE"`
}

// StoreSettings select and configure the document store.
type StoreSettings struct {
	// Backend is one of file, redis, sqlite or memory.
	Backend       string        `yaml:"backend" mapstructure:"backend" env:"BACKEND"`
	Location      string        `yaml:"location" mapstructure:"location" env:"LOCATION"`
	RedisAddr     string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password,omitempty" mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db,omitempty" mapstructure:"redis_db" env:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl" env:"TTL"`
	// EncryptionKey is a hex encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key,omitempty" mapstructure:"encryption_key" env:"ENCRYPTION_KEY"`
}

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Defaults returns the factory preferences.
func Defaults() Settings {
	return Settings{
		Bones: BoneSettings{
			DefaultColor: render.Color{R: 0.5, G: 0.5, B: 0.5, A: 0.42},
			CurrentColor: render.Color{R: 1, A: 0.42},
			SavedColor:   render.Color{B: 1, A: 0.42},
		},
		Joints: JointSettings{
			DefaultSize:      0.024,
			CurrentSize:      0.024,
			SavedSize:        0.024,
			FingerSize:       0.015,
			GlobalSize:       1,
			GlobalFingerSize: 1,
		},
		Tracker: TrackerSettings{
			Interval: 20 * time.Millisecond,
			Window:   200 * time.Millisecond,
		},
		Store: StoreSettings{
			Backend:  BackendFile,
			Location: ".act",
		},
		ShowHead: true,
		LogLevel: "info",
	}
}

// Reset restores the factory preferences.
func (s *Settings) Reset() { *s = Defaults() }

// DefaultPath is the settings file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".act", "settings.yaml")
	}
	return filepath.Join(dir, "act", "settings.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return s, fmt.Errorf("failed to read settings: %w", err)
		default:
			if err := decodeYAML(data, &s); err != nil {
				return s, fmt.Errorf("failed to parse settings %s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	return s, s.Validate()
}

func decodeYAML(data []byte, s *Settings) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			colorHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           s,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// colorHook accepts [r, g, b, a] lists as colours.
func colorHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(render.Color{}) || from.Kind() != reflect.Slice {
		return data, nil
	}
	var ch []float64
	if err := mapstructure.WeakDecode(data, &ch); err != nil {
		return nil, err
	}
	if len(ch) != 3 && len(ch) != 4 {
		return nil, fmt.Errorf("colour needs 3 or 4 channels, got %d", len(ch))
	}
	c := render.Color{R: ch[0], G: ch[1], B: ch[2], A: 1}
	if len(ch) == 4 {
		c.A = ch[3]
	}
	return c, nil
}

// Save writes s to path, creating parent directories.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects values no component can work with.
func (s Settings) Validate() error {
	var errs []error
	if s.Tracker.Interval < 0 || s.Tracker.Window < 0 {
		errs = append(errs, errors.New("tracker durations must not be negative"))
	}
	if s.Tracker.Tolerance < 0 {
		errs = append(errs, errors.New("tracker tolerance must not be negative"))
	}
	switch s.Store.Backend {
	case BackendFile, BackendRedis, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", s.Store.Backend))
	}
	if _, err := s.EncryptionKey(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EncryptionKey decodes the configured key, returning nil when unset.
func (s Settings) EncryptionKey() ([]byte, error) {
	if s.Store.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Style selects one of the three configured marker looks.
type Style uint8

const (
	// StyleDefault is used for skeletons that are not being edited.
	StyleDefault Style = iota
	// StyleCurrent draws the live pose of the active skeleton.
	StyleCurrent
	// StyleSaved draws the stored rest pose.
	StyleSaved
)

// ParseStyle resolves current, saved or default. Empty means current.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "current":
		return StyleCurrent, nil
	case "saved":
		return StyleSaved, nil
	case "default":
		return StyleDefault, nil
	}
	return 0, fmt.Errorf("unknown style %q", s)
}

// MarkerOptions maps the preferences to render options.
func (s Settings) MarkerOptions(style Style) render.Options {
	opts := render.Options{
		Source:                render.SourceCurrent,
		ShowHead:              s.ShowHead,
		FingerJointSize:       s.Joints.FingerSize,
		GlobalJointSize:       s.Joints.GlobalSize,
		GlobalFingerJointSize: s.Joints.GlobalFingerSize,
	}
	switch style {
	case StyleCurrent:
		opts.JointSize = s.Joints.CurrentSize
		opts.Color = s.Bones.CurrentColor
	case StyleSaved:
		opts.Source = render.SourceOriginal
		opts.JointSize = s.Joints.SavedSize
		opts.Color = s.Bones.SavedColor
	default:
		opts.JointSize = s.Joints.DefaultSize
		opts.Color = s.Bones.DefaultColor
	}
	return opts
}
