// ABOUTME: Player configuration loaded from YAML and CLI flags
// ABOUTME: Provides defaults, validation and backend selection
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/output"
	"gopkg.in/yaml.v3"
)

// Backend names a backend preference
type Backend string

const (
	// BackendAuto tries push, then callback, then bridge
	BackendAuto     Backend = "auto"
	BackendPush     Backend = "push"
	BackendCallback Backend = "callback"
	BackendBridge   Backend = "bridge"
)

// Config holds player configuration.
type Config struct {
	// File is the audio file to play. Empty plays a test tone.
	File string `yaml:"file"`

	// Backend restricts probing to one backend.
	// Default: "auto"
	Backend Backend `yaml:"backend"`

	// SampleRate overrides the stream rate; 0 uses the source's rate.
	SampleRate int `yaml:"sample_rate"`

	// Channels overrides the channel count; 0 uses the source's.
	Channels int `yaml:"channels"`

	// MinBufferSize is the low-water mark in samples (0 for the sink default).
	MinBufferSize int `yaml:"min_buffer_size"`

	// MaxBufferSize is the high-water mark in samples (0 for the sink default).
	MaxBufferSize int `yaml:"max_buffer_size"`

	// NeutralValue is the idle output level.
	NeutralValue float32 `yaml:"neutral_value"`

	// Volume is the initial gain (0-1).
	// Default: 1
	Volume float32 `yaml:"volume"`

	// Tick is how often the underrun callback is driven.
	// Default: 20ms
	Tick time.Duration `yaml:"tick"`

	// LogFile is where logs are written.
	LogFile string `yaml:"log_file"`

	// TUI enables the terminal UI.
	TUI bool `yaml:"tui"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Backend: BackendAuto,
		Volume:  1,
		Tick:    20 * time.Millisecond,
		LogFile: "xaudio-player.log",
		TUI:     true,
	}
}

// Load reads a YAML file over the defaults. A missing path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Probes(); err != nil {
		return err
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("sample_rate must not be negative, got %d", c.SampleRate)
	}
	if c.Channels < 0 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.MinBufferSize < 0 || c.MaxBufferSize < 0 {
		return fmt.Errorf("buffer sizes must not be negative")
	}
	if c.NeutralValue <= -1 || c.NeutralValue >= 1 {
		return fmt.Errorf("neutral_value must be in (-1, 1), got %v", c.NeutralValue)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be in [0, 1], got %v", c.Volume)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	return nil
}

// Probes returns the backend probes allowed by Backend
func (c *Config) Probes() ([]output.Probe, error) {
	all := output.DefaultProbes()

	var want output.Kind
	switch c.Backend {
	case BackendAuto, "":
		return all, nil
	case BackendPush:
		want = output.KindPush
	case BackendCallback:
		want = output.KindCallback
	case BackendBridge:
		want = output.KindBridge
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, push, callback or bridge)", c.Backend)
	}

	for _, p := range all {
		if p.Kind == want {
			return []output.Probe{p}, nil
		}
	}
	return nil, fmt.Errorf("backend %q not built in", c.Backend)
}
