// ABOUTME: Sink configuration and normalization
// ABOUTME: Out-of-range settings fall back to defaults instead of failing
package sink

import (
	"math"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/output"
)

// Config holds stream settings. Every field is optional; invalid values are
// replaced during New.
type Config struct {
	// Channels is 1 or 2 (anything but 2 becomes 1)
	Channels int

	// SampleRate of written samples in Hz (default: 44100)
	SampleRate int

	// MinBufferSize is the low-water mark in samples across all channels
	// (default: 2*SamplesPerCallback)
	MinBufferSize int

	// MaxBufferSize is the high-water mark in samples (default: 2*MinBufferSize)
	MaxBufferSize int

	// NeutralValue is the idle level in (-1, 1); zero for silence
	NeutralValue float32

	// Volume is the output gain (0-1, default: 1). Zero means unset.
	Volume float32
}

// normalize applies the clamping rules and returns the settings the sink runs with
func (c Config) normalize() Config {
	if c.Channels != 2 {
		c.Channels = 1
	}

	if c.SampleRate < audio.MinSampleRate || c.SampleRate > audio.MaxSampleRate {
		c.SampleRate = audio.DefaultSampleRate
	}

	floor := 2 * output.SamplesPerCallback
	if c.MinBufferSize >= floor && c.MinBufferSize < c.MaxBufferSize {
		c.MinBufferSize = audio.AlignToChannels(c.MinBufferSize, c.Channels)
	} else {
		c.MinBufferSize = floor
	}

	if c.MaxBufferSize > c.MinBufferSize+c.Channels {
		c.MaxBufferSize = audio.AlignToChannels(c.MaxBufferSize, c.Channels)
	} else {
		c.MaxBufferSize = 2 * c.MinBufferSize
	}

	if c.NeutralValue <= -1 || c.NeutralValue >= 1 || isNaN(c.NeutralValue) {
		c.NeutralValue = 0
	}

	if c.Volume <= 0 || c.Volume > 1 || isNaN(c.Volume) {
		c.Volume = 1
	}

	return c
}

func (c Config) backendConfig() output.Config {
	return output.Config{
		SampleRate:    c.SampleRate,
		Channels:      c.Channels,
		MinBufferSize: c.MinBufferSize,
		MaxBufferSize: c.MaxBufferSize,
		NeutralValue:  c.NeutralValue,
		Volume:        c.Volume,
	}
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}
