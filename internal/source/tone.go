// ABOUTME: Test tone generator
// ABOUTME: Generates an endless sine wave at half amplitude
package source

import (
	"fmt"
	"math"
	"sync"
)

const (
	DefaultToneFrequency  = 440.0 // A4 note
	DefaultToneSampleRate = 44100
)

// Tone generates a sine wave on every channel
type Tone struct {
	mu         sync.Mutex
	frequency  float64
	sampleRate int
	channels   int
	frameIndex uint64
	amplitude  float64
}

// NewTone creates a tone generator
func NewTone(frequency float64, sampleRate, channels int) *Tone {
	if channels < 1 {
		channels = 1
	}
	return &Tone{
		frequency:  frequency,
		sampleRate: sampleRate,
		channels:   channels,
		amplitude:  0.5, // 50% volume
	}
}

// Read writes whole frames only; it never runs out
func (s *Tone) Read(samples []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(samples) / s.channels
	for i := 0; i < frames; i++ {
		t := float64(s.frameIndex+uint64(i)) / float64(s.sampleRate)
		v := float32(s.amplitude * math.Sin(2*math.Pi*s.frequency*t))
		for ch := 0; ch < s.channels; ch++ {
			samples[i*s.channels+ch] = v
		}
	}
	s.frameIndex += uint64(frames)

	return frames * s.channels, nil
}

func (s *Tone) SampleRate() int { return s.sampleRate }
func (s *Tone) Channels() int   { return s.channels }
func (s *Tone) Title() string   { return fmt.Sprintf("Test Tone (%.0f Hz)", s.frequency) }
func (s *Tone) Close() error    { return nil }
