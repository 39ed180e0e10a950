// ABOUTME: Sink facade over the output backends
// ABOUTME: Resolves a backend by probing and keeps it fed through the underrun callback
package sink

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/output"
	"github.com/google/uuid"
)

// ErrNoAudioBackendAvailable is returned by New when every probe fails
var ErrNoAudioBackendAvailable = errors.New("no audio backend available")

// UnderrunFunc is asked for up to n more samples when the buffer runs low.
// It may return fewer, including none.
type UnderrunFunc func(n int) []float32

// Option configures a Sink
type Option func(*Sink)

// WithProbes replaces the default backend fallback chain
func WithProbes(probes ...output.Probe) Option {
	return func(s *Sink) {
		s.probes = probes
	}
}

// Sink streams samples to the first backend that could be opened
type Sink struct {
	id       string
	config   Config
	underrun UnderrunFunc
	probes   []output.Probe

	mu      sync.Mutex
	backend output.Backend
	closed  bool

	inCallback atomic.Bool
}

// New normalizes cfg and opens the first available backend
func New(cfg Config, underrun UnderrunFunc, opts ...Option) (*Sink, error) {
	s := &Sink{
		id:       uuid.New().String(),
		config:   cfg.normalize(),
		underrun: underrun,
		probes:   output.DefaultProbes(),
	}
	for _, opt := range opts {
		opt(s)
	}

	backend, err := s.resolve()
	if err != nil {
		return nil, err
	}
	s.backend = backend

	if s.config.NeutralValue != 0 {
		s.backend.Write(s.neutralRamp())
	}

	log.Printf("Sink %s using %s backend (%dHz, %d channels, buffer %d-%d samples)",
		s.id, backend.Kind(), s.config.SampleRate, s.config.Channels,
		s.config.MinBufferSize, s.config.MaxBufferSize)

	return s, nil
}

// resolve tries each probe in order and keeps the first success
func (s *Sink) resolve() (output.Backend, error) {
	cfg := s.config.backendConfig()
	var errs []error

	for _, probe := range s.probes {
		backend, err := probe.Open(cfg)
		if err == nil && backend == nil {
			err = fmt.Errorf("%s probe returned no backend", probe.Kind)
		}
		if err != nil {
			log.Printf("Sink %s: %s backend unavailable: %v", s.id, probe.Kind, err)
			errs = append(errs, err)
			continue
		}
		return backend, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoAudioBackendAvailable, errors.Join(errs...))
}

// neutralRamp rises linearly from silence to the neutral level over
// MinBufferSize samples, one step per frame
func (s *Sink) neutralRamp() []float32 {
	channels := s.config.Channels
	frames := s.config.MinBufferSize / channels
	ramp := make([]float32, frames*channels)

	for i := 0; i < frames; i++ {
		v := s.config.NeutralValue * float32(i) / float32(frames)
		for ch := 0; ch < channels; ch++ {
			ramp[i*channels+ch] = v
		}
	}
	return ramp
}

// Write queues samples, then tops the buffer up through the underrun callback
func (s *Sink) Write(samples []float32) {
	s.WriteNoCallback(samples)
	s.ExecuteCallback()
}

// WriteNoCallback queues samples without consulting the underrun callback
func (s *Sink) WriteNoCallback(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(samples) == 0 {
		return
	}
	s.backend.Write(samples)
}

// Remaining returns queued samples at the stream rate, or -1 when unknown
func (s *Sink) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return -1
	}
	return s.backend.Remaining()
}

// ExecuteCallback requests enough samples to reach the low-water mark.
// Calls made from inside the underrun callback return immediately.
func (s *Sink) ExecuteCallback() {
	if s.underrun == nil {
		return
	}
	if !s.inCallback.CompareAndSwap(false, true) {
		return
	}
	defer s.inCallback.Store(false)

	remaining := s.Remaining()
	if remaining < 0 {
		return
	}

	requested := s.config.MinBufferSize - remaining
	if requested <= 0 {
		return
	}

	s.WriteNoCallback(s.underrun(requested))
}

// SetVolume sets the output gain; values outside 0-1 are clamped
func (s *Sink) SetVolume(volume float32) {
	if volume < 0 || isNaN(volume) {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.Volume = volume
	if !s.closed {
		s.backend.SetVolume(volume)
	}
}

// Volume returns the current gain
func (s *Sink) Volume() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Volume
}

// Stats returns the backend's buffering counters when it keeps any
func (s *Sink) Stats() output.PipelineStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.backend.(interface{ Stats() output.PipelineStats }); ok && !s.closed {
		return r.Stats()
	}
	return output.PipelineStats{}
}

// Kind reports which backend was resolved
func (s *Sink) Kind() output.Kind {
	return s.backend.Kind()
}

// ID returns the sink's unique identifier
func (s *Sink) ID() string {
	return s.id
}

// Config returns the normalized settings
func (s *Sink) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Close releases the backend. Later writes are ignored.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("failed to close %s backend: %w", s.backend.Kind(), err)
	}
	log.Printf("Sink %s closed", s.id)
	return nil
}
