// ABOUTME: Audio output backend interface definition
// ABOUTME: Common contract, probe list and settings for playback backends
package output

import (
	"errors"
	"fmt"
)

const (
	// SamplesPerCallback is the per-channel frame count a device callback
	// asks for; buffer floors are derived from it
	SamplesPerCallback = 2048

	// BridgeSampleRate is the fixed rate of the plugin bridge backend
	BridgeSampleRate = 44100
)

// ErrUnavailable marks a backend that cannot run in this environment.
// Probes wrap it; the caller moves on to the next backend.
var ErrUnavailable = errors.New("audio backend unavailable")

// Kind identifies which delivery strategy a backend uses
type Kind int

const (
	KindUnresolved Kind = iota
	KindPush            // synchronous push at the stream rate
	KindCallback        // device callback pulls from a resampled ring
	KindBridge          // native plugin bridge, lazily started
)

func (k Kind) String() string {
	switch k {
	case KindPush:
		return "push"
	case KindCallback:
		return "callback"
	case KindBridge:
		return "bridge"
	default:
		return "unresolved"
	}
}

// Config carries the stream settings a backend is opened with.
// Values are expected to be normalized by the caller.
type Config struct {
	SampleRate    int
	Channels      int
	MinBufferSize int
	MaxBufferSize int
	NeutralValue  float32
	Volume        float32
}

// Backend is one resolved output path
type Backend interface {
	// Kind reports the delivery strategy
	Kind() Kind

	// Write queues interleaved samples; it never blocks and never fails.
	// Samples that do not fit are dropped.
	Write(samples []float32)

	// Remaining estimates queued audio in stream-rate samples, or -1
	Remaining() int

	// SetVolume sets the output gain (0-1)
	SetVolume(volume float32)

	// Close releases the device
	Close() error
}

// Probe opens one backend kind. A returned error means the backend is not
// usable here and is never fatal on its own.
type Probe struct {
	Kind Kind
	Open func(cfg Config) (Backend, error)
}

// DefaultProbes returns the fallback chain: push, then callback, then bridge
func DefaultProbes() []Probe {
	return []Probe{
		{Kind: KindPush, Open: NewOto},
		{Kind: KindCallback, Open: NewMalgo},
		{Kind: KindBridge, Open: NewPortAudio},
	}
}

func unavailable(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, backend, err)
}
