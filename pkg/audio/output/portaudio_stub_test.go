//go:build !portaudio

// ABOUTME: Tests for the PortAudio stub
// ABOUTME: The bridge probe must fail softly when the tag is off
package output

import (
	"errors"
	"testing"
)

func TestPortAudioStubUnavailable(t *testing.T) {
	backend, err := NewPortAudio(Config{SampleRate: 44100, Channels: 2})
	if backend != nil {
		t.Fatal("expected no backend from stub")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
