//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: The bridge probe always reports unavailable in this build
package output

import "errors"

var errPortAudioDisabled = errors.New("support not enabled (build with -tags portaudio)")

// NewPortAudio reports the bridge backend as unavailable
func NewPortAudio(cfg Config) (Backend, error) {
	return nil, unavailable("portaudio", errPortAudioDisabled)
}
