// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Backend contract, the push/callback/bridge backends and their buffering
// Package output provides playback backends for float32 sample streams.
//
// Three delivery strategies are available, tried in order by DefaultProbes:
// a synchronous push backend (oto), a device-callback backend (malgo) that
// resamples to the device's native rate, and a plugin bridge (PortAudio,
// build tag "portaudio") that starts lazily at a fixed 44100 Hz.
//
// Example:
//
//	for _, probe := range output.DefaultProbes() {
//		backend, err := probe.Open(cfg)
//		if err != nil {
//			continue
//		}
//		backend.Write(samples)
//	}
package output
