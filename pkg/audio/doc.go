// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and float32 sample conversion functions
// Package audio provides fundamental audio types and utilities shared by the
// resampler, output backends and codecs.
//
// Samples are interleaved float32 values in [-1, 1]:
//
//	mono   - [s0, s1, s2, ...]
//	stereo - [l0, r0, l1, r1, ...]
//
// Conversions to 16-bit PCM use the asymmetric scale common to WAV writers
// (negative values scale by 0x8000, positive by 0x7FFF).
//
// Example:
//
//	buf := make([]byte, len(samples)*2)
//	audio.PutInt16LE(buf, samples)
package audio
