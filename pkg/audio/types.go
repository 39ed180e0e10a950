// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and float32 <-> integer PCM conversions
package audio

import (
	"encoding/binary"
	"math"
)

const (
	// Valid stream sample rate range (Hz)
	MinSampleRate = 1
	MaxSampleRate = 0xFFFFFF

	// DefaultSampleRate is used when a requested rate is out of range
	DefaultSampleRate = 44100
)

// Format describes an interleaved PCM stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Frames returns how many whole frames n interleaved samples make up
func (f Format) Frames(n int) int {
	if f.Channels <= 0 {
		return 0
	}
	return n / f.Channels
}

// Clamp limits a sample to the [-1, 1] range
func Clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// SampleToInt16 converts a float sample to int16 (asymmetric scale, clamped)
func SampleToInt16(s float32) int16 {
	s = Clamp(s)
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}

// SampleFromInt16 converts an int16 sample to float in [-1, 1)
func SampleFromInt16(s int16) float32 {
	return float32(s) / 0x8000
}

// AlignToChannels rounds n down to a whole number of frames
func AlignToChannels(n, channels int) int {
	if channels <= 1 {
		return n
	}
	return n - n%channels
}

// PutInt16LE packs samples as 16-bit little-endian PCM into dst.
// Returns the number of bytes written; dst must hold 2*len(samples) bytes.
func PutInt16LE(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(SampleToInt16(s)))
	}
	return len(samples) * 2
}

// PutFloat32LE packs samples as 32-bit little-endian floats into dst.
func PutFloat32LE(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
	return len(samples) * 4
}

// Int16LE unpacks 16-bit little-endian PCM into float samples
func Int16LE(src []byte) []float32 {
	samples := make([]float32, len(src)/2)
	for i := range samples {
		samples[i] = SampleFromInt16(int16(binary.LittleEndian.Uint16(src[i*2:])))
	}
	return samples
}
