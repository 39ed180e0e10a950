// ABOUTME: Audio source abstraction for playing files or generating test tones
// ABOUTME: Supports MP3, FLAC and WAV files decoded to float32 samples
package source

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Source provides interleaved float32 samples
type Source interface {
	// Read fills samples and returns how many were written. Returns io.EOF
	// once the source is exhausted.
	Read(samples []float32) (int, error)
	// SampleRate returns the sample rate of the audio
	SampleRate() int
	// Channels returns the number of channels
	Channels() int
	// Title returns a display name
	Title() string
	// Close closes the audio source
	Close() error
}

// Open creates a source from a file path. An empty path gives a test tone.
func Open(path string) (Source, error) {
	if path == "" {
		return NewTone(DefaultToneFrequency, DefaultToneSampleRate, 2), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	var src Source
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		src, err = NewMP3(path)
	case ".flac":
		src, err = NewFLAC(path)
	case ".wav":
		src, err = NewWAV(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .wav)", ext)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %s (sample rate: %d Hz, channels: %d)", src.Title(), src.SampleRate(), src.Channels())
	return src, nil
}

// titleFromPath uses the file name without extension as the title
func titleFromPath(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
