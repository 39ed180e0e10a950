// ABOUTME: WAV file source
// ABOUTME: Streams PCM chunks through go-audio/wav
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV reads from a PCM WAV file
type WAV struct {
	file     *os.File
	decoder  *wav.Decoder
	buf      *goaudio.IntBuffer
	channels int
	rate     int
	scale    float32
	title    string
}

// NewWAV opens a WAV file
func NewWAV(path string) (*WAV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if bitDepth < 8 || bitDepth > 32 {
		_ = f.Close()
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}

	return &WAV{
		file:     f,
		decoder:  decoder,
		buf:      &goaudio.IntBuffer{Format: format},
		channels: format.NumChannels,
		rate:     format.SampleRate,
		scale:    1 / float32(int64(1)<<(bitDepth-1)),
		title:    titleFromPath(path),
	}, nil
}

func (s *WAV) Read(samples []float32) (int, error) {
	want := len(samples) - len(samples)%s.channels
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.buf.Data[:n] {
		samples[i] = float32(v) * s.scale
	}
	return n, nil
}

func (s *WAV) SampleRate() int { return s.rate }
func (s *WAV) Channels() int   { return s.channels }
func (s *WAV) Title() string   { return s.title }
func (s *WAV) Close() error {
	return s.file.Close()
}
