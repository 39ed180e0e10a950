// ABOUTME: MP3 file source
// ABOUTME: Decodes with go-mp3, which always yields 16-bit stereo
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 reads from an MP3 file
type MP3 struct {
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	title      string
	buf        []byte
}

// NewMP3 opens an MP3 file
func NewMP3(path string) (*MP3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	return &MP3{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
		title:      titleFromPath(path),
	}, nil
}

func (s *MP3) Read(samples []float32) (int, error) {
	// MP3 decoder outputs int16 = 2 bytes per sample
	numBytes := audio.AlignToChannels(len(samples), 2) * 2
	if cap(s.buf) < numBytes {
		s.buf = make([]byte, numBytes)
	}
	buf := s.buf[:numBytes]

	n, err := io.ReadFull(s.decoder, buf)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	if n == 0 && err == nil {
		err = io.EOF
	}

	pcm := audio.Int16LE(buf[:n-n%2])
	copy(samples, pcm)
	return len(pcm), err
}

func (s *MP3) SampleRate() int { return s.sampleRate }
func (s *MP3) Channels() int   { return 2 }
func (s *MP3) Title() string   { return s.title }
func (s *MP3) Close() error {
	return s.file.Close()
}
