// ABOUTME: FLAC file source
// ABOUTME: Decodes frames with mewkiz/flac and scales by the stream bit depth
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// FLAC reads from a FLAC file
type FLAC struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	scale      float32
	title      string

	// decoded samples not yet handed out
	pending []float32
}

// NewFLAC opens a FLAC file
func NewFLAC(path string) (*FLAC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	return &FLAC{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      1 / float32(int64(1)<<(info.BitsPerSample-1)),
		title:      titleFromPath(path),
	}, nil
}

func (s *FLAC) Read(samples []float32) (int, error) {
	read := 0

	for read < len(samples) {
		if len(s.pending) == 0 {
			f, err := s.stream.ParseNext()
			if err != nil {
				if err == io.EOF && read > 0 {
					return read, nil
				}
				return read, err
			}
			s.appendFrame(f)
		}

		n := copy(samples[read:], s.pending)
		s.pending = s.pending[n:]
		read += n
	}

	return read, nil
}

// appendFrame interleaves a decoded frame into pending
func (s *FLAC) appendFrame(f *frame.Frame) {
	blockSize := int(f.BlockSize)
	out := make([]float32, 0, blockSize*s.channels)
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < s.channels; ch++ {
			out = append(out, float32(f.Subframes[ch].Samples[i])*s.scale)
		}
	}
	s.pending = out
}

func (s *FLAC) SampleRate() int { return s.sampleRate }
func (s *FLAC) Channels() int   { return s.channels }
func (s *FLAC) Title() string   { return s.title }
func (s *FLAC) Close() error {
	return s.file.Close()
}
