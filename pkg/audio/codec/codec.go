// ABOUTME: Codec interface definition
// ABOUTME: Encoders work on exactly one frame of interleaved samples at a time
package codec

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
)

// ErrFrameSize is returned when Encode gets anything but one whole frame
var ErrFrameSize = errors.New("input is not exactly one frame")

// Codec encodes and decodes fixed-size frames
type Codec interface {
	// Encode compresses exactly FrameSize()*channels interleaved samples
	Encode(pcm []float32) ([]byte, error)

	// Decode expands one frame back to interleaved samples
	Decode(frame []byte) ([]float32, error)

	// FrameSize returns samples per channel per frame
	FrameSize() int

	// Format returns the stream format
	Format() audio.Format

	// Close releases resources
	Close() error
}

// New creates a codec by name
func New(format audio.Format) (Codec, error) {
	switch format.Codec {
	case "opus":
		return NewOpus(format)
	case "pcm":
		return NewPCM16(format, format.SampleRate/50)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}

func checkFrame(pcm []float32, frameSize, channels int) error {
	if len(pcm) != frameSize*channels {
		return fmt.Errorf("%w: got %d samples, want %d", ErrFrameSize, len(pcm), frameSize*channels)
	}
	return nil
}
