// ABOUTME: Raw PCM frame codec
// ABOUTME: Packs frames as 16-bit little-endian samples
package codec

import (
	"fmt"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
)

// PCM16 is an uncompressed frame codec
type PCM16 struct {
	format    audio.Format
	frameSize int
}

// NewPCM16 creates a PCM codec with frameSize samples per channel
func NewPCM16(format audio.Format, frameSize int) (*PCM16, error) {
	if format.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}
	if frameSize < 1 {
		return nil, fmt.Errorf("invalid frame size: %d", frameSize)
	}
	format.BitDepth = 16
	return &PCM16{format: format, frameSize: frameSize}, nil
}

// Encode packs one frame
func (p *PCM16) Encode(pcm []float32) ([]byte, error) {
	if err := checkFrame(pcm, p.frameSize, p.format.Channels); err != nil {
		return nil, err
	}
	out := make([]byte, len(pcm)*2)
	audio.PutInt16LE(out, pcm)
	return out, nil
}

// Decode unpacks one frame
func (p *PCM16) Decode(frame []byte) ([]float32, error) {
	if len(frame)%(2*p.format.Channels) != 0 {
		return nil, fmt.Errorf("pcm frame of %d bytes is not whole samples", len(frame))
	}
	return audio.Int16LE(frame), nil
}

func (p *PCM16) FrameSize() int { return p.frameSize }

func (p *PCM16) Format() audio.Format { return p.format }

// Close releases resources
func (p *PCM16) Close() error {
	return nil
}
