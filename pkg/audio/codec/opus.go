// ABOUTME: Opus frame codec
// ABOUTME: 20ms frames with a fixed VoIP preset
package codec

import (
	"fmt"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxPacketSize is the largest Opus packet we ever produce
const maxPacketSize = 4000

// maxFrameSamples is 120ms at 48kHz, the longest Opus frame
const maxFrameSamples = 5760

// Opus encodes and decodes Opus frames
type Opus struct {
	encoder   *opus.Encoder
	decoder   *opus.Decoder
	format    audio.Format
	frameSize int
	packet    []byte
}

// NewOpus creates an Opus codec. Rates must be 8, 12, 16, 24 or 48 kHz.
func NewOpus(format audio.Format) (*Opus, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus: %s", format.Codec)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	decoder, err := opus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	return &Opus{
		encoder:   encoder,
		decoder:   decoder,
		format:    format,
		frameSize: format.SampleRate / 50, // 20ms frame
		packet:    make([]byte, maxPacketSize),
	}, nil
}

// Encode compresses one frame
func (o *Opus) Encode(pcm []float32) ([]byte, error) {
	if err := checkFrame(pcm, o.frameSize, o.format.Channels); err != nil {
		return nil, err
	}

	n, err := o.encoder.EncodeFloat32(pcm, o.packet)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	out := make([]byte, n)
	copy(out, o.packet[:n])
	return out, nil
}

// Decode expands one packet
func (o *Opus) Decode(frame []byte) ([]float32, error) {
	pcm := make([]float32, maxFrameSamples*o.format.Channels)

	n, err := o.decoder.DecodeFloat32(frame, pcm)
	if err != nil {
		return nil, fmt.Errorf("opus decode failed: %w", err)
	}
	return pcm[:n*o.format.Channels], nil
}

func (o *Opus) FrameSize() int { return o.frameSize }

func (o *Opus) Format() audio.Format { return o.format }

// Close releases resources
func (o *Opus) Close() error {
	return nil
}
