// ABOUTME: Unit tests for the Opus codec
// ABOUTME: Tests construction and a frame round trip
package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpus(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid 16kHz mono",
			format: audio.Format{Codec: "opus", SampleRate: 16000, Channels: 1},
		},
		{
			name:   "valid 48kHz stereo",
			format: audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2},
		},
		{
			name:        "invalid codec",
			format:      audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2},
			wantErr:     true,
			errContains: "invalid codec",
		},
		{
			name:        "unsupported rate",
			format:      audio.Format{Codec: "opus", SampleRate: 44100, Channels: 2},
			wantErr:     true,
			errContains: "failed to create opus encoder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewOpus(tt.format)
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format.SampleRate/50, c.FrameSize())
			assert.NoError(t, c.Close())
		})
	}
}

func TestOpusRoundTrip(t *testing.T) {
	c, err := NewOpus(audio.Format{Codec: "opus", SampleRate: 16000, Channels: 1})
	require.NoError(t, err)

	pcm := make([]float32, c.FrameSize())
	for i := range pcm {
		pcm[i] = float32(0.3 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	frame, err := c.Encode(pcm)
	require.NoError(t, err)
	assert.NotEmpty(t, frame)

	decoded, err := c.Decode(frame)
	require.NoError(t, err)
	assert.Len(t, decoded, c.FrameSize())
}

func TestOpusRejectsPartialFrame(t *testing.T) {
	c, err := NewOpus(audio.Format{Codec: "opus", SampleRate: 16000, Channels: 1})
	require.NoError(t, err)

	_, err = c.Encode(make([]float32, 100))
	assert.True(t, errors.Is(err, ErrFrameSize))
}
