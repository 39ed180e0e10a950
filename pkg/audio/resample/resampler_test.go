// ABOUTME: Tests for the box-filter resampler
// ABOUTME: Covers bypass, DC preservation, tail carry-over and chunk invariance
package resample

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestNewInvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		from     int
		to       int
		channels int
	}{
		{"zero from rate", 0, 8000, 1},
		{"negative to rate", 8000, -1, 1},
		{"zero channels", 8000, 16000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.from, tt.to, tt.channels, 1024, false)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrInvalidSettings), "got %v", err)
		})
	}
}

func TestBypassIsIdentity(t *testing.T) {
	for _, channels := range []int{1, 2, 3} {
		r, err := New(44100, 44100, channels, 4096, false)
		require.NoError(t, err)
		assert.True(t, r.Bypass())
		assert.Equal(t, 1.0, r.RatioWeight())

		input := make([]float32, 30*channels)
		for i := range input {
			input[i] = float32(i) / 100
		}

		out, err := r.Resample(input)
		require.NoError(t, err)
		assert.Equal(t, input, out)

		// a copy, not the caller's slice
		out[0] = 42
		assert.NotEqual(t, float32(42), input[0])
	}
}

func TestBypassNoReturnAdoptsInput(t *testing.T) {
	r, err := New(8000, 8000, 1, 16, true)
	require.NoError(t, err)

	input := []float32{0.1, 0.2, 0.3}
	out, err := r.Resample(input)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Same(t, &input[0], &out[0])
}

func TestUpsampleConstant(t *testing.T) {
	r, err := New(8000, 16000, 1, 1024, false)
	require.NoError(t, err)

	out, err := r.Resample([]float32{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, out)
}

func TestDownsampleConstant(t *testing.T) {
	r, err := New(16000, 8000, 1, 1024, false)
	require.NoError(t, err)

	out, err := r.Resample([]float32{1, 1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1}, out)
}

func TestDownsampleAveragesWindow(t *testing.T) {
	r, err := New(16000, 8000, 2, 1024, false)
	require.NoError(t, err)

	// stereo frames: (1,10) (3,30) -> (2,20)
	out, err := r.Resample([]float32{1, 10, 3, 30})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 20}, out)
}

func TestTailCarriesAcrossCalls(t *testing.T) {
	r, err := New(16000, 8000, 1, 1024, false)
	require.NoError(t, err)

	out, err := r.Resample([]float32{1})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, r.tailExists)
	assert.Equal(t, 1.0, r.lastWeight)

	out, err = r.Resample([]float32{3})
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, out)
	assert.False(t, r.tailExists)
	assert.Zero(t, r.lastWeight)
}

func TestEmptyInputKeepsTail(t *testing.T) {
	r, err := New(16000, 8000, 1, 1024, false)
	require.NoError(t, err)

	_, err = r.Resample([]float32{0.5})
	require.NoError(t, err)

	out, err := r.Resample(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, r.tailExists)
	assert.Equal(t, 1.0, r.lastWeight)
}

func TestInvalidBufferLength(t *testing.T) {
	r, err := New(44100, 48000, 2, 1024, false)
	require.NoError(t, err)

	_, err = r.Resample([]float32{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalidBufferLength), "got %v", err)
}

func TestConstantSignalPreserved(t *testing.T) {
	rates := [][2]int{
		{44100, 48000},
		{48000, 44100},
		{44100, 8000},
		{8000, 44100},
		{22050, 16000},
	}

	for _, pair := range rates {
		for _, channels := range []int{1, 2} {
			r, err := New(pair[0], pair[1], channels, 1<<16, false)
			require.NoError(t, err)

			input := make([]float32, 2000*channels)
			for i := range input {
				input[i] = 0.25
			}

			out, err := r.Resample(input)
			require.NoError(t, err)
			require.NotEmpty(t, out)
			for i, v := range out {
				assert.InDelta(t, 0.25, v, 1e-5, "rates %v ch %d sample %d", pair, channels, i)
			}
		}
	}
}

func TestOutputLengthTracksRatio(t *testing.T) {
	r, err := New(44100, 48000, 1, 1<<16, false)
	require.NoError(t, err)

	out, err := r.Resample(make([]float32, 44100))
	require.NoError(t, err)
	assert.InDelta(t, 48000, len(out), 2)
}

func TestChunkInvariance(t *testing.T) {
	rates := [][2]int{
		{44100, 48000},
		{48000, 44100},
		{8000, 22050},
		{44100, 8000},
	}
	rng := rand.New(rand.NewSource(7))

	for _, pair := range rates {
		for _, channels := range []int{1, 2} {
			frames := 3000
			signal := make([]float32, frames*channels)
			for i := range signal {
				signal[i] = float32(math.Sin(float64(i)*0.013)) * 0.8
			}

			whole, err := New(pair[0], pair[1], channels, 1<<16, false)
			require.NoError(t, err)
			expected, err := whole.Resample(signal)
			require.NoError(t, err)

			chunked, err := New(pair[0], pair[1], channels, 1<<16, false)
			require.NoError(t, err)
			var got []float32
			for pos := 0; pos < frames; {
				n := 1 + rng.Intn(97)
				if pos+n > frames {
					n = frames - pos
				}
				out, err := chunked.Resample(signal[pos*channels : (pos+n)*channels])
				require.NoError(t, err)
				got = append(got, out...)
				pos += n
			}

			require.Len(t, got, len(expected), "rates %v ch %d", pair, channels)
			assert.True(t, floats.EqualApprox(toFloat64(expected), toFloat64(got), 1e-5),
				"rates %v ch %d: chunked output diverges", pair, channels)
		}
	}
}

func TestFrameByFrameAtInexactRatio(t *testing.T) {
	// 1200/48000 has no exact binary representation
	signal := make([]float32, 400)
	for i := range signal {
		signal[i] = float32(math.Sin(float64(i) * 0.05))
	}

	whole, err := New(1200, 48000, 1, 1<<16, false)
	require.NoError(t, err)
	expected, err := whole.Resample(signal)
	require.NoError(t, err)
	require.Len(t, expected, 16000)

	chunked, err := New(1200, 48000, 1, 1<<16, false)
	require.NoError(t, err)
	var got []float32
	for i := range signal {
		out, err := chunked.Resample(signal[i : i+1])
		require.NoError(t, err)
		got = append(got, out...)
	}

	require.Len(t, got, len(expected))
	assert.True(t, floats.EqualApprox(toFloat64(expected), toFloat64(got), 1e-6))
}

func TestNoReturnReusesOwnedBuffer(t *testing.T) {
	r, err := New(16000, 8000, 1, 64, true)
	require.NoError(t, err)

	first, err := r.Resample([]float32{1, 1, 1, 1})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := r.Resample([]float32{0, 0})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, float32(0), first[0])
}

func TestCapacityClampsInput(t *testing.T) {
	r, err := New(16000, 8000, 1, 4, false)
	require.NoError(t, err)

	out, err := r.Resample([]float32{1, 1, 1, 1, 5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, out)
}

func TestReset(t *testing.T) {
	r, err := New(16000, 8000, 1, 16, false)
	require.NoError(t, err)

	_, err = r.Resample([]float32{9})
	require.NoError(t, err)
	r.Reset()

	out, err := r.Resample([]float32{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, out)
}

func toFloat64(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
