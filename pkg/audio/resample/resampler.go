// ABOUTME: Streaming box-filter resampler for interleaved float32 PCM
// ABOUTME: Carries partial output state across calls so chunking never changes the result
package resample

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSettings is returned when a rate or channel count is not positive
	ErrInvalidSettings = errors.New("invalid resampler settings")

	// ErrInvalidBufferLength is returned when the input is not a whole number of frames
	ErrInvalidBufferLength = errors.New("buffer length is not a multiple of the channel count")
)

// Resampler converts interleaved PCM between two fixed rates.
//
// Each output sample is the average of the input it covers (a uniform window
// ratioWeight input samples wide). A window that straddles the end of a call is
// kept as a tail and finished by the next call.
type Resampler struct {
	fromRate    int
	toRate      int
	channels    int
	capacity    int
	noReturn    bool
	ratioWeight float64

	tailExists bool
	lastWeight float64
	lastOutput []float64

	// scratch accumulator, one per channel
	accum        []float64
	outputBuffer []float32
}

// New creates a resampler. capacity bounds how many input samples one call
// consumes and sizes the preallocated output buffer. With noReturn set,
// Resample returns a view of that owned buffer instead of allocating.
func New(fromRate, toRate, channels, capacity int, noReturn bool) (*Resampler, error) {
	if fromRate <= 0 || toRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: from=%d to=%d channels=%d", ErrInvalidSettings, fromRate, toRate, channels)
	}
	if capacity < channels {
		capacity = channels
	}

	r := &Resampler{
		fromRate:    fromRate,
		toRate:      toRate,
		channels:    channels,
		capacity:    capacity,
		noReturn:    noReturn,
		ratioWeight: 1,
	}

	if fromRate != toRate {
		r.ratioWeight = float64(fromRate) / float64(toRate)
		r.lastOutput = make([]float64, channels)
		r.accum = make([]float64, channels)
		r.outputBuffer = make([]float32, r.OutputSize(capacity))
	}

	return r, nil
}

// RatioWeight returns fromRate/toRate (1 in bypass mode)
func (r *Resampler) RatioWeight() float64 {
	return r.ratioWeight
}

// Channels returns the interleaved channel count
func (r *Resampler) Channels() int {
	return r.channels
}

// Bypass reports whether the resampler passes input through unchanged
func (r *Resampler) Bypass() bool {
	return r.fromRate == r.toRate
}

// OutputSize returns an upper bound on the samples produced from n input samples
func (r *Resampler) OutputSize(n int) int {
	frames := int(float64(n/r.channels)/r.ratioWeight) + 2
	return frames * r.channels
}

// Reset discards any pending tail
func (r *Resampler) Reset() {
	r.tailExists = false
	r.lastWeight = 0
	for ch := range r.lastOutput {
		r.lastOutput[ch] = 0
	}
}

// Resample converts one block. Input beyond the configured capacity is
// ignored. In noReturn mode the result aliases internal state and is only
// valid until the next call.
func (r *Resampler) Resample(input []float32) ([]float32, error) {
	length := len(input)
	if length%r.channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrInvalidBufferLength, length, r.channels)
	}
	if length > r.capacity {
		length = r.capacity - r.capacity%r.channels
	}
	if length == 0 {
		return []float32{}, nil
	}
	input = input[:length]

	if r.Bypass() {
		if r.noReturn {
			return input, nil
		}
		out := make([]float32, length)
		copy(out, input)
		return out, nil
	}

	n := r.interpolate(input)
	if r.noReturn {
		return r.outputBuffer[:n], nil
	}
	out := make([]float32, n)
	copy(out, r.outputBuffer[:n])
	return out, nil
}

const weightEpsilon = 1e-9

// interpolate runs the box filter over input and returns the number of
// samples written to outputBuffer.
func (r *Resampler) interpolate(input []float32) int {
	if need := r.OutputSize(len(input)); need > len(r.outputBuffer) {
		r.outputBuffer = make([]float32, need)
	}

	channels := r.channels
	ratioWeight := r.ratioWeight
	accum := r.accum
	out := r.outputBuffer
	bufferLength := len(input)

	var weight, amountToNext, currentPosition float64
	actualPosition := 0
	outputOffset := 0
	resumeTail := r.tailExists
	r.tailExists = false

	for {
		if resumeTail {
			weight = r.lastWeight
			copy(accum, r.lastOutput)
			resumeTail = false
		} else {
			weight = ratioWeight
			for ch := range accum {
				accum[ch] = 0
			}
		}

		for weight > 0 && actualPosition < bufferLength {
			amountToNext = 1 + float64(actualPosition) - currentPosition
			if weight >= amountToNext-weightEpsilon {
				for ch := 0; ch < channels; ch++ {
					accum[ch] += float64(input[actualPosition]) * amountToNext
					actualPosition++
				}
				currentPosition = float64(actualPosition)
				weight -= amountToNext
			} else {
				for ch := 0; ch < channels; ch++ {
					accum[ch] += float64(input[actualPosition+ch]) * weight
				}
				currentPosition += weight
				weight = 0
				break
			}
		}

		// leftovers within weightEpsilon of a boundary are rounding error
		if weight > weightEpsilon {
			r.lastWeight = weight
			copy(r.lastOutput, accum)
			r.tailExists = true
			break
		}

		for ch := 0; ch < channels; ch++ {
			out[outputOffset] = float32(accum[ch] / ratioWeight)
			outputOffset++
		}

		if actualPosition >= bufferLength {
			break
		}
	}

	if !r.tailExists {
		r.lastWeight = 0
	}
	return outputOffset
}
