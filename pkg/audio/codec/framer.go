// ABOUTME: Whole-frame accumulator in front of a codec
// ABOUTME: Buffers samples until a full frame is ready and pads the last one with silence
package codec

// Framer feeds a codec in whole frames
type Framer struct {
	codec   Codec
	size    int // samples per frame across all channels
	pending []float32
}

// NewFramer wraps c
func NewFramer(c Codec) *Framer {
	size := c.FrameSize() * c.Format().Channels
	return &Framer{
		codec:   c,
		size:    size,
		pending: make([]float32, 0, size),
	}
}

// Put buffers samples and returns an encoded frame for each one completed
func (f *Framer) Put(samples []float32) ([][]byte, error) {
	var frames [][]byte

	for len(samples) > 0 {
		take := f.size - len(f.pending)
		if take > len(samples) {
			take = len(samples)
		}
		f.pending = append(f.pending, samples[:take]...)
		samples = samples[take:]

		if len(f.pending) < f.size {
			break
		}

		frame, err := f.codec.Encode(f.pending)
		f.pending = f.pending[:0]
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}

	return frames, nil
}

// Finalize pads any partial frame with silence and encodes it
func (f *Framer) Finalize() ([]byte, error) {
	if len(f.pending) == 0 {
		return nil, nil
	}
	for len(f.pending) < f.size {
		f.pending = append(f.pending, 0)
	}

	frame, err := f.codec.Encode(f.pending)
	f.pending = f.pending[:0]
	return frame, err
}

// Pending returns how many samples are waiting for a full frame
func (f *Framer) Pending() int {
	return len(f.pending)
}

// Clear drops pending samples
func (f *Framer) Clear() {
	f.pending = f.pending[:0]
}
