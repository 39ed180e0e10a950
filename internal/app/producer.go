// ABOUTME: Pulls samples from a source and shapes them for the sink
// ABOUTME: Converts channel layout and sample rate when the stream differs from the source
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/xaudio-go/internal/source"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/resample"
)

// readChunk is how many source frames are decoded per read
const readChunk = 1024

// producer answers underrun requests from a source
type producer struct {
	src      source.Source
	channels int // stream channels
	resamp   *resample.Resampler

	raw     []float32
	mixed   []float32
	pending []float32
	eof     bool
}

func newProducer(src source.Source, rate, channels int) (*producer, error) {
	if src.Channels() < 1 || src.Channels() > 2 {
		return nil, fmt.Errorf("unsupported source channel count: %d", src.Channels())
	}

	p := &producer{
		src:      src,
		channels: channels,
		raw:      make([]float32, readChunk*src.Channels()),
		mixed:    make([]float32, readChunk*channels),
	}

	if rate != src.SampleRate() {
		r, err := resample.New(src.SampleRate(), rate, channels, readChunk*channels, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}
		p.resamp = r
	}

	return p, nil
}

// next returns up to n samples; fewer only once the source is exhausted
func (p *producer) next(n int) ([]float32, error) {
	for len(p.pending) < n && !p.eof {
		if err := p.fill(); err != nil {
			return nil, err
		}
	}

	if n > len(p.pending) {
		n = len(p.pending)
	}
	out := make([]float32, n)
	copy(out, p.pending)
	p.pending = p.pending[:copy(p.pending, p.pending[n:])]
	return out, nil
}

// done reports whether the source is exhausted and nothing is pending
func (p *producer) done() bool {
	return p.eof && len(p.pending) == 0
}

// fill decodes one chunk into pending
func (p *producer) fill() error {
	n, err := p.src.Read(p.raw)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read source: %w", err)
		}
		p.eof = true
	}
	if n == 0 {
		return nil
	}

	samples := p.mix(p.raw[:n-n%p.src.Channels()])
	if p.resamp != nil {
		samples, err = p.resamp.Resample(samples)
		if err != nil {
			return fmt.Errorf("failed to resample: %w", err)
		}
	}
	p.pending = append(p.pending, samples...)
	return nil
}

// mix converts the source channel layout to the stream layout
func (p *producer) mix(in []float32) []float32 {
	srcCh := p.src.Channels()
	if srcCh == p.channels {
		return in
	}

	frames := len(in) / srcCh
	out := p.mixed[:frames*p.channels]
	for i := 0; i < frames; i++ {
		if srcCh == 1 {
			out[i*2] = in[i]
			out[i*2+1] = in[i]
		} else {
			out[i] = (in[i*2] + in[i*2+1]) / 2
		}
	}
	return out
}
