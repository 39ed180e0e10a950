// ABOUTME: Refill glue between stream writes and device callbacks
// ABOUTME: Stages writes, resamples them to the device rate and feeds the ring buffer
package output

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/resample"
	"github.com/tphakala/simd/f32"
)

// PipelineConfig describes both ends of a Pipeline
type PipelineConfig struct {
	SourceRate    int
	DeviceRate    int
	Channels      int
	MaxBufferSize int
	Neutral       float32
	Volume        float32
}

// PipelineStats counts degraded-audio events. None of them is an error.
type PipelineStats struct {
	Overruns  int64 // resampled samples evicted from the ring
	Dropped   int64 // written samples refused above the high-water mark
	Underruns int64 // pulls padded with the neutral level
}

// Pipeline is the buffering path used by the pull-driven backends.
// Writes land in a staging buffer at the stream rate; a device callback pulls
// through Pull, which resamples staged audio into the ring when it runs low.
type Pipeline struct {
	mu            sync.Mutex
	channels      int
	maxBufferSize int
	neutral       float32
	volume        float32

	staged    []float32
	chunk     int // staged samples resampled per step
	resampler *resample.Resampler
	ring      *RingBuffer
	stats     PipelineStats
}

// maxRingCallbacks caps the ring at this many device callbacks' worth of
// samples, however far apart the two rates are
const maxRingCallbacks = 64

// NewPipeline sizes the ring for the resampled high-water mark, within
// maxRingCallbacks, and resamples staged audio in chunks that fit half of it
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.SourceRate <= 0 || cfg.DeviceRate <= 0 {
		return nil, fmt.Errorf("%w: rates %d -> %d", resample.ErrInvalidSettings, cfg.SourceRate, cfg.DeviceRate)
	}
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	if cfg.MaxBufferSize < cfg.Channels {
		cfg.MaxBufferSize = SamplesPerCallback * cfg.Channels
	}
	channels := cfg.Channels
	maxBufferSize := audio.AlignToChannels(cfg.MaxBufferSize, channels)
	ratio := float64(cfg.SourceRate) / float64(cfg.DeviceRate)

	ringFrames := int(float64(maxBufferSize/channels)/ratio) + 2
	ringFrames = max(ringFrames, SamplesPerCallback)
	ringFrames = min(ringFrames, maxRingCallbacks*SamplesPerCallback)
	capacity := ringFrames * 2 * channels

	chunkFrames := int(float64(ringFrames-2) * ratio)
	chunkFrames = max(1, min(chunkFrames, maxBufferSize/channels))
	chunk := chunkFrames * channels

	r, err := resample.New(cfg.SourceRate, cfg.DeviceRate, channels, chunk, true)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		channels:      channels,
		maxBufferSize: maxBufferSize,
		neutral:       cfg.Neutral,
		volume:        cfg.Volume,
		staged:        make([]float32, 0, maxBufferSize),
		chunk:         chunk,
		resampler:     r,
		ring:          NewRingBuffer(capacity),
	}, nil
}

// newBackendPipeline builds the pipeline a pull backend plays through.
// A failure marks the backend unavailable.
func newBackendPipeline(backend string, cfg Config, deviceRate int) (*Pipeline, error) {
	p, err := NewPipeline(PipelineConfig{
		SourceRate:    cfg.SampleRate,
		DeviceRate:    deviceRate,
		Channels:      cfg.Channels,
		MaxBufferSize: cfg.MaxBufferSize,
		Neutral:       cfg.NeutralValue,
		Volume:        cfg.Volume,
	})
	if err != nil {
		return nil, unavailable(backend, fmt.Errorf("failed to build resampling pipeline: %w", err))
	}
	return p, nil
}

// Write stages whole frames up to the high-water mark; the rest is dropped
func (p *Pipeline) Write(samples []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	samples = samples[:audio.AlignToChannels(len(samples), p.channels)]
	room := p.maxBufferSize - len(p.staged)
	if room < len(samples) {
		p.stats.Dropped += int64(len(samples) - room)
		samples = samples[:room]
	}
	p.staged = append(p.staged, samples...)
}

// Pull fills dst with device-rate samples. It refills the ring first when
// fewer than two pulls' worth remain, and pads any shortfall with neutral.
func (p *Pipeline) Pull(dst []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if want := 2 * len(dst); p.ring.Remaining() < want {
		p.refillLocked(want)
	}

	n := p.ring.Pull(dst, p.neutral)
	if n < len(dst) {
		p.stats.Underruns++
	}
	if p.volume != 1 && n > 0 {
		f32.Scale(dst[:n], dst[:n], p.volume)
	}
}

// refillLocked resamples staged samples chunk by chunk until the ring holds
// want samples or staging is empty (must hold p.mu)
func (p *Pipeline) refillLocked(want int) {
	for len(p.staged) > 0 && p.ring.Remaining() < want {
		n := min(len(p.staged), p.chunk)
		out, err := p.resampler.Resample(p.staged[:n])
		if err != nil {
			// staging only ever holds whole frames
			p.staged = p.staged[:0]
			return
		}
		p.stats.Overruns += int64(p.ring.Push(out))
		p.staged = p.staged[:copy(p.staged, p.staged[n:])]
	}
}

// Remaining returns buffered audio in stream-rate samples
func (p *Pipeline) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	resampled := int(float64(p.ring.Remaining())*p.resampler.RatioWeight()) / p.channels * p.channels
	return resampled + len(p.staged)
}

// SetVolume sets the gain applied to pulled samples
func (p *Pipeline) SetVolume(volume float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

// Stats returns a snapshot of the degradation counters
func (p *Pipeline) Stats() PipelineStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Reset drops staged and resampled audio along with the resampler tail
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.staged = p.staged[:0]
	p.resampler.Reset()
	p.ring.Reset()
}
