// ABOUTME: Tests for player application orchestration
// ABOUTME: Drives the player against in-memory sources and backends
package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/internal/config"
	"github.com/Resonate-Protocol/xaudio-go/internal/source"
	"github.com/Resonate-Protocol/xaudio-go/internal/ui"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/output"
	"github.com/Resonate-Protocol/xaudio-go/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource plays a fixed buffer once
type sliceSource struct {
	samples  []float32
	rate     int
	channels int
	err      error
	closed   bool
}

func (s *sliceSource) Read(buf []float32) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(s.samples) == 0 {
		return 0, io.EOF
	}
	n := copy(buf, s.samples)
	s.samples = s.samples[n:]
	return n, nil
}

func (s *sliceSource) SampleRate() int { return s.rate }
func (s *sliceSource) Channels() int   { return s.channels }
func (s *sliceSource) Title() string   { return "slice" }
func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// drainBackend plays everything instantly and records what it got
type drainBackend struct {
	mu      sync.Mutex
	cfg     output.Config
	written []float32
	volume  float32
	closed  bool
}

func (d *drainBackend) Kind() output.Kind { return output.KindCallback }

func (d *drainBackend) Write(samples []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = append(d.written, samples...)
}

func (d *drainBackend) Remaining() int { return 0 }

func (d *drainBackend) SetVolume(v float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = v
}

func (d *drainBackend) Close() error {
	d.closed = true
	return nil
}

func (d *drainBackend) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.written)
}

// pacedBackend plays a fixed period per Remaining query and keeps a device
// backlog of padding that, like the push backend, is not reported
type pacedBackend struct {
	mu      sync.Mutex
	period  int
	max     int
	queued  int
	played  int
	padding int
}

func (b *pacedBackend) Kind() output.Kind { return output.KindPush }

func (b *pacedBackend) Write(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queued += min(len(samples), b.max-b.queued)
}

func (b *pacedBackend) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := min(b.period, b.queued)
	b.queued -= n
	b.played += n
	b.padding = b.period - n
	return b.queued
}

func (b *pacedBackend) SetVolume(float32) {}
func (b *pacedBackend) Close() error      { return nil }

func drainProbe(backend *drainBackend) sink.Option {
	return sink.WithProbes(output.Probe{
		Kind: output.KindCallback,
		Open: func(cfg output.Config) (output.Backend, error) {
			backend.cfg = cfg
			backend.volume = cfg.Volume
			return backend, nil
		},
	})
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Tick = time.Millisecond
	cfg.TUI = false
	return cfg
}

func TestProducerUpmixesMono(t *testing.T) {
	src := &sliceSource{samples: []float32{0.1, 0.2, 0.3}, rate: 8000, channels: 1}
	p, err := newProducer(src, 8000, 2)
	require.NoError(t, err)

	out, err := p.next(6)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}, out)
}

func TestProducerDownmixesStereo(t *testing.T) {
	src := &sliceSource{samples: []float32{0.2, 0.4, -1, 1}, rate: 8000, channels: 2}
	p, err := newProducer(src, 8000, 1)
	require.NoError(t, err)

	out, err := p.next(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.3, 0}, out, 1e-6)
}

func TestProducerResamples(t *testing.T) {
	src := &sliceSource{samples: []float32{1, 1, 1, 1}, rate: 8000, channels: 1}
	p, err := newProducer(src, 16000, 1)
	require.NoError(t, err)

	out, err := p.next(100)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, out)
	assert.True(t, p.done())
}

func TestProducerShortAtEOF(t *testing.T) {
	src := &sliceSource{samples: []float32{1, 2, 3}, rate: 8000, channels: 1}
	p, err := newProducer(src, 8000, 1)
	require.NoError(t, err)

	out, err := p.next(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, out)
	assert.False(t, p.done())

	out, err = p.next(5)
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, out)
	assert.True(t, p.done())
}

func TestProducerRejectsSurround(t *testing.T) {
	_, err := newProducer(&sliceSource{rate: 48000, channels: 6}, 48000, 2)
	assert.ErrorContains(t, err, "unsupported source channel count")
}

func TestPlayerPlaysSourceToEnd(t *testing.T) {
	src := &sliceSource{samples: make([]float32, 10000), rate: 22050, channels: 1}
	backend := &drainBackend{}

	var statuses []ui.StatusMsg
	p := New(testConfig(), src, WithSinkOptions(drainProbe(backend)), WithStatus(func(msg ui.StatusMsg) {
		statuses = append(statuses, msg)
	}))
	require.NoError(t, p.Start())

	assert.Equal(t, 22050, backend.cfg.SampleRate)
	assert.Equal(t, 1, backend.cfg.Channels)
	require.NotEmpty(t, statuses)
	assert.Equal(t, "callback", statuses[0].Backend)
	assert.Equal(t, "slice", statuses[0].Title)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, "finished", p.State())
	assert.Equal(t, 10000, backend.total())

	require.NoError(t, p.Close())
	assert.True(t, backend.closed)
	assert.True(t, src.closed)
}

func TestPlayerStopsOnCancel(t *testing.T) {
	backend := &drainBackend{}
	p := New(testConfig(), source.NewTone(440, 8000, 2), WithSinkOptions(drainProbe(backend)))
	require.NoError(t, p.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))
	assert.Greater(t, backend.total(), 0)
	assert.Equal(t, "playing", p.State())
}

func TestPlayerReportsReadErrors(t *testing.T) {
	src := &sliceSource{rate: 8000, channels: 1, err: errors.New("disk on fire")}
	p := New(testConfig(), src, WithSinkOptions(drainProbe(&drainBackend{})))
	require.NoError(t, p.Start())

	err := p.Run(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
	assert.Equal(t, "error", p.State())
}

func TestPlayerVolume(t *testing.T) {
	backend := &drainBackend{}
	p := New(testConfig(), source.NewTone(440, 8000, 1), WithSinkOptions(drainProbe(backend)))
	require.NoError(t, p.Start())

	p.SetVolume(40, false)
	assert.InDelta(t, 0.4, backend.volume, 1e-6)

	p.SetVolume(40, true)
	assert.Zero(t, backend.volume)
}

func TestPlayerStartFailsWithoutBackend(t *testing.T) {
	failing := sink.WithProbes(output.Probe{
		Kind: output.KindPush,
		Open: func(output.Config) (output.Backend, error) {
			return nil, output.ErrUnavailable
		},
	})
	p := New(testConfig(), source.NewTone(440, 8000, 1), WithSinkOptions(failing))

	err := p.Start()
	assert.True(t, errors.Is(err, sink.ErrNoAudioBackendAvailable))
}

func TestRunBeforeStart(t *testing.T) {
	p := New(testConfig(), source.NewTone(440, 8000, 1))
	assert.Error(t, p.Run(context.Background()))
}

func TestPlayerFinishesWhileDeviceIdlesOnPadding(t *testing.T) {
	src := &sliceSource{samples: make([]float32, 20000), rate: 44100, channels: 2}
	backend := &pacedBackend{period: 1024}
	probe := sink.WithProbes(output.Probe{
		Kind: output.KindPush,
		Open: func(cfg output.Config) (output.Backend, error) {
			backend.max = cfg.MaxBufferSize
			return backend, nil
		},
	})

	p := New(testConfig(), src, WithSinkOptions(probe))
	require.NoError(t, p.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, "finished", p.State())
	assert.Equal(t, 20000, backend.played)
	assert.Greater(t, backend.padding, 0)
}
