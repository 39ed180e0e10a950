// ABOUTME: Main player application orchestration
// ABOUTME: Feeds a source into the sink on a fixed tick and reports status to the UI
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/internal/config"
	"github.com/Resonate-Protocol/xaudio-go/internal/source"
	"github.com/Resonate-Protocol/xaudio-go/internal/ui"
	"github.com/Resonate-Protocol/xaudio-go/pkg/sink"
)

// statusInterval is how often status is pushed to the UI
const statusInterval = 500 * time.Millisecond

// Option configures a Player
type Option func(*Player)

// WithSinkOptions passes extra options to sink.New
func WithSinkOptions(opts ...sink.Option) Option {
	return func(p *Player) {
		p.sinkOpts = append(p.sinkOpts, opts...)
	}
}

// WithStatus sets the UI status callback
func WithStatus(fn func(ui.StatusMsg)) Option {
	return func(p *Player) {
		p.status = fn
	}
}

// Player streams one source through a sink
type Player struct {
	config   config.Config
	source   source.Source
	sinkOpts []sink.Option
	status   func(ui.StatusMsg)

	sink     *sink.Sink
	producer *producer

	mu      sync.Mutex
	readErr error
	volume  float32
	muted   bool
	state   string
}

// New creates a new player
func New(cfg config.Config, src source.Source, opts ...Option) *Player {
	p := &Player{
		config: cfg,
		source: src,
		volume: cfg.Volume,
		state:  "idle",
		status: func(ui.StatusMsg) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start opens the sink. The stream uses the source's format unless the
// config overrides it.
func (p *Player) Start() error {
	rate := p.config.SampleRate
	if rate == 0 {
		rate = p.source.SampleRate()
	}
	channels := p.config.Channels
	if channels == 0 {
		channels = p.source.Channels()
	}
	if channels > 2 {
		channels = 2
	}

	prod, err := newProducer(p.source, rate, channels)
	if err != nil {
		return err
	}
	p.producer = prod

	opts := p.sinkOpts
	if len(opts) == 0 {
		probes, err := p.config.Probes()
		if err != nil {
			return err
		}
		opts = []sink.Option{sink.WithProbes(probes...)}
	}

	s, err := sink.New(sink.Config{
		Channels:      channels,
		SampleRate:    rate,
		MinBufferSize: p.config.MinBufferSize,
		MaxBufferSize: p.config.MaxBufferSize,
		NeutralValue:  p.config.NeutralValue,
		Volume:        p.config.Volume,
	}, p.underrun, opts...)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	p.sink = s

	// A zero volume is normalized away by the sink, so apply it explicitly
	if p.config.Volume == 0 {
		s.SetVolume(0)
	}

	p.setState("playing")
	cfg := s.Config()
	vol := int(s.Volume()*100 + 0.5)
	p.status(ui.StatusMsg{
		Backend:    s.Kind().String(),
		SinkID:     s.ID(),
		State:      "playing",
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Title:      p.source.Title(),
		Volume:     &vol,
	})

	log.Printf("Playing %s at %dHz, %d channels", p.source.Title(), cfg.SampleRate, cfg.Channels)
	return nil
}

// underrun feeds the sink from the producer
func (p *Player) underrun(n int) []float32 {
	samples, err := p.producer.next(n)
	if err != nil {
		p.mu.Lock()
		p.readErr = err
		p.mu.Unlock()
		return nil
	}
	return samples
}

// Run drives the sink until ctx is cancelled or the source has played out
func (p *Player) Run(ctx context.Context) error {
	if p.sink == nil {
		return fmt.Errorf("player not started")
	}

	tick := time.NewTicker(p.config.Tick)
	defer tick.Stop()
	statusTick := time.NewTicker(statusInterval)
	defer statusTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-tick.C:
			p.sink.ExecuteCallback()

			if err := p.err(); err != nil {
				p.setState("error")
				return err
			}
			if p.producer.done() && p.sink.Remaining() <= 0 {
				p.setState("finished")
				log.Printf("Finished playing %s", p.source.Title())
				return nil
			}

		case <-statusTick.C:
			p.reportStatus()
		}
	}
}

// SetVolume applies a UI volume change (0-100)
func (p *Player) SetVolume(percent int, muted bool) {
	p.mu.Lock()
	p.volume = float32(percent) / 100
	p.muted = muted
	gain := p.volume
	if muted {
		gain = 0
	}
	p.mu.Unlock()

	if p.sink != nil {
		p.sink.SetVolume(gain)
	}
}

// State returns the playback state
func (p *Player) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close releases the sink and the source
func (p *Player) Close() error {
	var errs []error
	if p.sink != nil {
		if err := p.sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.source.Close(); err != nil {
		errs = append(errs, err)
	}
	p.setState("stopped")

	return errors.Join(errs...)
}

func (p *Player) reportStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cfg := p.sink.Config()
	stats := p.sink.Stats()
	buffered := p.sink.Remaining()
	if buffered < 0 {
		buffered = 0
	}

	p.status(ui.StatusMsg{
		State:      p.State(),
		Buffered:   buffered,
		MinBuffer:  cfg.MinBufferSize,
		MaxBuffer:  cfg.MaxBufferSize,
		Overruns:   stats.Overruns,
		Underruns:  stats.Underruns,
		Dropped:    stats.Dropped,
		Goroutines: runtime.NumGoroutine(),
		MemAlloc:   m.Alloc,
	})
}

func (p *Player) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readErr
}

func (p *Player) setState(state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}
