//go:build portaudio

// ABOUTME: PortAudio bridge backend
// ABOUTME: Library is probed eagerly; the fixed-rate stream starts on first write
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio is the bridge backend. It always runs at BridgeSampleRate and
// does not open a stream until audio is first written.
type PortAudio struct {
	mu       sync.Mutex
	cfg      Config
	stream   *portaudio.Stream
	pipeline *Pipeline
	started  bool
	failed   bool
	closed   bool
}

// NewPortAudio initializes the library only; the stream is opened lazily
func NewPortAudio(cfg Config) (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, unavailable("portaudio", fmt.Errorf("failed to initialize portaudio: %w", err))
	}

	pipeline, err := newBackendPipeline("portaudio", cfg, BridgeSampleRate)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	return &PortAudio{
		cfg:      cfg,
		pipeline: pipeline,
	}, nil
}

func (p *PortAudio) Kind() Kind { return KindBridge }

// Write stages samples and starts the stream if it isn't running yet
func (p *PortAudio) Write(samples []float32) {
	p.pipeline.Write(samples)
	p.ensureStream()
}

// Remaining counts staged plus resampled audio in stream-rate samples
func (p *PortAudio) Remaining() int {
	return p.pipeline.Remaining()
}

func (p *PortAudio) SetVolume(volume float32) {
	p.pipeline.SetVolume(volume)
}

// Stats exposes the pipeline counters
func (p *PortAudio) Stats() PipelineStats {
	return p.pipeline.Stats()
}

// ensureStream opens the bridge stream once. A failure is logged and not
// retried; audio then just accumulates up to the high-water mark.
func (p *PortAudio) ensureStream() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.failed || p.closed {
		return
	}

	stream, err := portaudio.OpenDefaultStream(0, p.cfg.Channels, float64(BridgeSampleRate), SamplesPerCallback,
		func(out []float32) {
			p.pipeline.Pull(out)
		})
	if err != nil {
		log.Printf("Failed to open portaudio stream: %v", err)
		p.failed = true
		return
	}

	if err := stream.Start(); err != nil {
		log.Printf("Failed to start portaudio stream: %v", err)
		stream.Close()
		p.failed = true
		return
	}

	p.stream = stream
	p.started = true
	log.Printf("Audio output initialized: stream %dHz -> bridge %dHz, %d channels (portaudio/bridge)",
		p.cfg.SampleRate, BridgeSampleRate, p.cfg.Channels)
}

// Close stops the stream if one was started and terminates the library
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
		if err := p.stream.Close(); err != nil {
			log.Printf("Warning: portaudio close error: %v", err)
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}
