// ABOUTME: Malgo-based callback backend
// ABOUTME: Runs the device at its native rate and pulls resampled audio from a pipeline
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo is the callback-driven backend. The device picks its own rate;
// writes are resampled to it on demand from inside the data callback.
type Malgo struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	pipeline   *Pipeline
	channels   int
	deviceRate int

	// scratch is only touched from the device callback
	scratch []float32
	once    sync.Once
}

// NewMalgo opens the default playback device in float32 at its native rate
func NewMalgo(cfg Config) (Backend, error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, unavailable("malgo", fmt.Errorf("failed to initialize malgo context: %w", err))
	}

	m := &Malgo{
		malgoCtx: malgoCtx,
		channels: cfg.Channels,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = 0 // device default
	deviceConfig.PeriodSizeInFrames = SamplesPerCallback
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		m.freeContext()
		return nil, unavailable("malgo", fmt.Errorf("failed to initialize playback device: %w", err))
	}

	m.deviceRate = int(device.SampleRate())
	if m.deviceRate <= 0 {
		m.deviceRate = cfg.SampleRate
	}

	// The pipeline must exist before the first callback fires
	m.pipeline, err = newBackendPipeline("malgo", cfg, m.deviceRate)
	if err != nil {
		device.Uninit()
		m.freeContext()
		return nil, err
	}
	m.scratch = make([]float32, SamplesPerCallback*cfg.Channels)

	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext()
		return nil, unavailable("malgo", fmt.Errorf("failed to start device: %w", err))
	}
	m.device = device

	log.Printf("Audio output initialized: stream %dHz -> device %dHz, %d channels (malgo/callback)",
		cfg.SampleRate, m.deviceRate, cfg.Channels)

	return m, nil
}

func (m *Malgo) Kind() Kind { return KindCallback }

// Write stages samples for the next callback
func (m *Malgo) Write(samples []float32) {
	m.pipeline.Write(samples)
}

// Remaining reports buffered audio in stream-rate samples
func (m *Malgo) Remaining() int {
	return m.pipeline.Remaining()
}

func (m *Malgo) SetVolume(volume float32) {
	m.pipeline.SetVolume(volume)
}

// Stats exposes the pipeline counters
func (m *Malgo) Stats() PipelineStats {
	return m.pipeline.Stats()
}

// DeviceRate returns the rate the device actually runs at
func (m *Malgo) DeviceRate() int {
	return m.deviceRate
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	total := int(frameCount) * m.channels
	if cap(m.scratch) < total {
		m.scratch = make([]float32, total)
	}
	samples := m.scratch[:total]

	m.pipeline.Pull(samples)
	audio.PutFloat32LE(pOutput, samples)
}

// Close stops the device and releases the context
func (m *Malgo) Close() error {
	m.once.Do(func() {
		if m.device != nil {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
			m.device.Uninit()
			m.device = nil
		}
		m.freeContext()
	})
	return nil
}

func (m *Malgo) freeContext() {
	if m.malgoCtx == nil {
		return
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
}
