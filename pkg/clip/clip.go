// ABOUTME: Recorded audio clip container
// ABOUTME: Holds raw samples and their encoded frames, with WAV import and export
package clip

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/codec"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrFinalized is returned when appending to a finished clip
var ErrFinalized = errors.New("clip is finalized")

// Clip is a recording of interleaved samples with an optional encoded copy
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []float32
	Frames     [][]byte
	StartTime  time.Time
	Finalized  bool
}

// New creates an empty clip
func New(sampleRate, channels int) *Clip {
	if sampleRate < audio.MinSampleRate || sampleRate > audio.MaxSampleRate {
		sampleRate = audio.DefaultSampleRate
	}
	if channels < 1 {
		channels = 1
	}
	return &Clip{
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// AddSamples appends samples. Frames are left as they are until ComputeFrames.
func (c *Clip) AddSamples(samples []float32) error {
	if c.Finalized {
		return ErrFinalized
	}
	c.Samples = append(c.Samples, samples...)
	return nil
}

// AddFrames appends encoded frames. Samples are left as they are until ComputeSamples.
func (c *Clip) AddFrames(frames ...[]byte) error {
	if c.Finalized {
		return ErrFinalized
	}
	c.Frames = append(c.Frames, frames...)
	return nil
}

// Length returns the duration of the raw samples
func (c *Clip) Length() time.Duration {
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// EndTime returns StartTime plus Length
func (c *Clip) EndTime() time.Time {
	return c.StartTime.Add(c.Length())
}

// Finalize marks the clip complete
func (c *Clip) Finalize() {
	c.Finalized = true
}

// ComputeFrames re-encodes all samples, padding the last frame with silence
func (c *Clip) ComputeFrames(cd codec.Codec) error {
	if err := c.checkCodec(cd); err != nil {
		return err
	}

	framer := codec.NewFramer(cd)
	frames, err := framer.Put(c.Samples)
	if err != nil {
		return fmt.Errorf("failed to encode clip: %w", err)
	}
	last, err := framer.Finalize()
	if err != nil {
		return fmt.Errorf("failed to encode final frame: %w", err)
	}
	if last != nil {
		frames = append(frames, last)
	}

	c.Frames = frames
	return nil
}

// ComputeSamples replaces the samples with the decoded frames
func (c *Clip) ComputeSamples(cd codec.Codec) error {
	if err := c.checkCodec(cd); err != nil {
		return err
	}

	samples := make([]float32, 0, len(c.Frames)*cd.FrameSize()*c.Channels)
	for i, frame := range c.Frames {
		pcm, err := cd.Decode(frame)
		if err != nil {
			return fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		samples = append(samples, pcm...)
	}

	c.Samples = samples
	return nil
}

func (c *Clip) checkCodec(cd codec.Codec) error {
	f := cd.Format()
	if f.SampleRate != c.SampleRate || f.Channels != c.Channels {
		return fmt.Errorf("codec format %dHz/%dch does not match clip %dHz/%dch",
			f.SampleRate, f.Channels, c.SampleRate, c.Channels)
	}
	return nil
}

// WriteWAV writes the samples as 16-bit PCM WAV
func (c *Clip) WriteWAV(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, c.SampleRate, 16, c.Channels, 1)

	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		data[i] = int(audio.SampleToInt16(s))
	}

	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: c.SampleRate, NumChannels: c.Channels},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish WAV file: %w", err)
	}
	return nil
}

// ReadWAV loads a 16-bit PCM WAV file into a new finalized clip
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}

	c := New(int(dec.SampleRate), int(dec.NumChans))
	c.Samples = make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		c.Samples[i] = audio.SampleFromInt16(int16(v))
	}
	c.Finalized = true
	return c, nil
}
