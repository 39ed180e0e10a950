// ABOUTME: Clip capture tool
// ABOUTME: Records a source into a clip, optionally round-trips it through a codec, and writes WAV
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/internal/source"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/Resonate-Protocol/xaudio-go/pkg/audio/codec"
	"github.com/Resonate-Protocol/xaudio-go/pkg/clip"
)

var (
	input     = flag.String("file", "", "Audio file to record (empty records a test tone)")
	output    = flag.String("out", "clip.wav", "Output WAV path")
	duration  = flag.Duration("duration", 5*time.Second, "Maximum clip length")
	codecName = flag.String("codec", "", "Round-trip through a codec before writing (opus or pcm)")
)

func main() {
	flag.Parse()

	src, err := source.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer func() { _ = src.Close() }()

	c := clip.New(src.SampleRate(), src.Channels())
	c.StartTime = time.Now()

	want := int(duration.Seconds()*float64(c.SampleRate)) * c.Channels
	buf := make([]float32, 4096*c.Channels)
	for len(c.Samples) < want {
		n, err := src.Read(buf[:min(len(buf), want-len(c.Samples))])
		if n > 0 {
			if addErr := c.AddSamples(buf[:n]); addErr != nil {
				log.Fatalf("Failed to add samples: %v", addErr)
			}
		}
		if err != nil {
			break
		}
	}
	c.Finalize()
	log.Printf("Recorded %v of %s", c.Length(), src.Title())

	if *codecName != "" {
		cd, err := codec.New(audio.Format{
			Codec:      *codecName,
			SampleRate: c.SampleRate,
			Channels:   c.Channels,
		})
		if err != nil {
			log.Fatalf("Failed to create codec: %v", err)
		}
		defer func() { _ = cd.Close() }()

		if err := c.ComputeFrames(cd); err != nil {
			log.Fatalf("Failed to encode clip: %v", err)
		}
		encoded := 0
		for _, frame := range c.Frames {
			encoded += len(frame)
		}
		log.Printf("Encoded %d frames (%d bytes) with %s", len(c.Frames), encoded, *codecName)

		if err := c.ComputeSamples(cd); err != nil {
			log.Fatalf("Failed to decode clip: %v", err)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := c.WriteWAV(f); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to write WAV: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}

	log.Printf("Wrote %s (%v, %dHz, %d channels)", *output, c.Length(), c.SampleRate, c.Channels)
}
