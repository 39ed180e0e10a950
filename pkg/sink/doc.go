// ABOUTME: Sink package for streaming float32 audio to the best available backend
// ABOUTME: Normalizes settings, probes backends in order and drives the underrun callback
// Package sink is the public facade for streaming playback.
//
// A Sink accepts interleaved float32 samples at a caller-chosen rate and keeps
// the resolved backend filled between a low-water mark (MinBufferSize) and a
// high-water mark (MaxBufferSize). When the buffer runs low, ExecuteCallback
// asks the producer for more through the underrun callback.
//
// Example:
//
//	s, err := sink.New(sink.Config{Channels: 2, SampleRate: 48000}, func(n int) []float32 {
//		return nextSamples(n)
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	for range time.Tick(20 * time.Millisecond) {
//		s.ExecuteCallback()
//	}
package sink
