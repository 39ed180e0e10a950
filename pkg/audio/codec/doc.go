// ABOUTME: Frame codec package
// ABOUTME: Fixed-preset Opus and raw PCM16 codecs plus a whole-frame accumulator
// Package codec turns float32 sample streams into fixed-size encoded frames
// and back.
//
// Example:
//
//	c, err := codec.NewOpus(audio.Format{Codec: "opus", SampleRate: 16000, Channels: 1})
//	framer := codec.NewFramer(c)
//	frames, err := framer.Put(samples)
//	tail, err := framer.Finalize()
package codec
