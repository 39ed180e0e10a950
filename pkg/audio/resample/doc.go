// ABOUTME: Audio resampling package using a box filter
// ABOUTME: Converts interleaved PCM between sample rates across chunk boundaries
// Package resample provides streaming audio sample rate conversion.
//
// Every output sample is the mean of the input window it covers, which keeps
// DC exact for both upsampling and downsampling and never skips input samples.
// A window cut off by the end of a block is carried into the next call, so a
// signal split into arbitrary chunks resamples to the same output as the
// whole signal in one call.
//
// Example:
//
//	r, err := resample.New(44100, 8000, 1, 4096, false)
//	out, err := r.Resample(block)
package resample
