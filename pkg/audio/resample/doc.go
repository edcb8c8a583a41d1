// ABOUTME: Package-level documentation for pkg/audio/resample
// ABOUTME: Describes the bandlimited polyphase resampler used at load time

// Package resample converts interleaved PCM between sample rates at load
// time, using a fixed-ratio bandlimited polyphase filter. The core does not
// resample at runtime — a World's output rate is fixed for its lifetime, so
// resampling happens once, off the render thread, inside the Loader.
package resample
