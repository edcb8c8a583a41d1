// ABOUTME: Package-level documentation for pkg/audio
// ABOUTME: Describes the shared Buffer type and its ownership model

// Package audio provides the immutable Buffer type shared by the loader,
// playback, and spatial packages.
//
// A Buffer holds decoded, resampled, interleaved float32 PCM at a fixed
// rate and channel count. It is created once (by the loader) and read many
// times (by playback instances on the render thread); it is never mutated
// after construction.
package audio
