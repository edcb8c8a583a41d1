// ABOUTME: Device backend interface definition
// ABOUTME: The device calls back at an unspecified cadence requesting n interleaved frames

// Package device implements the Device sink: the real-time
// callback that drains the Frame ring into variable-size device buffers.
// Implementations must never allocate, lock, block, or call into the
// Spatializer from the callback.
package device

import "fmt"

// PopFunc has the same contract as ring.Ring.Pop: copy up to
// len(dst)/channels frames into dst, returning the number of frames
// copied, without blocking.
type PopFunc func(dst []float32) int

// Output is the device backend interface. Open configures
// the device for frame_format=f32 and registers pop as the callback source;
// Close is synchronous and stops further callbacks before returning.
type Output interface {
	// Open initializes the output device at rate/channels, f32 frames, with
	// preferredBufferFrames as a hint for the backend's internal buffer
	// size. pop is called from the device's own callback thread.
	Open(rate, channels, preferredBufferFrames int, pop PopFunc) error

	// Close stops callbacks and releases device resources. Synchronous.
	Close() error

	// Underruns returns the cumulative count of frames zero-filled because
	// pop returned fewer frames than requested.
	Underruns() uint64
}

// ErrUnsupportedFormat is returned by Open when a backend cannot be
// configured for the requested rate/channel combination.
type ErrUnsupportedFormat struct {
	Rate, Channels int
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("device: unsupported format rate=%d channels=%d", e.Rate, e.Channels)
}
