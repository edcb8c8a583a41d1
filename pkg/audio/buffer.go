// ABOUTME: Audio buffer type definitions
// ABOUTME: Defines the immutable PCM container shared across playback instances

// Package audio provides the fundamental audio types shared across the
// loader, playback, and spatialization packages.
package audio

import "fmt"

// Buffer is an immutable, shared-ownership container for decoded PCM audio.
//
// Once constructed a Buffer is never mutated. Multiple playback instances
// may hold a reference to the same Buffer concurrently; the render thread
// only ever reads from it. Lifetime is managed by the Go garbage collector:
// a Buffer is released once its last reference drops.
type Buffer struct {
	rate     int
	channels int
	frames   int
	samples  []float32 // interleaved, len == frames*channels
}

// NewBuffer constructs a Buffer from interleaved float32 samples. len(samples)
// must equal frames*channels.
func NewBuffer(rate, channels int, samples []float32) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", rate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("audio: invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("audio: sample count %d not divisible by channels %d", len(samples), channels)
	}
	return &Buffer{
		rate:     rate,
		channels: channels,
		frames:   len(samples) / channels,
		samples:  samples,
	}, nil
}

// Rate returns the buffer's sample rate in Hz.
func (b *Buffer) Rate() int { return b.rate }

// Channels returns the buffer's channel count.
func (b *Buffer) Channels() int { return b.channels }

// Frames returns the number of frames in the buffer.
func (b *Buffer) Frames() int { return b.frames }

// Samples returns the interleaved sample slice. Callers must not mutate it.
func (b *Buffer) Samples() []float32 { return b.samples }

// CopyFrames copies up to len(dst)/channels() frames starting at frame
// offset start into dst, returning the number of frames copied. Frames past
// the end of the buffer are not zero-filled by CopyFrames; callers handle
// end-of-buffer themselves (see playback.Instance.Advance).
func (b *Buffer) CopyFrames(start int, dst []float32) int {
	if start >= b.frames || start < 0 {
		return 0
	}
	framesWanted := len(dst) / b.channels
	available := b.frames - start
	n := framesWanted
	if n > available {
		n = available
	}
	copy(dst[:n*b.channels], b.samples[start*b.channels:(start+n)*b.channels])
	return n
}
