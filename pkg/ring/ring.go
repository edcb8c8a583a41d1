// ABOUTME: Lock-free single-producer/single-consumer ring buffer of interleaved audio frames
// ABOUTME: CRITICAL: read/write cursors increment freely and are only masked when indexing

// Package ring implements the Frame ring between the render loop and the
// device sink: a fixed-capacity SPSC queue of interleaved float32 frames.
// One producer (the render thread), one consumer (the device callback).
// Neither push nor pop ever allocates or blocks.
package ring

import "sync/atomic"

// cacheLinePad separates hot counters that different threads write to,
// avoiding false sharing between the producer's write cursor and the
// consumer's read cursor.
type cacheLinePad [64 - 8]byte

// Ring is a fixed-capacity SPSC ring of frames, where one frame is
// `channels` interleaved float32 samples. Capacity is rounded up to the
// next power of two so wrap-around indexing is a cheap bitmask.
type Ring struct {
	channels int
	capacity uint32 // frames, power of two
	mask     uint32

	buf []float32 // capacity*channels samples

	writePos uint32
	_        cacheLinePad
	readPos  uint32
	_        cacheLinePad
}

// New creates a Ring that holds at least capacityFrames frames of the given
// channel count. No allocation occurs after New returns.
func New(capacityFrames, channels int) *Ring {
	size := uint32(1)
	for size < uint32(capacityFrames) {
		size <<= 1
	}
	return &Ring{
		channels: channels,
		capacity: size,
		mask:     size - 1,
		buf:      make([]float32, size*uint32(channels)),
	}
}

// Capacity returns the ring's capacity in frames.
func (r *Ring) Capacity() int { return int(r.capacity) }

// AvailableRead returns the number of frames available to pop. Safe to call
// from either the producer or consumer side; it is a monotonic snapshot.
func (r *Ring) AvailableRead() int {
	w := atomic.LoadUint32(&r.writePos)
	rp := atomic.LoadUint32(&r.readPos)
	return int(w - rp) // unsigned subtraction is correct across uint32 wrap
}

// AvailableWrite returns the number of frames free to push.
func (r *Ring) AvailableWrite() int {
	return int(r.capacity) - r.AvailableRead()
}

// Push copies as many frames from src (interleaved, channels() wide) as fit
// into the ring, returning the number of frames written. Never blocks; the
// caller (render loop) is responsible for handling a short write as an
// overrun. Single-producer only.
func (r *Ring) Push(src []float32) int {
	framesIn := len(src) / r.channels
	free := r.AvailableWrite()
	n := framesIn
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	w := atomic.LoadUint32(&r.writePos)
	for i := 0; i < n; i++ {
		dstIdx := (w + uint32(i)) & r.mask
		copy(r.buf[dstIdx*uint32(r.channels):(dstIdx+1)*uint32(r.channels)], src[i*r.channels:(i+1)*r.channels])
	}
	// Release: make the written samples visible before publishing the new
	// write cursor that the consumer polls with an acquire load.
	atomic.StoreUint32(&r.writePos, w+uint32(n))
	return n
}

// Pop copies up to len(dst)/channels() frames out of the ring into dst,
// returning the number of frames read. Never blocks. Single-consumer only.
func (r *Ring) Pop(dst []float32) int {
	framesWanted := len(dst) / r.channels
	avail := r.AvailableRead()
	n := framesWanted
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	rp := atomic.LoadUint32(&r.readPos)
	for i := 0; i < n; i++ {
		srcIdx := (rp + uint32(i)) & r.mask
		copy(dst[i*r.channels:(i+1)*r.channels], r.buf[srcIdx*uint32(r.channels):(srcIdx+1)*uint32(r.channels)])
	}
	atomic.StoreUint32(&r.readPos, rp+uint32(n))
	return n
}
