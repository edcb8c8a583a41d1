// ABOUTME: Atomic counters shared between the render loop and the device sink
// ABOUTME: Read freely from any thread; written only by their respective owning thread

package engine

import "sync/atomic"

// Stats holds the lock-free counters the render loop owns: Overruns and
// ActiveSources. The device sink owns its own underrun counter
// (device.Output.Underruns) separately, which the render loop polls by
// delta to emit BufferUnderrunEvent.
type Stats struct {
	Overruns     atomic.Uint64
	ActiveSources atomic.Int64
}
