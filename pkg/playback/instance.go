// ABOUTME: Render-thread-owned playback instance: playhead, loop policy, state
// ABOUTME: Advance() implements the end-of-buffer edge handling shared by spatial and non-spatial sources

// Package playback implements the per-source state machine and the
// playhead advancement shared by both spatial and non-spatial sources. It
// holds no synchronization of its own — the render loop is its sole owner
// and caller.
package playback

import "github.com/vectoraudio/spatialengine/pkg/audio"

// Instance is a single source's render-thread-owned playback state.
type Instance struct {
	ID       uint64
	Buffer   *audio.Buffer
	Config   Config
	Loop     LoopMode
	State    PlayState
	Playhead float64 // frame index, f64 to accommodate a future pitch extension
	Iteration int
}

// NewInstance creates a freshly registered, Stopped instance.
func NewInstance(id uint64, buf *audio.Buffer, cfg Config) *Instance {
	return &Instance{ID: id, Buffer: buf, Config: cfg, State: Stopped}
}

// Play applies the play command's state transition table. It
// returns started=true exactly when the source transitions from a
// non-Playing state into Playing (Stopped->Playing or Paused->Playing);
// Playing->Playing is a no-op and does not count as a start.
func (i *Instance) Play(loop LoopMode) (started bool) {
	switch i.State {
	case Stopped:
		i.Playhead = 0
		i.Iteration = 0
		i.Loop = loop
		i.State = Playing
		return true
	case Paused:
		i.State = Playing
		return true
	default: // Playing
		return false
	}
}

// Pause applies the pause command, preserving playhead and iteration.
// Returns true if the state actually changed.
func (i *Instance) Pause() (changed bool) {
	if i.State == Playing {
		i.State = Paused
		return true
	}
	return false
}

// Stop applies the stop command, resetting playhead and iteration to zero.
// Returns true if the state actually changed.
func (i *Instance) Stop() (changed bool) {
	if i.State == Stopped {
		return false
	}
	i.State = Stopped
	i.Playhead = 0
	i.Iteration = 0
	return true
}

// AdvanceResult reports what happened while filling one render block.
type AdvanceResult struct {
	// Completed is true when the source reached end-of-buffer under Once or
	// the n-th Count boundary this block; the instance is now Stopped.
	Completed bool
	// Looped is true when the source wrapped under Infinite or an
	// unfinished Count; Iteration holds the new iteration number.
	Looped    bool
	Iteration int
}

// Advance copies exactly blockSize frames (at the buffer's native channel
// count) into dst, advancing the playhead and applying loop-boundary
// semantics: Once zero-fills the remainder and
// completes; Infinite/Count wrap the playhead and keep filling from the
// start. dst must be sized blockSize*Buffer.Channels(). Advance is a no-op
// (and zero-fills dst) if the instance is not Playing.
func (i *Instance) Advance(blockSize int, dst []float32) AdvanceResult {
	channels := i.Buffer.Channels()
	for idx := range dst {
		dst[idx] = 0
	}

	if i.State != Playing {
		return AdvanceResult{}
	}

	start := int(i.Playhead)
	k := i.Buffer.CopyFrames(start, dst[:min(blockSize, i.Buffer.Frames()-start)*channels])
	if k < 0 {
		k = 0
	}

	if k >= blockSize {
		i.Playhead += float64(blockSize)
		return AdvanceResult{}
	}

	// End of buffer reached partway through this block.
	switch i.Loop.Kind {
	case LoopOnce:
		i.State = Stopped
		i.Playhead = 0
		i.Iteration = 0
		return AdvanceResult{Completed: true}

	case LoopCount:
		if i.Iteration+1 >= i.Loop.Count {
			i.State = Stopped
			i.Playhead = 0
			i.Iteration = 0
			return AdvanceResult{Completed: true}
		}
		fallthrough

	default: // LoopInfinite
		i.Iteration++
		remaining := blockSize - k
		k2 := i.Buffer.CopyFrames(0, dst[k*channels:(k+remaining)*channels])
		i.Playhead = float64(k2)
		return AdvanceResult{Looped: true, Iteration: i.Iteration}
	}
}
