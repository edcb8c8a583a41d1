// ABOUTME: Events emitted by the render loop and drained by World control
// ABOUTME: Event taxonomy covers source lifecycle, ring pressure, and asynchronous errors

package engine

// Event is delivered on the event bus from the render loop to anyone
// polling World.PollEvents.
type Event interface {
	isEvent()
}

// SourceStartedEvent fires when a source transitions into Playing from a
// non-Playing state (Stopped->Playing or Paused->Playing; Playing->Playing
// is not a start).
type SourceStartedEvent struct{ ID uint64 }

func (SourceStartedEvent) isEvent() {}

// SourceStoppedEvent fires when an explicit Stop command changes a source's
// state. Natural end-of-buffer completion fires SourceCompletedEvent instead.
type SourceStoppedEvent struct{ ID uint64 }

func (SourceStoppedEvent) isEvent() {}

// SourceCompletedEvent fires when a source reaches Once's end-of-buffer, or
// the n-th boundary of Count(n), and transitions to Stopped.
type SourceCompletedEvent struct{ ID uint64 }

func (SourceCompletedEvent) isEvent() {}

// SourceLoopedEvent fires when a source wraps under Infinite or an
// unfinished Count, reporting the new iteration number.
type SourceLoopedEvent struct {
	ID        uint64
	Iteration int
}

func (SourceLoopedEvent) isEvent() {}

// BufferUnderrunEvent reports frames the device sink zero-filled because
// the frame ring ran dry.
type BufferUnderrunEvent struct{ MissingFrames int }

func (BufferUnderrunEvent) isEvent() {}

// BufferOverrunEvent reports frames the render loop could not push because
// the frame ring was full.
type BufferOverrunEvent struct{ MissingFrames int }

func (BufferOverrunEvent) isEvent() {}

// EngineErrorKind classifies an EngineErrorEvent.
type EngineErrorKind int

const (
	EngineErrorUnknownSource EngineErrorKind = iota
	EngineErrorStateError
	EngineErrorRegistrationRejected
	EngineErrorRingInvariant
)

func (k EngineErrorKind) String() string {
	switch k {
	case EngineErrorUnknownSource:
		return "unknown_source"
	case EngineErrorStateError:
		return "state_error"
	case EngineErrorRegistrationRejected:
		return "registration_rejected"
	case EngineErrorRingInvariant:
		return "ring_invariant"
	default:
		return "unknown"
	}
}

// EngineErrorEvent reports a render-time error that does not stop the
// engine: the offending command is discarded and the block continues.
type EngineErrorEvent struct {
	Kind   EngineErrorKind
	Detail string
}

func (EngineErrorEvent) isEvent() {}

// SpatializationErrorEvent reports a Spatializer.Process failure for one
// render block; the block's spatial output is left silent.
type SpatializationErrorEvent struct {
	Detail string
}

func (SpatializationErrorEvent) isEvent() {}

// RenderTimingEvent is emitted every N ticks when timing instrumentation is
// enabled.
type RenderTimingEvent struct {
	BlockMicros    int64
	MixMicros      int64
	SpatialMicros  int64
}

func (RenderTimingEvent) isEvent() {}

// EventOverflowEvent reports how many events were dropped because the
// event bus was full when the render loop tried to send. It is surfaced as
// the first element of the next successful PollEvents call.
type EventOverflowEvent struct{ Dropped uint64 }

func (EventOverflowEvent) isEvent() {}
