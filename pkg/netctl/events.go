// ABOUTME: Converts engine.Event values into the wire EventMessage envelope
package netctl

import (
	"encoding/json"
	"fmt"

	"github.com/vectoraudio/spatialengine/pkg/engine"
)

func encodeEvent(ev engine.Event) (EventMessage, error) {
	var kind string
	switch ev.(type) {
	case engine.SourceStartedEvent:
		kind = "SourceStarted"
	case engine.SourceStoppedEvent:
		kind = "SourceStopped"
	case engine.SourceCompletedEvent:
		kind = "SourceCompleted"
	case engine.SourceLoopedEvent:
		kind = "SourceLooped"
	case engine.BufferUnderrunEvent:
		kind = "BufferUnderrun"
	case engine.BufferOverrunEvent:
		kind = "BufferOverrun"
	case engine.EngineErrorEvent:
		kind = "EngineError"
	case engine.SpatializationErrorEvent:
		kind = "SpatializationError"
	case engine.RenderTimingEvent:
		kind = "RenderTiming"
	case engine.EventOverflowEvent:
		kind = "EventOverflow"
	default:
		return EventMessage{}, fmt.Errorf("netctl: unknown event type %T", ev)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return EventMessage{}, err
	}
	return EventMessage{Kind: kind, Payload: payload}, nil
}
