// ABOUTME: Event bus from the render loop to World control
// ABOUTME: Send never blocks; on overflow the newest event is dropped and an atomic counter bumped

package engine

import "sync/atomic"

// EventBus is a single-producer (render loop), single-consumer (whoever
// calls World.PollEvents) bounded queue. Go channels have no peek-and-evict
// primitive, so evicting the oldest queued event on overflow isn't cheaply
// expressible; instead a full bus drops the event currently being sent,
// using the same non-blocking select/default idiom the render loop's own
// tick loop relies on elsewhere. The render thread never blocks either way.
type EventBus struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewEventBus creates a bus with room for capacity queued events.
func NewEventBus(capacity int) *EventBus {
	return &EventBus{ch: make(chan Event, capacity)}
}

// Send enqueues ev without blocking. Called only from the render thread.
func (b *EventBus) Send(ev Event) {
	select {
	case b.ch <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Poll drains every event currently queued. If any events were dropped
// since the last Poll, an EventOverflowEvent is prepended.
func (b *EventBus) Poll() []Event {
	var out []Event
	if d := b.dropped.Swap(0); d > 0 {
		out = append(out, EventOverflowEvent{Dropped: d})
	}
	for {
		select {
		case ev := <-b.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
