package core

import "github.com/spaghettifunk/polyengine/engine/containers"

// WindowID identifies a window on the platform side. It is assigned when the
// window is opened and never reused.
type WindowID uint64

// Window event codes. They are also the order in which queued events are
// delivered.
type WindowEventCode uint8

const (
	EVENT_CODE_WINDOW_CREATED WindowEventCode = iota
	// Context usage: Width and Height hold the new framebuffer size.
	EVENT_CODE_WINDOW_RESIZED
	EVENT_CODE_WINDOW_CLOSE_REQUESTED
	EVENT_CODE_WINDOW_REDRAW

	windowEventCodeCount
)

func (c WindowEventCode) String() string {
	switch c {
	case EVENT_CODE_WINDOW_CREATED:
		return "created"
	case EVENT_CODE_WINDOW_RESIZED:
		return "resized"
	case EVENT_CODE_WINDOW_CLOSE_REQUESTED:
		return "close requested"
	case EVENT_CODE_WINDOW_REDRAW:
		return "redraw"
	}
	return "unknown"
}

type WindowEvent struct {
	Code   WindowEventCode
	Window WindowID
	Width  uint32
	Height uint32
}

const initialEventCapacity = 16

// EventQueue buffers window events between two pumps of the platform. Events
// are grouped by code: Drain delivers every created event first, then every
// resize, then close requests, then redraws. Within one code the arrival
// order is kept.
type EventQueue struct {
	queues [windowEventCodeCount]*containers.RingQueue[WindowEvent]
}

func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	for i := range q.queues {
		q.queues[i] = containers.NewRingQueue[WindowEvent](initialEventCapacity)
	}
	return q
}

// Push queues an event. The queue grows instead of dropping events.
func (q *EventQueue) Push(e WindowEvent) {
	if e.Code >= windowEventCodeCount {
		LogWarn("dropping window event with unknown code %d", e.Code)
		return
	}
	q.queues[e.Code].Enqueue(e)
}

func (q *EventQueue) Len() int {
	n := 0
	for _, rq := range q.queues {
		n += rq.Len()
	}
	return n
}

// Drain hands every queued event to fn. Events pushed by fn are delivered in
// the same drain if their category has not been visited yet.
func (q *EventQueue) Drain(fn func(WindowEvent)) {
	for _, rq := range q.queues {
		for !rq.IsEmpty() {
			e, err := rq.Dequeue()
			if err != nil {
				break
			}
			fn(e)
		}
	}
}
