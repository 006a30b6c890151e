package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueueDrainsInCategoryOrder(t *testing.T) {
	q := NewEventQueue()
	q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_REDRAW, Window: 1})
	q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_CLOSE_REQUESTED, Window: 1})
	q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_RESIZED, Window: 1, Width: 10, Height: 20})
	q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_CREATED, Window: 2})
	q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_RESIZED, Window: 2, Width: 30, Height: 40})
	assert.Equal(t, 5, q.Len())

	var got []WindowEvent
	q.Drain(func(e WindowEvent) { got = append(got, e) })

	assert.Equal(t, []WindowEvent{
		{Code: EVENT_CODE_WINDOW_CREATED, Window: 2},
		{Code: EVENT_CODE_WINDOW_RESIZED, Window: 1, Width: 10, Height: 20},
		{Code: EVENT_CODE_WINDOW_RESIZED, Window: 2, Width: 30, Height: 40},
		{Code: EVENT_CODE_WINDOW_CLOSE_REQUESTED, Window: 1},
		{Code: EVENT_CODE_WINDOW_REDRAW, Window: 1},
	}, got)
	assert.Zero(t, q.Len())
}

func TestEventQueueGrowsInsteadOfDropping(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < 100; i++ {
		q.Push(WindowEvent{Code: EVENT_CODE_WINDOW_RESIZED, Window: WindowID(i)})
	}
	n := 0
	q.Drain(func(e WindowEvent) {
		assert.Equal(t, WindowID(n), e.Window)
		n++
	})
	assert.Equal(t, 100, n)
}

func TestEventQueueIgnoresUnknownCodes(t *testing.T) {
	q := NewEventQueue()
	q.Push(WindowEvent{Code: windowEventCodeCount})
	assert.Zero(t, q.Len())
	assert.Equal(t, "unknown", windowEventCodeCount.String())
	assert.Equal(t, "close requested", EVENT_CODE_WINDOW_CLOSE_REQUESTED.String())
}
