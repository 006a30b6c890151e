package core

import "github.com/google/uuid"

// WindowHandle identifies an open window for its whole lifetime. Handles are
// never reused once the window is closed.
type WindowHandle struct {
	id uuid.UUID
}

// NewWindowHandle issues a fresh handle.
func NewWindowHandle() WindowHandle {
	return WindowHandle{id: uuid.New()}
}

// IsZero reports whether the handle was never issued.
func (h WindowHandle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h WindowHandle) String() string {
	return h.id.String()
}
