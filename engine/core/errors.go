package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the surface does not list the
	// required (format, color space) pair. The engine cannot run without it.
	ErrUnsupportedFormat = errors.New("required surface format is not supported")
	// ErrRecreateUnsupportedDimensions is returned when the surface reports a
	// transient extent (minimized, mid-resize). Retry on a later frame.
	ErrRecreateUnsupportedDimensions = errors.New("swapchain cannot be recreated with the current surface dimensions")
	// ErrOutOfDate means the swapchain no longer matches the surface.
	ErrOutOfDate = errors.New("swapchain is out of date")
	// ErrFrameInFlight means GPU work from the current swapchain generation
	// has not retired yet.
	ErrFrameInFlight = errors.New("previous frame is still in flight")
	ErrDeviceLost    = errors.New("device lost")

	ErrWindowNotFound   = errors.New("window not found")
	ErrGeometryNotFound = errors.New("geometry not found")
	ErrInvalidGeometry  = errors.New("geometry must be a non-empty triangle list")
)

// Stage identifies where a fatal error was raised.
type Stage string

const (
	StageDeviceCreation    Stage = "device creation"
	StageFormatNegotiation Stage = "format negotiation"
	StageSwapchainRebuild  Stage = "swapchain rebuild"
	StageAcquire           Stage = "image acquisition"
	StageFrameCompletion   Stage = "frame completion"
)

// FatalError is an error no recovery policy exists for. The host is expected
// to terminate with a diagnostic naming the stage.
type FatalError struct {
	Stage Stage
	Err   error
}

func NewFatalError(stage Stage, err error) *FatalError {
	return &FatalError{Stage: stage, Err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error during %s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
