package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalErrorWrapsCause(t *testing.T) {
	err := fmt.Errorf("end frame: %w", NewFatalError(StageFormatNegotiation, ErrUnsupportedFormat))

	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), string(StageFormatNegotiation))

	var fe *FatalError
	if assert.True(t, errors.As(err, &fe)) {
		assert.Equal(t, StageFormatNegotiation, fe.Stage)
	}
	assert.False(t, IsFatal(ErrOutOfDate))
}

func TestWindowHandlesAreUnique(t *testing.T) {
	seen := map[WindowHandle]struct{}{}
	for i := 0; i < 64; i++ {
		h := NewWindowHandle()
		assert.False(t, h.IsZero())
		_, dup := seen[h]
		assert.False(t, dup)
		seen[h] = struct{}{}
	}
	assert.True(t, WindowHandle{}.IsZero())
}

func TestMetricsAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)

	// 100 more frames of 10ms push the accumulator past one second.
	for i := 0; i < 100; i++ {
		m.Update(0.010)
	}
	fps, avg := m.Frame()
	assert.InDelta(t, 100.0, fps, 1.0)
	assert.InDelta(t, 10.0, avg, 1e-9)
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("info")
	assert.NoError(t, err)
	assert.Equal(t, InfoLevel, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
