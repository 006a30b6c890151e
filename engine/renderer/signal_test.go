package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinDropsCompletedSentinels(t *testing.T) {
	assert.True(t, IsNow(Join()))
	assert.True(t, IsNow(Join(Now(), nil, Now())))

	a := &fakeSignal{}
	assert.Same(t, a, Join(Now(), a))
}

func TestJoinedSignalReadyAndRelease(t *testing.T) {
	a := &fakeSignal{ready: true}
	b := &fakeSignal{}
	j := Join(a, b)

	ok, err := j.Ready()
	assert.NoError(t, err)
	assert.False(t, ok)

	b.ready = true
	ok, err = j.Ready()
	assert.NoError(t, err)
	assert.True(t, ok)

	j.Release()
	assert.Equal(t, 1, a.releases)
	assert.Equal(t, 1, b.releases)
}

func TestJoinedSignalPropagatesErrors(t *testing.T) {
	lost := errors.New("device lost")
	j := Join(&fakeSignal{ready: true}, &fakeSignal{err: lost})
	_, err := j.Ready()
	assert.ErrorIs(t, err, lost)
}

func TestFlatten(t *testing.T) {
	a, b, c := &fakeSignal{}, &fakeSignal{}, &fakeSignal{}
	nested := Join(a, Join(b, c), Now())

	assert.Equal(t, []Signal{a, b, c}, Flatten(nested))
	assert.Nil(t, Flatten(Now()))
	assert.Equal(t, []Signal{a}, Flatten(a))
}
