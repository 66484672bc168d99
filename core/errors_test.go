package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_FixedMessages(t *testing.T) {
	// Kind is classification metadata only; it must not leak into the
	// rendered text, so edge-visible strings stay exactly as written.
	err := NewError(KindCollection, "collection not ready")
	assert.Equal(t, "collection not ready", err.Error())

	err = NewError(KindDispatch, "unknown exchange strategy")
	assert.Equal(t, "unknown exchange strategy", err.Error())
}

func TestError_WrapChain(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindConnection, cause, "store not reachable")

	assert.Equal(t, "store not reachable: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindConnection, KindOf(err))
}

func TestError_KindSurvivesFmtWrapping(t *testing.T) {
	inner := NewError(KindGeneration, "store returned no generated text")
	outer := fmt.Errorf("exchange failed: %w", inner)

	assert.Equal(t, KindGeneration, KindOf(outer))
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "boom", Render(errors.New("boom")))

	err := Wrap(KindPersistence, errors.New("insert rejected"), "append turn")
	assert.Equal(t, "append turn: insert rejected", Render(err))
}
