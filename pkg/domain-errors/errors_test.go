package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndIs(t *testing.T) {
	err := New(CodeUserNotFound, "user not found")
	assert.True(t, Is(err, CodeUserNotFound))
	assert.False(t, Is(err, CodeInternal))
	assert.Equal(t, "user_not_found: user not found", err.Error())
}

func TestWrapKeepsCauseChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodePersistenceFailed, "could not persist verification state", cause)

	require.True(t, Is(err, CodePersistenceFailed))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsSeesThroughOuterWrapping(t *testing.T) {
	inner := New(CodeDispatchFailed, "token dispatch rejected")
	outer := fmt.Errorf("send flow: %w", inner)

	assert.True(t, Is(outer, CodeDispatchFailed))
	assert.Equal(t, CodeDispatchFailed, CodeOf(outer))
}

func TestCodeOfFallsBackToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestMessageOfHidesUncodedDetails(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("sql: table missing")))
	assert.Equal(t, "user not found", MessageOf(New(CodeUserNotFound, "user not found")))
}
