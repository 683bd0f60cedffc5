package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCode_ReturnsSentinel(t *testing.T) {
	t.Parallel()

	err := FromCode(CodeNotYourTurn, "whatever the server said")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, ErrNotYourTurn.Message, err.Error())
}

func TestFromCode_UnknownKeepsText(t *testing.T) {
	t.Parallel()

	err := FromCode(4242, "boom")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 4242, CodeOf(err))
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("submit move: %w", ErrIllegalMove)
	assert.Equal(t, CodeIllegalMove, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}
