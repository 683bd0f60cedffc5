package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/board"
)

func TestCoordinator_LocalGame(t *testing.T) {
	t.Parallel()

	c := NewCoordinator()
	assert.Equal(t, DarkToMove, c.State())

	_, ok := c.Result()
	assert.False(t, ok)

	events, err := c.SubmitMove(board.Pos{X: 3, Y: 2}, board.Dark)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, LightToMove, c.State())

	// 同一方连续落子被拒绝，状态不变
	before := c.Snapshot()
	_, err = c.SubmitMove(board.Pos{X: 2, Y: 3}, board.Dark)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	assert.Equal(t, before, c.Snapshot())

	_, err = c.SubmitMove(board.Pos{X: 2, Y: 2}, board.Light)
	require.NoError(t, err)
	assert.Equal(t, DarkToMove, c.State())
	assert.Equal(t, board.Light, c.Board().At(board.Pos{X: 3, Y: 3}))
}

func TestCoordinator_BoardIsACopy(t *testing.T) {
	t.Parallel()

	c := NewCoordinator()
	b := c.Board()
	b[0][0] = board.Dark
	assert.Equal(t, board.Empty, c.Board().At(board.Pos{X: 0, Y: 0}))
}

func TestCoordinator_Reset(t *testing.T) {
	t.Parallel()

	c := NewCoordinator()
	_, err := c.SubmitMove(board.Pos{X: 4, Y: 5}, board.Dark)
	require.NoError(t, err)

	c.Reset()
	assert.Equal(t, NewSnapshot(), c.Snapshot())
}
