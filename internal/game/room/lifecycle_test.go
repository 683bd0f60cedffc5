package room_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/server/storage"
)

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()

	id, rec, err := room.CreateRoom(ctx, store, "host")
	require.NoError(t, err)
	assert.Len(t, id, 4)
	assert.Regexp(t, `^[0-9]{4}$`, id)

	assert.Equal(t, "host", rec.Host)
	assert.Empty(t, rec.Guest)
	assert.Equal(t, room.TurnNone, rec.Turn)
	assert.Equal(t, room.StatusWaiting, rec.Status)
	assert.Equal(t, board.New(), rec.Board)

	stored, err := store.ReadRoom(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestCreateRoom_DistinctCodes(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		id, _, err := room.CreateRoom(ctx, store, room.NewIdentity())
		require.NoError(t, err)
		assert.False(t, seen[id], "room code %s reused", id)
		seen[id] = true
	}
}

func TestJoinRoom(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()

	id, created, err := room.CreateRoom(ctx, store, "host")
	require.NoError(t, err)

	rec, err := room.JoinRoom(ctx, store, id, "guest")
	require.NoError(t, err)
	assert.Equal(t, "guest", rec.Guest)
	assert.Equal(t, "host", rec.Turn)
	assert.Equal(t, room.StatusRunning, rec.Status)
	assert.Equal(t, created.Version+1, rec.Version)
	assert.Equal(t, board.Dark, rec.TurnColor())
}

func TestJoinRoom_Errors(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()

	_, err := room.JoinRoom(ctx, store, "0000", "guest")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	id, _, err := room.CreateRoom(ctx, store, "host")
	require.NoError(t, err)

	_, err = room.JoinRoom(ctx, store, id, "host")
	assert.ErrorIs(t, err, apperrors.ErrSameIdentity)

	_, err = room.JoinRoom(ctx, store, id, "guest")
	require.NoError(t, err)

	_, err = room.JoinRoom(ctx, store, id, "late")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
}

func TestAuthorizeWrite(t *testing.T) {
	t.Parallel()

	waiting := room.NewRecord("host")

	joined := waiting.Clone()
	joined.Guest = "guest"
	joined.Turn = "host"
	joined.Status = room.StatusRunning
	joined.Version = 2

	moved := joined.Clone()
	moved.Board[2][3] = board.Dark
	moved.Board[3][3] = board.Dark
	moved.Turn = "guest"
	moved.Version = 3

	ended := joined.Clone()
	ended.Status = room.StatusEnd
	ended.Turn = room.TurnNone

	afterEnd := ended.Clone()
	afterEnd.Version = 99

	hijack := joined.Clone()
	hijack.Guest = "intruder"
	hijack.Version = 3

	selfJoin := joined.Clone()
	selfJoin.Guest = "host"

	tests := []struct {
		name    string
		prev    *room.Record
		next    *room.Record
		writer  string
		wantErr error
	}{
		{"host creates", nil, waiting, "host", nil},
		{"stranger creates for someone else", nil, waiting, "other", apperrors.ErrNotInRoom},
		{"guest joins", waiting, joined, "guest", nil},
		{"host cannot join own room", waiting, selfJoin, "host", apperrors.ErrSameIdentity},
		{"third party writes join", waiting, joined, "other", apperrors.ErrNotInRoom},
		{"turn holder moves", joined, moved, "host", nil},
		{"guest moves out of turn", joined, moved, "guest", apperrors.ErrNotYourTurn},
		{"stranger moves", joined, moved, "stranger", apperrors.ErrNotInRoom},
		{"stale version", moved, joined, "guest", apperrors.ErrStaleWrite},
		{"guest swapped", joined, hijack, "host", apperrors.ErrRoomFull},
		{"ended room is read-only", ended, afterEnd, "host", apperrors.ErrGameFinished},
		{"nil record", joined, nil, "host", apperrors.ErrNotInRoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := room.AuthorizeWrite(tt.prev, tt.next, tt.writer)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewIdentity_Unique(t *testing.T) {
	t.Parallel()

	a, b := room.NewIdentity(), room.NewIdentity()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
