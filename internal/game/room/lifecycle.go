package room

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/palemoky/reversi/internal/apperrors"
)

const (
	roomCodeLength = 4            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集

	// 房间号冲突时的最大重试次数
	maxCreateAttempts = 32
)

// CreateRoom 创建房间，房间号冲突时重新生成
func CreateRoom(ctx context.Context, store Store, hostID string) (string, *Record, error) {
	for range maxCreateAttempts {
		code := generateRoomCode()
		existing, err := store.ReadRoom(ctx, code)
		if err != nil {
			return "", nil, fmt.Errorf("read room %s: %w", code, err)
		}
		if existing != nil {
			continue
		}

		rec := NewRecord(hostID)
		if err := store.WriteRoom(ctx, code, rec); err != nil {
			return "", nil, fmt.Errorf("write room %s: %w", code, err)
		}
		log.Printf("🏠 房间 %s 已创建", code)
		return code, rec, nil
	}
	return "", nil, fmt.Errorf("no free room code after %d attempts", maxCreateAttempts)
}

// JoinRoom 以客人身份加入房间，房主获得第一个回合
func JoinRoom(ctx context.Context, store Store, roomID, guestID string) (*Record, error) {
	rec, err := store.ReadRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("read room %s: %w", roomID, err)
	}
	if rec == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	if rec.Guest != "" {
		return nil, apperrors.ErrRoomFull
	}
	if guestID == rec.Host {
		return nil, apperrors.ErrSameIdentity
	}

	next := rec.Clone()
	next.Guest = guestID
	next.Turn = rec.Host
	next.Status = StatusRunning
	next.Version = rec.Version + 1
	if err := store.WriteRoom(ctx, roomID, next); err != nil {
		return nil, fmt.Errorf("write room %s: %w", roomID, err)
	}
	log.Printf("👤 客人加入房间 %s", roomID)
	return next, nil
}

// AuthorizeWrite 单写者规则：prev 为当前记录（不存在时为 nil），
// next 为 writer 想写入的记录
func AuthorizeWrite(prev, next *Record, writer string) error {
	if next == nil || writer == "" {
		return apperrors.ErrNotInRoom
	}

	// 创建：只能由房主写入初始记录
	if prev == nil {
		if next.Host != writer || next.Guest != "" || next.Status != StatusWaiting {
			return apperrors.ErrNotInRoom
		}
		return nil
	}

	if prev.Status == StatusEnd {
		return apperrors.ErrGameFinished
	}
	if next.Version <= prev.Version {
		return apperrors.ErrStaleWrite
	}
	if next.Host != prev.Host {
		return apperrors.ErrNotInRoom
	}

	switch prev.Status {
	case StatusWaiting:
		// 加入：只能由新客人写入
		if prev.Guest != "" {
			return apperrors.ErrRoomFull
		}
		if next.Guest == prev.Host {
			return apperrors.ErrSameIdentity
		}
		if next.Guest != writer {
			return apperrors.ErrNotInRoom
		}
		if next.Turn != prev.Host || next.Status != StatusRunning || next.Board != prev.Board {
			return apperrors.ErrNotYourTurn
		}
		return nil
	default:
		if next.Guest != prev.Guest {
			return apperrors.ErrRoomFull
		}
		if _, seated := prev.RoleOf(writer); !seated {
			return apperrors.ErrNotInRoom
		}
		if prev.Turn != writer {
			return apperrors.ErrNotYourTurn
		}
		return nil
	}
}

// generateRoomCode 生成房间号
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
	}
	return string(code)
}
