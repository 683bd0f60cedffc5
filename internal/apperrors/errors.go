// Package apperrors 定义客户端与服务端共享的错误
package apperrors

import "errors"

// 错误码
const (
	CodeUnknown      = 1000
	CodeInvalidMsg   = 1001
	CodeRateLimit    = 1002
	CodeShutdown     = 1003
	CodeRoomNotFound = 2001
	CodeRoomFull     = 2002
	CodeNotInRoom    = 2003
	CodeSameIdentity = 2004
	CodeStaleWrite   = 2005
	CodeIllegalMove  = 3001
	CodeNotYourTurn  = 3002
	CodeGameFinished = 3003
)

// GameError 游戏错误（客户端与服务端共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound = &GameError{Code: CodeRoomNotFound, Message: "room does not exist"}
	ErrRoomFull     = &GameError{Code: CodeRoomFull, Message: "room already has a guest"}
	ErrNotInRoom    = &GameError{Code: CodeNotInRoom, Message: "you are not seated in this room"}
	ErrSameIdentity = &GameError{Code: CodeSameIdentity, Message: "guest identity collides with host, try again later"}
	ErrStaleWrite   = &GameError{Code: CodeStaleWrite, Message: "room record changed, write rejected"}
	ErrIllegalMove  = &GameError{Code: CodeIllegalMove, Message: "you cannot place a disk there"}
	ErrNotYourTurn  = &GameError{Code: CodeNotYourTurn, Message: "it is not your turn"}
	ErrGameFinished = &GameError{Code: CodeGameFinished, Message: "the game is over, start a new one"}
)

var byCode = map[int]*GameError{
	CodeRoomNotFound: ErrRoomNotFound,
	CodeRoomFull:     ErrRoomFull,
	CodeNotInRoom:    ErrNotInRoom,
	CodeSameIdentity: ErrSameIdentity,
	CodeStaleWrite:   ErrStaleWrite,
	CodeIllegalMove:  ErrIllegalMove,
	CodeNotYourTurn:  ErrNotYourTurn,
	CodeGameFinished: ErrGameFinished,
}

// FromCode 将错误码还原为预定义错误，未知错误码带上原始文本
func FromCode(code int, message string) error {
	if e, ok := byCode[code]; ok {
		return e
	}
	return &GameError{Code: code, Message: message}
}

// CodeOf 取出错误对应的错误码
func CodeOf(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return CodeUnknown
}
