// Package model defines the core types and interfaces for the UI.
package model

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/reversi/internal/game/room"
)

// GamePhase represents the current screen.
type GamePhase int

const (
	PhaseMenu GamePhase = iota
	PhaseConnecting
	PhaseJoinInput
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
)

// Mode 对局模式
type Mode int

const (
	ModeLocal  Mode = iota // 同一终端两人轮流
	ModeOnline             // 通过服务器共享房间记录
)

// NotificationType represents types of system notifications.
type NotificationType int

const (
	NotifyError            NotificationType = iota // 错误信息（临时）
	NotifyReconnecting                             // 重连中（持久）
	NotifyReconnectSuccess                         // 重连成功（临时）
)

// SystemNotification represents a system notification.
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 是否为临时通知（3秒后自动消失）
}

// Remote 联机所需的连接：房间存储加服务端分配的身份
type Remote interface {
	room.Store
	Connect(ctx context.Context) error
	Identity() string
	Close()
}

// --- Tea Messages ---

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ConnectionClosedMsg 连接最终断开，不再重连
type ConnectionClosedMsg struct{}

// ServerErrorMsg 服务端主动下发的错误，如限频或停机通知
type ServerErrorMsg struct {
	Err error
}

// ReconnectingMsg indicates reconnection in progress.
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg indicates successful reconnection.
type ReconnectSuccessMsg struct{}

// ClearReconnectMsg clears reconnection message.
type ClearReconnectMsg struct{}

// ClearSystemNotificationMsg clears temporary notifications.
type ClearSystemNotificationMsg struct{}

// RoomReadyMsg 已入座并开始监听房间推送
type RoomReadyMsg struct {
	Session *room.Session
	Updates <-chan room.Update
	Cancel  context.CancelFunc
}

// RoomErrorMsg 创建或加入房间失败
type RoomErrorMsg struct {
	Err error
}

// RoomUpdateMsg 收到一次房间推送。Session 标明来源，换房后旧会话的推送被忽略
type RoomUpdateMsg struct {
	Session *room.Session
	Update  room.Update
}

// WatchClosedMsg 房间推送通道关闭
type WatchClosedMsg struct {
	Session *room.Session
}

// MoveResultMsg 联机落子的结果
type MoveResultMsg struct {
	Session *room.Session
	Update  room.Update
}

// --- Model Interface ---

// Model is the main interface for AppModel, used by view/input packages.
type Model interface {
	// Phase management
	Phase() GamePhase
	SetPhase(GamePhase)
	Mode() Mode

	// Identity and room
	PlayerID() string
	RoomID() string

	// UI components
	Input() *textinput.Model
	Menu() *MenuModel
	Game() *GameModel

	// Notification management
	SetNotification(notifyType NotificationType, message string, temporary bool)
	ClearNotification(notifyType NotificationType)
	GetCurrentNotification() *SystemNotification
	Error() string

	// Actions
	StartLocal()
	CreateRoom() tea.Cmd
	EnterJoinInput()
	JoinRoom(roomID string) tea.Cmd
	PlaceAtCursor() tea.Cmd
	Restart()
	EnterMenu()
	Quit() tea.Cmd

	// Sound
	PlaySound(name string)

	// Dimensions
	Width() int
	Height() int
}
