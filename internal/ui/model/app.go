package model

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/game/turn"
	"github.com/palemoky/reversi/internal/sound"
	"github.com/palemoky/reversi/internal/ui/common"
)

const (
	// 单次联机请求超时
	requestTimeout = 10 * time.Second
	// 临时通知显示时长
	notificationTTL = 3 * time.Second
	// 房间号长度
	roomCodeLength = 4
)

// ErrOffline 未配置服务器时无法联机
var ErrOffline = errors.New("no server configured, online play is unavailable")

// AppModel is the main model for both local and online play.
type AppModel struct {
	remote Remote
	phase  GamePhase
	mode   Mode
	err    string

	// 本地对局
	coordinator *turn.Coordinator

	// 联机对局
	roomID      string
	session     *room.Session
	updates     <-chan room.Update
	watchCancel context.CancelFunc
	pending     bool // 落子请求未返回

	// 连接层回调转发（重连、断开）
	events chan tea.Msg

	// System notifications
	notifications map[NotificationType]*SystemNotification

	// Sub-models
	menu *MenuModel
	game *GameModel

	// Audio
	sound sound.Player

	// UI components
	input  *textinput.Model
	width  int
	height int

	// View renderer (injected to break circular import)
	viewRenderer func(Model, GamePhase) string

	// Key handler (injected to break circular import)
	keyHandler func(Model, tea.KeyMsg) (bool, tea.Cmd)
}

// NewAppModel creates a new AppModel. remote 为 nil 时只能本地对局
func NewAppModel(remote Remote, player sound.Player) *AppModel {
	ti := textinput.New()
	ti.Placeholder = "4-digit room code"
	ti.CharLimit = roomCodeLength
	ti.Width = 20

	if player == nil {
		player = silent{}
	}

	return &AppModel{
		remote:        remote,
		phase:         PhaseMenu,
		events:        make(chan tea.Msg, 10),
		notifications: make(map[NotificationType]*SystemNotification),
		menu:          &MenuModel{},
		game:          NewGameModel(),
		sound:         player,
		input:         &ti,
	}
}

type silent struct{}

func (silent) Play(string) {}

// Notify 从其他 goroutine 投递消息（连接层回调），队列满时丢弃
func (m *AppModel) Notify(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForEvents())
}

func (m *AppModel) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// --- Model interface implementation ---

func (m *AppModel) Phase() GamePhase         { return m.phase }
func (m *AppModel) SetPhase(phase GamePhase) { m.phase = phase }
func (m *AppModel) Mode() Mode               { return m.mode }
func (m *AppModel) RoomID() string           { return m.roomID }
func (m *AppModel) Input() *textinput.Model  { return m.input }
func (m *AppModel) Menu() *MenuModel         { return m.menu }
func (m *AppModel) Game() *GameModel         { return m.game }
func (m *AppModel) Error() string            { return m.err }
func (m *AppModel) Width() int               { return m.width }
func (m *AppModel) Height() int              { return m.height }
func (m *AppModel) PlaySound(name string)    { m.sound.Play(name) }

// PlayerID 联机身份，本地对局为空
func (m *AppModel) PlayerID() string {
	if m.session != nil {
		return m.session.Identity()
	}
	return ""
}

func (m *AppModel) SetNotification(notifyType NotificationType, message string, temporary bool) {
	m.notifications[notifyType] = &SystemNotification{
		Message:   message,
		Type:      notifyType,
		Temporary: temporary,
	}
}

func (m *AppModel) ClearNotification(notifyType NotificationType) {
	delete(m.notifications, notifyType)
}

func (m *AppModel) GetCurrentNotification() *SystemNotification {
	priorityOrder := []NotificationType{
		NotifyError,
		NotifyReconnecting,
		NotifyReconnectSuccess,
	}

	for _, notifyType := range priorityOrder {
		if notification, exists := m.notifications[notifyType]; exists {
			return notification
		}
	}
	return nil
}

// notifyTemporary 显示临时通知，到期后清除
func (m *AppModel) notifyTemporary(message string) tea.Cmd {
	m.SetNotification(NotifyError, message, true)
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return ClearSystemNotificationMsg{}
	})
}

// --- Actions ---

// EnterMenu 回到主菜单，结束当前对局
func (m *AppModel) EnterMenu() {
	m.leaveRoom()
	m.coordinator = nil
	m.phase = PhaseMenu
	m.input.Reset()
	m.input.Blur()
}

func (m *AppModel) leaveRoom() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.session = nil
	m.updates = nil
	m.roomID = ""
	m.pending = false
}

// StartLocal 开始本地对局
func (m *AppModel) StartLocal() {
	m.leaveRoom()
	m.err = ""
	m.mode = ModeLocal
	m.coordinator = turn.NewCoordinator()
	m.game.Reset(m.coordinator.Snapshot(), board.Empty)
	m.phase = PhasePlaying
}

// Restart 本地对局重新开始，联机对局回到菜单
func (m *AppModel) Restart() {
	if m.mode == ModeLocal {
		m.StartLocal()
		return
	}
	m.EnterMenu()
}

// EnterJoinInput 输入房间号
func (m *AppModel) EnterJoinInput() {
	if m.remote == nil {
		m.err = ErrOffline.Error()
		return
	}
	m.err = ""
	m.phase = PhaseJoinInput
	m.input.Reset()
	m.input.Focus()
}

// CreateRoom 连接服务器并创建房间
func (m *AppModel) CreateRoom() tea.Cmd {
	if m.remote == nil {
		m.err = ErrOffline.Error()
		return nil
	}
	m.err = ""
	m.mode = ModeOnline
	m.phase = PhaseConnecting
	remote := m.remote

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if msg := ensureConnected(ctx, remote); msg != nil {
			return msg
		}
		id, _, err := room.CreateRoom(ctx, remote, remote.Identity())
		if err != nil {
			return RoomErrorMsg{Err: err}
		}
		return takeSeat(ctx, remote, id)
	}
}

// JoinRoom 连接服务器并加入房间
func (m *AppModel) JoinRoom(roomID string) tea.Cmd {
	if m.remote == nil {
		m.err = ErrOffline.Error()
		return nil
	}
	if !validRoomCode(roomID) {
		m.err = fmt.Sprintf("room code must be %d digits", roomCodeLength)
		return nil
	}
	m.err = ""
	m.mode = ModeOnline
	m.phase = PhaseConnecting
	remote := m.remote

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if msg := ensureConnected(ctx, remote); msg != nil {
			return msg
		}
		if _, err := room.JoinRoom(ctx, remote, roomID, remote.Identity()); err != nil {
			return RoomErrorMsg{Err: err}
		}
		return takeSeat(ctx, remote, roomID)
	}
}

func validRoomCode(s string) bool {
	if len(s) != roomCodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func ensureConnected(ctx context.Context, remote Remote) tea.Msg {
	if remote.Identity() != "" {
		return nil
	}
	if err := remote.Connect(ctx); err != nil {
		return ConnectionErrorMsg{Err: err}
	}
	return nil
}

// takeSeat 建立会话并开始监听房间推送
func takeSeat(ctx context.Context, remote Remote, roomID string) tea.Msg {
	session, err := room.NewSession(ctx, remote, roomID, remote.Identity())
	if err != nil {
		return RoomErrorMsg{Err: err}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	updates, err := session.Watch(watchCtx)
	if err != nil {
		cancel()
		return RoomErrorMsg{Err: err}
	}
	return RoomReadyMsg{Session: session, Updates: updates, Cancel: cancel}
}

func listenForUpdates(session *room.Session, updates <-chan room.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return WatchClosedMsg{Session: session}
		}
		return RoomUpdateMsg{Session: session, Update: u}
	}
}

// current 消息是否来自当前会话
func (m *AppModel) current(session *room.Session) bool {
	return session != nil && session == m.session
}

// PlaceAtCursor 在光标处落子
func (m *AppModel) PlaceAtCursor() tea.Cmd {
	if m.phase != PhasePlaying {
		return nil
	}
	pos := m.game.Cursor()

	if m.mode == ModeLocal {
		m.placeLocal(pos)
		return nil
	}

	if m.session == nil || m.pending {
		return nil
	}
	if !m.game.CanAct() {
		m.rejectMove(apperrors.ErrNotYourTurn)
		return nil
	}

	m.pending = true
	session := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		events, err := session.Submit(ctx, pos)
		return MoveResultMsg{Session: session, Update: room.Update{Record: session.Record(), Events: events, Err: err}}
	}
}

func (m *AppModel) placeLocal(pos board.Pos) {
	mover := m.coordinator.State().ToMove()
	events, err := m.coordinator.SubmitMove(pos, mover)
	if err != nil {
		m.rejectMove(err)
		return
	}

	m.game.SetSnapshot(m.coordinator.Snapshot())
	m.game.SetStatus(fmt.Sprintf("%s played %s", common.ColorName(mover), common.PosLabel(pos)))
	m.PlaySound(sound.Place)
	m.applyEvents(events)
}

func (m *AppModel) rejectMove(err error) {
	m.game.SetStatus(err.Error())
	m.PlaySound(sound.Invalid)
}

func (m *AppModel) applyEvents(events []turn.Event) {
	for _, name := range m.game.ApplyEvents(events) {
		m.PlaySound(name)
	}
	if m.game.IsFinished() {
		m.phase = PhaseGameOver
	}
}

// applyRecord 采用房间记录并切换界面阶段
func (m *AppModel) applyRecord(rec *room.Record) {
	if rec == nil {
		return
	}
	before := m.game.Snapshot().Board
	m.game.SetSnapshot(rec.Snapshot())
	if before != rec.Board {
		m.PlaySound(sound.Place)
	}

	switch rec.Status {
	case room.StatusWaiting:
		m.phase = PhaseWaiting
	case room.StatusRunning:
		if m.phase == PhaseWaiting {
			m.game.SetStatus("Opponent joined, the game begins")
		}
		m.phase = PhasePlaying
	case room.StatusEnd:
		m.phase = PhaseGameOver
		if m.game.Status() == "" {
			m.game.SetStatus(common.ResultText(turn.ResultOf(rec.Board)))
		}
	}
}

// Quit 释放连接并退出
func (m *AppModel) Quit() tea.Cmd {
	m.leaveRoom()
	if m.remote != nil {
		m.remote.Close()
	}
	return tea.Quit
}

// Update handles tea messages.
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConnectionErrorMsg:
		m.EnterMenu()
		m.err = fmt.Sprintf("cannot connect to server: %v", msg.Err)

	case RoomErrorMsg:
		m.EnterMenu()
		m.err = msg.Err.Error()

	case RoomReadyMsg:
		m.leaveRoom()
		m.session = msg.Session
		m.updates = msg.Updates
		m.watchCancel = msg.Cancel
		m.roomID = msg.Session.RoomID()
		m.game.Reset(msg.Session.Snapshot(), msg.Session.Color())
		m.phase = PhaseConnecting
		m.applyRecord(msg.Session.Record())
		log.Printf("🪑 已入座房间 %s (%s)", m.roomID, msg.Session.Role())
		cmds = append(cmds, listenForUpdates(m.session, m.updates))

	case RoomUpdateMsg:
		if !m.current(msg.Session) {
			break
		}
		m.applyRecord(msg.Update.Record)
		m.applyEvents(msg.Update.Events)
		if msg.Update.Err != nil {
			cmds = append(cmds, m.notifyTemporary("⚠️ "+msg.Update.Err.Error()))
		}
		cmds = append(cmds, listenForUpdates(m.session, m.updates))

	case WatchClosedMsg:
		if m.current(msg.Session) {
			m.SetNotification(NotifyError, "⚠️ Room updates stopped, press ESC to return to the menu", false)
		}

	case MoveResultMsg:
		// 换房前发出的落子结果与当前对局无关
		if !m.current(msg.Session) {
			break
		}
		m.pending = false
		if msg.Update.Err != nil {
			m.rejectMove(msg.Update.Err)
			break
		}
		m.applyRecord(msg.Update.Record)
		m.applyEvents(msg.Update.Events)

	case ReconnectingMsg:
		m.SetNotification(NotifyReconnecting, fmt.Sprintf("🔄 Reconnecting (%d/%d)...", msg.Attempt, msg.MaxTries), false)
		cmds = append(cmds, m.listenForEvents())

	case ReconnectSuccessMsg:
		m.ClearNotification(NotifyReconnecting)
		m.ClearNotification(NotifyError)
		m.SetNotification(NotifyReconnectSuccess, "✅ Reconnected", true)
		cmds = append(cmds, tea.Tick(notificationTTL, func(time.Time) tea.Msg {
			return ClearReconnectMsg{}
		}))
		cmds = append(cmds, m.listenForEvents())

	case ConnectionClosedMsg:
		m.ClearNotification(NotifyReconnecting)
		if m.mode == ModeOnline && m.phase != PhaseMenu {
			m.EnterMenu()
		}
		m.err = "connection to server lost"
		cmds = append(cmds, m.listenForEvents())

	case ServerErrorMsg:
		cmds = append(cmds, m.notifyTemporary("⚠️ "+msg.Err.Error()))
		cmds = append(cmds, m.listenForEvents())

	case ClearReconnectMsg:
		m.ClearNotification(NotifyReconnectSuccess)

	case ClearSystemNotificationMsg:
		m.ClearNotification(NotifyError)

	case tea.KeyMsg:
		if m.keyHandler != nil {
			handled, keyCmd := m.keyHandler(m, msg)
			if keyCmd != nil {
				cmds = append(cmds, keyCmd)
			}
			if handled {
				return m, tea.Batch(cmds...)
			}
		}
	}

	if m.phase == PhaseJoinInput {
		newInput, cmd := m.input.Update(msg)
		*m.input = newInput
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the model.
func (m *AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.phase {
	case PhaseConnecting:
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, "Connecting to server...")
	default:
		if m.viewRenderer != nil {
			content = m.viewRenderer(m, m.phase)
		} else {
			content = "View renderer not initialized"
		}
	}

	return common.DocStyle.Render(content)
}

// SetViewRenderer sets the view rendering function.
func (m *AppModel) SetViewRenderer(fn func(Model, GamePhase) string) {
	m.viewRenderer = fn
}

// SetKeyHandler sets the keyboard event handler function.
func (m *AppModel) SetKeyHandler(fn func(Model, tea.KeyMsg) (bool, tea.Cmd)) {
	m.keyHandler = fn
}
