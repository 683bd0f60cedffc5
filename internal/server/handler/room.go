package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
	"github.com/palemoky/reversi/internal/server/storage"
	"github.com/palemoky/reversi/internal/types"
)

// 单次存储操作的超时
const storeTimeout = 5 * time.Second

var errInvalidPayload = &apperrors.GameError{Code: apperrors.CodeInvalidMsg, Message: "invalid payload"}

// handleReadRoom 读取房间记录
func (h *Handler) handleReadRoom(peer types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReadRoomPayload](msg)
	if err != nil || payload.RoomID == "" {
		peer.SendMessage(codec.NewErrorMessage("", errInvalidPayload))
		return
	}

	ctx, cancel := context.WithTimeout(peer.Context(), storeTimeout)
	defer cancel()

	rec, err := h.store.ReadRoom(ctx, payload.RoomID)
	if err != nil {
		log.Printf("读取房间 %s 失败: %v", payload.RoomID, err)
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}

	peer.SendMessage(codec.MustNewMessage(protocol.MsgRoomSnapshot, protocol.RoomSnapshotPayload{
		RequestID: payload.RequestID,
		RoomID:    payload.RoomID,
		Record:    rec,
	}))
}

// handleWriteRoom 整条写入房间记录，只允许当前回合持有者写入
func (h *Handler) handleWriteRoom(peer types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.WriteRoomPayload](msg)
	if err != nil || payload.RoomID == "" || payload.Record == nil {
		peer.SendMessage(codec.NewErrorMessage("", errInvalidPayload))
		return
	}

	ctx, cancel := context.WithTimeout(peer.Context(), storeTimeout)
	defer cancel()

	prev, err := h.store.ReadRoom(ctx, payload.RoomID)
	if err != nil {
		log.Printf("读取房间 %s 失败: %v", payload.RoomID, err)
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}

	if err := room.AuthorizeWrite(prev, payload.Record, peer.GetID()); err != nil {
		log.Printf("🚫 %s 写入房间 %s 被拒绝: %v", peer.GetID(), payload.RoomID, err)
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}

	if err := h.store.WriteRoom(ctx, payload.RoomID, payload.Record); err != nil {
		log.Printf("写入房间 %s 失败: %v", payload.RoomID, err)
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}

	// 创建或加入时记录玩家所在房间
	if prev == nil || prev.Status == room.StatusWaiting {
		member := &storage.MemberData{
			Identity:  peer.GetID(),
			RoomID:    payload.RoomID,
			UpdatedAt: time.Now().Unix(),
		}
		if err := h.store.SaveMember(ctx, member); err != nil {
			log.Printf("记录玩家 %s 所在房间失败: %v", peer.GetID(), err)
		}
	}

	peer.SendMessage(codec.MustNewMessage(protocol.MsgWriteAck, protocol.WriteAckPayload{
		RequestID: payload.RequestID,
		RoomID:    payload.RoomID,
		Version:   payload.Record.Version,
	}))
}

// handleSubscribe 订阅房间更新，只有房间中的玩家可以订阅
func (h *Handler) handleSubscribe(peer types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SubscribePayload](msg)
	if err != nil || payload.RoomID == "" {
		peer.SendMessage(codec.NewErrorMessage("", errInvalidPayload))
		return
	}

	readCtx, cancelRead := context.WithTimeout(peer.Context(), storeTimeout)
	rec, err := h.store.ReadRoom(readCtx, payload.RoomID)
	cancelRead()
	if err != nil {
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}
	if rec == nil {
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, apperrors.ErrRoomNotFound))
		return
	}
	if _, seated := rec.RoleOf(peer.GetID()); !seated {
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, apperrors.ErrNotInRoom))
		return
	}

	ctx, cancel := context.WithCancel(peer.Context())
	updates, err := h.store.Subscribe(ctx, payload.RoomID)
	if err != nil {
		cancel()
		log.Printf("订阅房间 %s 失败: %v", payload.RoomID, err)
		peer.SendMessage(codec.NewErrorMessage(payload.RequestID, err))
		return
	}
	h.addSubscription(peer.GetID(), payload.RoomID, cancel)

	peer.SendMessage(codec.MustNewMessage(protocol.MsgSubscribed, protocol.SubscribedPayload{
		RequestID: payload.RequestID,
		RoomID:    payload.RoomID,
	}))

	go h.forward(peer, payload.RoomID, updates)
}

// handleUnsubscribe 取消订阅
func (h *Handler) handleUnsubscribe(peer types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.UnsubscribePayload](msg)
	if err != nil {
		peer.SendMessage(codec.NewErrorMessage("", errInvalidPayload))
		return
	}
	h.removeSubscription(peer.GetID(), payload.RoomID)
}

// forward 把房间更新推送给客户端，直到订阅取消
func (h *Handler) forward(peer types.Peer, roomID string, updates <-chan *room.Record) {
	for rec := range updates {
		peer.SendMessage(codec.MustNewMessage(protocol.MsgRoomUpdate, protocol.RoomUpdatePayload{
			RoomID: roomID,
			Record: rec,
		}))
	}
}

func (h *Handler) addSubscription(clientID, roomID string, cancel context.CancelFunc) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	if h.subs[clientID] == nil {
		h.subs[clientID] = make(map[string]context.CancelFunc)
	}
	// 重复订阅替换旧的
	if old, ok := h.subs[clientID][roomID]; ok {
		old()
	}
	h.subs[clientID][roomID] = cancel
}

func (h *Handler) removeSubscription(clientID, roomID string) {
	h.subsMu.Lock()
	cancel, ok := h.subs[clientID][roomID]
	if ok {
		delete(h.subs[clientID], roomID)
		if len(h.subs[clientID]) == 0 {
			delete(h.subs, clientID)
		}
	}
	h.subsMu.Unlock()

	if ok {
		cancel()
	}
}
