package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/palemoky/card-duel/internal/apperrors"
	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/room"
	"github.com/palemoky/card-duel/internal/network/protocol"
)

// 房间恢复（冷启动读 Redis）的超时
const hydrateTimeout = 5 * time.Second

// Handler 消息处理器
type Handler struct {
	server *Server
}

// NewHandler 创建处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 处理消息
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		h.handlePing(client, msg)
	case protocol.MsgJoin:
		h.handleJoin(client, msg)
	case protocol.MsgBindSeat:
		h.handleBindSeat(client, msg)
	case protocol.MsgSelectDeck:
		h.handleSelectDeck(client, msg)
	case protocol.MsgAction:
		h.handleAction(client, msg)
	case protocol.MsgLeaveRoom:
		h.handleLeave(client, msg)

	default:
		log.Printf("未知消息类型: %s", msg.Type)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// roomWorker 找到房间工作者，没有活跃条目时从持久化存储恢复
func (h *Handler) roomWorker(roomID string) *room.Worker {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()

	w, err := h.server.registry.Room(ctx, roomID)
	if err != nil {
		log.Printf("⚠️ 房间 %s 恢复失败: %v", roomID, err)
		return nil
	}
	return w
}

// handleJoin 处理加入房间（玩家或观战）
func (h *Handler) handleJoin(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinPayload](msg)
	if err != nil || payload.RoomID == "" || payload.UserID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	w := h.roomWorker(payload.RoomID)
	if w == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	client.UserID = payload.UserID
	client.Username = payload.Username
	client.RoomID = payload.RoomID

	w.Join(client, payload.UserID, payload.Username, payload.Spectate)
}

// handleBindSeat 处理座位绑定
func (h *Handler) handleBindSeat(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.BindSeatPayload](msg)
	if err != nil || payload.RoomID == "" || payload.UserID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	w := h.roomWorker(payload.RoomID)
	if w == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	client.UserID = payload.UserID
	client.Username = payload.Username
	client.RoomID = payload.RoomID

	if err := w.BindSeat(client, payload.Seat, payload.UserID, payload.Username); err != nil {
		code := protocol.ErrCodeUnknown
		var gameErr *apperrors.GameError
		if errors.As(err, &gameErr) {
			code = gameErr.Code
		}
		client.SendMessage(protocol.NewErrorMessageWithText(code, err.Error()))
	}
}

// handleSelectDeck 处理卡组选择
//
// 客户端没带牌表时按 deckId 从卡组存储补全（目录本身是外部服务，
// 这里只是查询网关）。
func (h *Handler) handleSelectDeck(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SelectDeckPayload](msg)
	if err != nil || payload.RoomID == "" || payload.UserID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	cards := payload.Cards
	if len(cards) == 0 && payload.DeckID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
		loaded, err := h.server.store.LoadDeck(ctx, payload.DeckID)
		cancel()
		if err != nil {
			log.Printf("⚠️ 卡组 %s 加载失败: %v", payload.DeckID, err)
		}
		cards = loaded
	}

	w := h.roomWorker(payload.RoomID)
	if w == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	w.SelectDeck(payload.UserID, payload.Username, payload.DeckID, payload.DeckName, payload.Hero, payload.Champion, cards)
}

// handleAction 处理对局动作
func (h *Handler) handleAction(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ActionPayload](msg)
	if err != nil || payload.RoomID == "" || payload.UserID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	act, err := action.Decode(action.Tag(payload.Tag), payload.Data)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeInvalidMsg, err.Error()))
		return
	}

	w := h.roomWorker(payload.RoomID)
	if w == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	w.Dispatch(payload.UserID, act)
}

// handleLeave 处理显式离开
func (h *Handler) handleLeave(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.LeavePayload](msg)
	if err != nil || payload.RoomID == "" {
		return
	}

	if w := h.server.registry.Peek(payload.RoomID); w != nil {
		w.Leave(payload.UserID)
	}
	client.RoomID = ""
}
