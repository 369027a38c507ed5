package protocol

import (
	"encoding/json"

	"github.com/palemoky/card-duel/internal/game/card"
)

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoin       MessageType = "join"        // 加入房间（玩家或观战）
	MsgBindSeat   MessageType = "bind_seat"   // 绑定座位
	MsgSelectDeck MessageType = "select_deck" // 选择并锁定卡组
	MsgLeaveRoom  MessageType = "leave_room"  // 主动离开

	// 对局操作（具体动作见 payload 的 tag）
	MsgAction MessageType = "action"
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	MsgRoomState     MessageType = "room_state"     // 房间状态快照
	MsgRoomPositions MessageType = "room_positions" // 可用座位（未入座玩家）
	MsgLogEvent      MessageType = "log_event"      // 操作日志推送
	MsgDeckContents  MessageType = "deck_contents"  // 牌库内容（仅检索者可见）

	MsgError MessageType = "error" // 错误消息
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinPayload 加入房间请求
type JoinPayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Spectate bool   `json:"spectate"` // true = 观战，不占座位
}

// BindSeatPayload 绑定座位请求
type BindSeatPayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     string `json:"seat"` // "A" 或 "B"
}

// SelectDeckPayload 选择卡组请求
//
// Cards 为空时由服务端按 DeckID 从卡组存储补全。
type SelectDeckPayload struct {
	RoomID   string       `json:"room_id"`
	UserID   string       `json:"user_id"`
	Username string       `json:"username"`
	DeckID   string       `json:"deck_id"`
	DeckName string       `json:"deck_name"`
	Hero     string       `json:"hero_name,omitempty"`
	Champion string       `json:"champion,omitempty"`
	Cards    []*card.Card `json:"cards,omitempty"`
}

// ActionPayload 对局动作请求
type ActionPayload struct {
	RoomID string          `json:"room_id"`
	UserID string          `json:"user_id"`
	Tag    string          `json:"tag"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// LeavePayload 离开房间请求
type LeavePayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnID string `json:"conn_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomStatePayload 房间状态快照，入房和每次变更后全量下发
type RoomStatePayload struct {
	RoomID     string            `json:"room_id"`
	Players    []PlayerView      `json:"players"`
	Spectators []SpectatorView   `json:"spectators"`
	Match      MatchView         `json:"match"`
	Log        []LogEventPayload `json:"log"`
	Locked     bool              `json:"locked"`
}

// PlayerView 玩家运行时状态视图
type PlayerView struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     string `json:"seat"`
	Online   bool   `json:"online"`

	DeckID     string `json:"deck_id,omitempty"`
	DeckName   string `json:"deck_name,omitempty"`
	Hero       string `json:"hero_name,omitempty"`
	Champion   string `json:"champion,omitempty"`
	DeckLocked bool   `json:"deck_locked"`

	Health             int `json:"health"`
	MaxHealth          int `json:"max_health"`
	Mana               int `json:"mana"`
	MaxMana            int `json:"max_mana"`
	ChapterProgress    int `json:"chapter_progress"`
	MaxChapterProgress int `json:"max_chapter_progress"`
	ChapterTokens      int `json:"chapter_tokens"`
	TurnsCompleted     int `json:"turns_completed"`

	Hand        []*card.Card `json:"hand"`
	DeckSize    int          `json:"deck_size"`
	Graveyard   []*card.Card `json:"graveyard"`
	Battlefield []*card.Card `json:"battlefield"` // 空位为 null
	EffectZone  []*card.Card `json:"effect_zone"` // 空位为 null

	BattlefieldSlots int `json:"battlefield_slots"`
	EffectSlots      int `json:"effect_slots"`

	DisplayedHand    bool `json:"displayed_hand"`
	FirstDrawHint    bool `json:"first_draw_hint"`
	RestartRequested bool `json:"restart_requested"`
}

// SpectatorView 观战者视图
type SpectatorView struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// MatchView 对局进度视图
type MatchView struct {
	Phase         string       `json:"phase"` // waiting / playing
	CurrentPlayer int          `json:"current_player"`
	FirstPlayer   int          `json:"first_player"`
	Round         int          `json:"round"`
	SharedBoard   []*card.Card `json:"shared_board"`
}

// RoomPositionsPayload 座位情况，发给尚未入座的加入者
type RoomPositionsPayload struct {
	RoomID string              `json:"room_id"`
	Seats  map[string]SeatInfo `json:"seats"`
	Locked bool                `json:"locked"`
}

// SeatInfo 单个座位的占用情况
type SeatInfo struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Bound    bool   `json:"bound"`
}

// LogEventPayload 一条操作日志
type LogEventPayload struct {
	Message  string     `json:"message"`
	Actor    string     `json:"actor"`
	Tag      string     `json:"tag"`
	Card     *card.Card `json:"card,omitempty"`
	UnixMill int64      `json:"ts"`
}

// DeckContentsPayload 牌库内容，仅回给检索牌库的玩家
type DeckContentsPayload struct {
	Cards []*card.Card `json:"cards"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 错误码 ---
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002

	ErrCodeSeatOccupied = 2001
	ErrCodeRoomLocked   = 2002
	ErrCodeUnknownUser  = 2003

	ErrCodeIndexOutOfRange  = 3001
	ErrCodeSlotOccupied     = 3002
	ErrCodeInsufficientMana = 3003
	ErrCodeInvalidZone      = 3004
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:          "未知错误",
	ErrCodeInvalidMsg:       "无效的消息格式",
	ErrCodeRateLimit:        "请求过于频繁",
	ErrCodeSeatOccupied:     "座位已被其他玩家占用",
	ErrCodeRoomLocked:       "对局已开始，房间不再接受新玩家",
	ErrCodeUnknownUser:      "玩家不在对局中",
	ErrCodeIndexOutOfRange:  "卡牌位置越界",
	ErrCodeSlotOccupied:     "目标格子已有卡牌",
	ErrCodeInsufficientMana: "法力不足",
	ErrCodeInvalidZone:      "无效的区域",
}
