package room

import (
	"math/rand"
	"time"

	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/game/zone"
	"github.com/palemoky/card-duel/internal/network/protocol"
	"github.com/palemoky/card-duel/internal/storage"
)

// Phase 对局阶段
type Phase string

const (
	PhaseWaiting Phase = "waiting" // 等待双方锁定卡组
	PhasePlaying Phase = "playing" // 对局进行中
)

// MatchState 对局进度
type MatchState struct {
	Phase         Phase
	CurrentPlayer int
	FirstPlayer   int
	Round         int
	SharedBoard   zone.Slots // 双方共用的公共格子区
}

// Spectator 观战者，断线即移除，不保留任何状态
type Spectator struct {
	UserID   string
	Username string
	Conn     Conn
}

// LogEntry 一条操作日志
type LogEntry struct {
	Message string
	Actor   string
	Tag     action.Tag
	Card    *card.Card
	At      time.Time
}

// Room 单个房间的全部运行时状态
//
// 只允许房间专属的 worker 协程触碰，字段上没有锁：
// 串行化由 worker 的收件箱保证（单写者模型）。
type Room struct {
	ID         string
	Players    []*Player // 至多 2 个，下标即回合顺序
	Spectators map[string]*Spectator
	Seats      map[string]*SeatBinding
	Locked     bool
	Match      MatchState

	Log      []LogEntry
	logLimit int

	rng *rand.Rand
	seq uint64 // 持久化写入序号
}

// New 创建空房间
func New(roomID string, logLimit int) *Room {
	if logLimit <= 0 {
		logLimit = 100
	}
	return &Room{
		ID:         roomID,
		Spectators: make(map[string]*Spectator),
		Seats:      make(map[string]*SeatBinding),
		Match:      MatchState{Phase: PhaseWaiting, SharedBoard: zone.Slots{}},
		logLimit:   logLimit,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// playerByID 按用户 ID 查找玩家
func (r *Room) playerByID(userID string) *Player {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// playerBySeat 按座位查找玩家
func (r *Room) playerBySeat(seat string) *Player {
	for _, p := range r.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// playerIndex 返回玩家在回合顺序中的下标，不存在返回 -1
func (r *Room) playerIndex(userID string) int {
	for i, p := range r.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// appendLog 追加一条日志，超过上限时淘汰最旧的
func (r *Room) appendLog(entry LogEntry) {
	r.Log = append(r.Log, entry)
	if len(r.Log) > r.logLimit {
		r.Log = r.Log[len(r.Log)-r.logLimit:]
	}
}

// --- 连接协调 ---

// JoinResult 加入房间的处理结果
type JoinResult struct {
	Seated    bool // 已有玩家状态（重连或已入座）
	Spectator bool
}

// Join 处理 socket 加入
//
// 观战者按 userId 幂等登记；已有状态的玩家只重挂连接，其余字段
// 一律不动；没有状态的玩家由调用方下发座位情况，等待显式绑定。
func (r *Room) Join(conn Conn, userID, username string, spectate bool) JoinResult {
	if spectate {
		r.Spectators[userID] = &Spectator{
			UserID:   userID,
			Username: username,
			Conn:     conn,
		}
		return JoinResult{Spectator: true}
	}

	if p := r.playerByID(userID); p != nil {
		p.attach(conn)
		return JoinResult{Seated: true}
	}
	return JoinResult{}
}

// Disconnect 处理传输层断开
//
// 玩家状态完整保留（对局进度有价值，必须扛住抖动的连接），
// 观战者直接移除。返回受影响的玩家，没有则为 nil。
func (r *Room) Disconnect(connID string) *Player {
	for _, p := range r.Players {
		if p.Conn != nil && p.Conn.ConnID() == connID {
			p.detach()
			return p
		}
	}
	for id, s := range r.Spectators {
		if s.Conn != nil && s.Conn.ConnID() == connID {
			delete(r.Spectators, id)
			return nil
		}
	}
	return nil
}

// Leave 处理显式离开，语义与断线一致：玩家状态保留
func (r *Room) Leave(userID string) {
	if p := r.playerByID(userID); p != nil {
		p.detach()
		return
	}
	delete(r.Spectators, userID)
}

// --- 下行消息构建 ---

// Snapshot 构建全量状态快照
func (r *Room) Snapshot() *protocol.Message {
	players := make([]protocol.PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.view())
	}

	spectators := make([]protocol.SpectatorView, 0, len(r.Spectators))
	for _, s := range r.Spectators {
		spectators = append(spectators, protocol.SpectatorView{
			UserID:   s.UserID,
			Username: s.Username,
		})
	}

	logs := make([]protocol.LogEventPayload, 0, len(r.Log))
	for _, e := range r.Log {
		logs = append(logs, logEventPayload(e))
	}

	return protocol.MustNewMessage(protocol.MsgRoomState, protocol.RoomStatePayload{
		RoomID:     r.ID,
		Players:    players,
		Spectators: spectators,
		Match: protocol.MatchView{
			Phase:         string(r.Match.Phase),
			CurrentPlayer: r.Match.CurrentPlayer,
			FirstPlayer:   r.Match.FirstPlayer,
			Round:         r.Match.Round,
			SharedBoard:   r.Match.SharedBoard,
		},
		Log:    logs,
		Locked: r.Locked,
	})
}

// Positions 构建座位情况消息，发给尚未入座的加入者
func (r *Room) Positions() *protocol.Message {
	seats := make(map[string]protocol.SeatInfo, len(seatLabels))
	for _, label := range seatLabels {
		info := protocol.SeatInfo{}
		if b, ok := r.Seats[label]; ok {
			info = protocol.SeatInfo{UserID: b.UserID, Username: b.Username, Bound: true}
		}
		seats[label] = info
	}
	return protocol.MustNewMessage(protocol.MsgRoomPositions, protocol.RoomPositionsPayload{
		RoomID: r.ID,
		Seats:  seats,
		Locked: r.Locked,
	})
}

// Broadcast 发送给房间内的所有连接（双方玩家加全部观战者）
func (r *Room) Broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Send(msg)
		}
	}
	for _, s := range r.Spectators {
		if s.Conn != nil {
			s.Conn.Send(msg)
		}
	}
}

// logEventPayload 日志条目转下行 payload
func logEventPayload(e LogEntry) protocol.LogEventPayload {
	return protocol.LogEventPayload{
		Message:  e.Message,
		Actor:    e.Actor,
		Tag:      string(e.Tag),
		Card:     e.Card,
		UnixMill: e.At.UnixMilli(),
	}
}

// --- 持久化转换 ---

// ToRow 构建持久化行，写入序号自增
func (r *Room) ToRow() *storage.RoomRow {
	r.seq++

	players := make(map[string]storage.PlayerRow, len(r.Players))
	for _, p := range r.Players {
		players[p.UserID] = p.toRow()
	}

	seats := make(map[string]storage.SeatRow, len(r.Seats))
	for label, b := range r.Seats {
		seats[label] = storage.SeatRow{
			UserID:   b.UserID,
			Username: b.Username,
			BoundAt:  b.BoundAt.Unix(),
		}
	}

	spectators := make([]storage.SpectatorRow, 0, len(r.Spectators))
	for _, s := range r.Spectators {
		spectators = append(spectators, storage.SpectatorRow{
			UserID:   s.UserID,
			Username: s.Username,
		})
	}

	logs := make([]storage.LogRow, 0, len(r.Log))
	for _, e := range r.Log {
		logs = append(logs, storage.LogRow{
			Message: e.Message,
			Actor:   e.Actor,
			Tag:     string(e.Tag),
			Card:    e.Card,
			Ts:      e.At.UnixMilli(),
		})
	}

	return &storage.RoomRow{
		Version: storage.CurrentRowVersion,
		RoomID:  r.ID,
		Seq:     r.seq,
		Match: storage.MatchRow{
			Phase:         string(r.Match.Phase),
			CurrentPlayer: r.Match.CurrentPlayer,
			FirstPlayer:   r.Match.FirstPlayer,
			Round:         r.Match.Round,
			SharedBoard:   r.Match.SharedBoard,
		},
		Log:        logs,
		Seats:      seats,
		Players:    players,
		Spectators: spectators,
		Locked:     r.Locked,
	}
}

// FromRow 从持久化行重建房间（冷启动后的首次访问）
//
// 行在存储层已完成版本迁移。玩家按座位顺序恢复，连接引用为空，
// 等待各自的 userId 重连后挂回。观战者只恢复名单，连接同样为空。
func FromRow(row *storage.RoomRow, logLimit int) *Room {
	r := New(row.RoomID, logLimit)
	r.Locked = row.Locked
	r.seq = row.Seq
	r.Match = MatchState{
		Phase:         Phase(row.Match.Phase),
		CurrentPlayer: row.Match.CurrentPlayer,
		FirstPlayer:   row.Match.FirstPlayer,
		Round:         row.Match.Round,
		SharedBoard:   row.Match.SharedBoard,
	}
	if r.Match.SharedBoard == nil {
		r.Match.SharedBoard = zone.Slots{}
	}

	for label, b := range row.Seats {
		r.Seats[label] = &SeatBinding{
			UserID:   b.UserID,
			Username: b.Username,
			BoundAt:  time.Unix(b.BoundAt, 0),
		}
	}

	// 座位顺序决定回合顺序，按固定的座位表遍历保证恢复后顺序稳定
	for _, label := range seatLabels {
		for _, p := range row.Players {
			if p.Seat == label {
				r.Players = append(r.Players, playerFromRow(p))
			}
		}
	}

	for _, s := range row.Spectators {
		r.Spectators[s.UserID] = &Spectator{UserID: s.UserID, Username: s.Username}
	}

	for _, e := range row.Log {
		r.Log = append(r.Log, LogEntry{
			Message: e.Message,
			Actor:   e.Actor,
			Tag:     action.Tag(e.Tag),
			Card:    e.Card,
			At:      time.UnixMilli(e.Ts),
		})
	}

	return r
}
