package storage

import (
	"github.com/palemoky/card-duel/internal/game/card"
)

// CurrentRowVersion 房间行的当前版本
//
// 版本 1 的行没有格子数、生命上限和章节上限字段，
// 迁移统一在加载边界完成，调用方拿到的永远是当前版本。
const CurrentRowVersion = 2

// 迁移时填充的默认值
const (
	defaultMaxHealth          = 25
	defaultSlotCount          = 5
	defaultMaxChapterProgress = 3
)

// RoomRow 房间持久化行，对应 Redis 中的一个 JSON 值
type RoomRow struct {
	Version int    `json:"version"`
	RoomID  string `json:"room_id"`
	Seq     uint64 `json:"seq"` // 写入序号，乱序写入防护

	Match      MatchRow             `json:"match"`
	Log        []LogRow             `json:"log"`
	Seats      map[string]SeatRow   `json:"seats"`
	Players    map[string]PlayerRow `json:"players"`
	Spectators []SpectatorRow       `json:"spectators"`
	Locked     bool                 `json:"locked"`

	SavedAt int64 `json:"saved_at"`
}

// MatchRow 对局进度
type MatchRow struct {
	Phase         string       `json:"phase"`
	CurrentPlayer int          `json:"current_player"`
	FirstPlayer   int          `json:"first_player"`
	Round         int          `json:"round"`
	SharedBoard   []*card.Card `json:"shared_board"`
}

// SeatRow 座位归属记录
type SeatRow struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	BoundAt  int64  `json:"bound_at"`
}

// SpectatorRow 观战者记录
type SpectatorRow struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// LogRow 一条操作日志
type LogRow struct {
	Message string     `json:"message"`
	Actor   string     `json:"actor"`
	Tag     string     `json:"tag"`
	Card    *card.Card `json:"card,omitempty"`
	Ts      int64      `json:"ts"`
}

// PlayerRow 玩家运行时状态的持久化形态
//
// 连接引用和在线标记是瞬态字段，保存时剥离。
type PlayerRow struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     string `json:"seat"`

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
	Deck        []*card.Card `json:"deck"`
	Graveyard   []*card.Card `json:"graveyard"`
	Battlefield []*card.Card `json:"battlefield"`
	EffectZone  []*card.Card `json:"effect_zone"`

	BattlefieldSlots int `json:"battlefield_slots"`
	EffectSlots      int `json:"effect_slots"`

	DisplayedHand    bool  `json:"displayed_hand"`
	FirstDrawHint    bool  `json:"first_draw_hint"`
	RestartRequested bool  `json:"restart_requested"`
	TempLeave        bool  `json:"temp_leave"`
	LastActiveTime   int64 `json:"last_active_time,omitempty"`

	Custom map[string]string `json:"custom,omitempty"`
}

// Migrate 把历史版本的行升级到当前版本
//
// 只在持久化网关的加载边界调用一次，禁止在调用点零散兜底。
func (row *RoomRow) Migrate() {
	if row.Version >= CurrentRowVersion {
		return
	}

	for id, p := range row.Players {
		if p.MaxHealth == 0 {
			p.MaxHealth = defaultMaxHealth
		}
		if p.BattlefieldSlots == 0 {
			p.BattlefieldSlots = defaultSlotCount
		}
		if p.EffectSlots == 0 {
			p.EffectSlots = defaultSlotCount
		}
		if p.MaxChapterProgress == 0 {
			p.MaxChapterProgress = defaultMaxChapterProgress
		}
		row.Players[id] = p
	}

	if row.Match.Phase == "" {
		row.Match.Phase = "waiting"
	}

	row.Version = CurrentRowVersion
}
