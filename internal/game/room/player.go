package room

import (
	"time"

	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/game/zone"
	"github.com/palemoky/card-duel/internal/network/protocol"
	"github.com/palemoky/card-duel/internal/storage"
)

// 玩家数值的默认值与上限
const (
	defaultMaxHealth          = 25
	defaultSlotCount          = 5
	defaultMaxChapterProgress = 3

	manaCap = 10
	// 章节指示物上限。来源实现里不同调用点的上限不一致（3/10/50），
	// 这里统一为回合推进路径使用的 3。
	chapterTokenCap = 3
)

// Conn 下行连接的抽象，由网络层实现
type Conn interface {
	ConnID() string
	Send(msg *protocol.Message)
}

// Player 单个玩家的运行时状态
//
// UserID 是稳定身份，跨越所有断线重连；Conn 断线期间为 nil，
// 整个结构在断线后完整保留，只有双方重开协议会整体重置。
type Player struct {
	UserID   string
	Username string
	Seat     string
	Conn     Conn // 断线时为 nil

	DeckID     string
	DeckName   string
	Hero       string
	Champion   string
	DeckLocked bool

	Health             int
	MaxHealth          int
	Mana               int
	MaxMana            int
	ChapterProgress    int
	MaxChapterProgress int
	ChapterTokens      int
	TurnsCompleted     int

	Hand      zone.List
	Deck      zone.List
	Graveyard zone.List

	Battlefield zone.Slots
	EffectZone  zone.Slots

	BattlefieldSlots int // 1-10，只限制放置，不收缩数组
	EffectSlots      int

	IsActive         bool
	TempLeave        bool
	RestartRequested bool
	DisplayedHand    bool
	FirstDrawHint    bool // 先手玩家的一次性抽牌提示，首次抽牌时清除
	LastActiveTime   time.Time

	Custom map[string]string
}

// newPlayer 创建入座玩家的初始状态
func newPlayer(userID, username, seat string) *Player {
	return &Player{
		UserID:             userID,
		Username:           username,
		Seat:               seat,
		Health:             defaultMaxHealth,
		MaxHealth:          defaultMaxHealth,
		MaxChapterProgress: defaultMaxChapterProgress,
		Hand:               zone.List{},
		Deck:               zone.List{},
		Graveyard:          zone.List{},
		Battlefield:        zone.Slots{},
		EffectZone:         zone.Slots{},
		BattlefieldSlots:   defaultSlotCount,
		EffectSlots:        defaultSlotCount,
		Custom:             make(map[string]string),
	}
}

// resetForRestart 重置回选卡组之前的状态，身份、座位和连接保留
func (p *Player) resetForRestart() {
	p.DeckID = ""
	p.DeckName = ""
	p.Hero = ""
	p.Champion = ""
	p.DeckLocked = false

	p.Health = defaultMaxHealth
	p.MaxHealth = defaultMaxHealth
	p.Mana = 0
	p.MaxMana = 0
	p.ChapterProgress = 0
	p.MaxChapterProgress = defaultMaxChapterProgress
	p.ChapterTokens = 0
	p.TurnsCompleted = 0

	p.Hand = zone.List{}
	p.Deck = zone.List{}
	p.Graveyard = zone.List{}
	p.Battlefield = zone.Slots{}
	p.EffectZone = zone.Slots{}
	p.BattlefieldSlots = defaultSlotCount
	p.EffectSlots = defaultSlotCount

	p.RestartRequested = false
	p.DisplayedHand = false
	p.FirstDrawHint = false
	p.Custom = make(map[string]string)
}

// online 玩家当前是否有活跃连接
func (p *Player) online() bool {
	return p.Conn != nil
}

// attach 重连时挂上新连接，其余字段一律不动
func (p *Player) attach(conn Conn) {
	p.Conn = conn
	p.IsActive = true
	p.TempLeave = false
}

// detach 断线时摘掉连接，状态整体保留
func (p *Player) detach() {
	p.Conn = nil
	p.IsActive = false
	p.TempLeave = true
	p.LastActiveTime = time.Now()
}

// draw 从牌库顶抽 n 张到手牌，牌库空时提前结束，返回实际抽到的张数
func (p *Player) draw(n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		c := p.Deck.PopFront()
		if c == nil {
			break
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	if drawn > 0 {
		p.FirstDrawHint = false
	}
	return drawn
}

// denseZone 返回密集列表区域，未知区域返回 nil
func (p *Player) denseZone(name zone.Name) *zone.List {
	switch name {
	case zone.Hand:
		return &p.Hand
	case zone.Deck:
		return &p.Deck
	case zone.Graveyard:
		return &p.Graveyard
	}
	return nil
}

// slotZone 返回格子区域及其格子数，未知区域返回 nil
func (p *Player) slotZone(name zone.Name) (*zone.Slots, int) {
	switch name {
	case zone.Battlefield:
		return &p.Battlefield, p.BattlefieldSlots
	case zone.Effect:
		return &p.EffectZone, p.EffectSlots
	}
	return nil, 0
}

// cardAt 返回区域内指定位置的牌
func (p *Player) cardAt(name zone.Name, i int) *card.Card {
	if l := p.denseZone(name); l != nil {
		return l.At(i)
	}
	if s, _ := p.slotZone(name); s != nil {
		return s.At(i)
	}
	return nil
}

// view 构建下行快照视图
func (p *Player) view() protocol.PlayerView {
	return protocol.PlayerView{
		UserID:   p.UserID,
		Username: p.Username,
		Seat:     p.Seat,
		Online:   p.online(),

		DeckID:     p.DeckID,
		DeckName:   p.DeckName,
		Hero:       p.Hero,
		Champion:   p.Champion,
		DeckLocked: p.DeckLocked,

		Health:             p.Health,
		MaxHealth:          p.MaxHealth,
		Mana:               p.Mana,
		MaxMana:            p.MaxMana,
		ChapterProgress:    p.ChapterProgress,
		MaxChapterProgress: p.MaxChapterProgress,
		ChapterTokens:      p.ChapterTokens,
		TurnsCompleted:     p.TurnsCompleted,

		Hand:        p.Hand,
		DeckSize:    p.Deck.Len(),
		Graveyard:   p.Graveyard,
		Battlefield: p.Battlefield,
		EffectZone:  p.EffectZone,

		BattlefieldSlots: p.BattlefieldSlots,
		EffectSlots:      p.EffectSlots,

		DisplayedHand:    p.DisplayedHand,
		FirstDrawHint:    p.FirstDrawHint,
		RestartRequested: p.RestartRequested,
	}
}

// toRow 转换为持久化形态，连接引用和在线标记剥离
func (p *Player) toRow() storage.PlayerRow {
	var lastActive int64
	if !p.LastActiveTime.IsZero() {
		lastActive = p.LastActiveTime.Unix()
	}
	return storage.PlayerRow{
		UserID:   p.UserID,
		Username: p.Username,
		Seat:     p.Seat,

		DeckID:     p.DeckID,
		DeckName:   p.DeckName,
		Hero:       p.Hero,
		Champion:   p.Champion,
		DeckLocked: p.DeckLocked,

		Health:             p.Health,
		MaxHealth:          p.MaxHealth,
		Mana:               p.Mana,
		MaxMana:            p.MaxMana,
		ChapterProgress:    p.ChapterProgress,
		MaxChapterProgress: p.MaxChapterProgress,
		ChapterTokens:      p.ChapterTokens,
		TurnsCompleted:     p.TurnsCompleted,

		Hand:        p.Hand,
		Deck:        p.Deck,
		Graveyard:   p.Graveyard,
		Battlefield: p.Battlefield,
		EffectZone:  p.EffectZone,

		BattlefieldSlots: p.BattlefieldSlots,
		EffectSlots:      p.EffectSlots,

		DisplayedHand:    p.DisplayedHand,
		FirstDrawHint:    p.FirstDrawHint,
		RestartRequested: p.RestartRequested,
		TempLeave:        p.TempLeave,
		LastActiveTime:   lastActive,

		Custom: p.Custom,
	}
}

// playerFromRow 从持久化行重建玩家状态，连接引用为空
func playerFromRow(row storage.PlayerRow) *Player {
	p := &Player{
		UserID:   row.UserID,
		Username: row.Username,
		Seat:     row.Seat,

		DeckID:     row.DeckID,
		DeckName:   row.DeckName,
		Hero:       row.Hero,
		Champion:   row.Champion,
		DeckLocked: row.DeckLocked,

		Health:             row.Health,
		MaxHealth:          row.MaxHealth,
		Mana:               row.Mana,
		MaxMana:            row.MaxMana,
		ChapterProgress:    row.ChapterProgress,
		MaxChapterProgress: row.MaxChapterProgress,
		ChapterTokens:      row.ChapterTokens,
		TurnsCompleted:     row.TurnsCompleted,

		Hand:        row.Hand,
		Deck:        row.Deck,
		Graveyard:   row.Graveyard,
		Battlefield: row.Battlefield,
		EffectZone:  row.EffectZone,

		BattlefieldSlots: row.BattlefieldSlots,
		EffectSlots:      row.EffectSlots,

		DisplayedHand:    row.DisplayedHand,
		FirstDrawHint:    row.FirstDrawHint,
		RestartRequested: row.RestartRequested,
		TempLeave:        row.TempLeave,

		Custom: row.Custom,
	}
	if row.LastActiveTime != 0 {
		p.LastActiveTime = time.Unix(row.LastActiveTime, 0)
	}
	if p.Hand == nil {
		p.Hand = zone.List{}
	}
	if p.Deck == nil {
		p.Deck = zone.List{}
	}
	if p.Graveyard == nil {
		p.Graveyard = zone.List{}
	}
	if p.Battlefield == nil {
		p.Battlefield = zone.Slots{}
	}
	if p.EffectZone == nil {
		p.EffectZone = zone.Slots{}
	}
	if p.Custom == nil {
		p.Custom = make(map[string]string)
	}
	return p
}
