package room

import (
	"fmt"
	"time"

	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/card"
)

// 非对称开局参数：先手牌少费多，后手牌多费缺。
// 这是对先手优势的补偿机制，必须精确复现，不能近似。
const (
	firstPlayerOpeningDraw  = 3
	secondPlayerOpeningDraw = 4
	firstPlayerOpeningMana  = 1
)

// SelectDeck 选择并锁定卡组
//
// 双方都锁定后自动触发开局。卡牌实例 ID 缺失时补齐。
func (r *Room) SelectDeck(userID, username, deckID, deckName, hero, champion string, cards []*card.Card) error {
	p := r.playerByID(userID)
	if p == nil {
		return nil // 未入座的 userId，静默丢弃
	}

	p.DeckID = deckID
	p.DeckName = deckName
	p.Hero = hero
	p.Champion = champion
	p.DeckLocked = true
	if username != "" {
		p.Username = username
	}

	p.Deck = p.Deck[:0]
	for _, c := range cards {
		c.EnsureInstanceID()
		p.Deck = append(p.Deck, c)
	}

	r.appendLog(LogEntry{
		Message: fmt.Sprintf("%s 锁定了卡组「%s」", p.Username, deckName),
		Actor:   p.Username,
		Tag:     "select_deck",
		At:      time.Now(),
	})

	r.maybeStartMatch()
	return nil
}

// maybeStartMatch 双方卡组锁定后执行一次开局
//
// phase 检查即幂等保护：算法整体只执行一次，唯一的随机
// 选择是先手归属。
func (r *Room) maybeStartMatch() {
	if r.Match.Phase != PhaseWaiting {
		return
	}
	if len(r.Players) != 2 {
		return
	}
	for _, p := range r.Players {
		if !p.DeckLocked {
			return
		}
	}

	// 座位管理器停止接受新的绑定
	r.Locked = true

	first := r.rng.Intn(2)
	r.Match.FirstPlayer = first
	r.Match.CurrentPlayer = first
	r.Match.Round = 1

	for i, p := range r.Players {
		p.Health = defaultMaxHealth
		p.MaxHealth = defaultMaxHealth
		p.ChapterProgress = 1
		p.MaxChapterProgress = defaultMaxChapterProgress

		if i == first {
			p.draw(firstPlayerOpeningDraw)
			p.Mana = firstPlayerOpeningMana
			p.MaxMana = firstPlayerOpeningMana
			p.FirstDrawHint = true // 一次性提示，首次抽牌动作时清除
		} else {
			p.draw(secondPlayerOpeningDraw)
			p.Mana = 0
			p.MaxMana = 0
		}
	}

	r.Match.Phase = PhasePlaying

	r.appendLog(LogEntry{
		Message: fmt.Sprintf("对局开始，%s 先手", r.Players[first].Username),
		Actor:   r.Players[first].Username,
		Tag:     "match_start",
		At:      time.Now(),
	})
}

// applyRestart 重开请求的切换与双方握手
//
// 双方同时为 true 时整体重置：座位解绑、玩家状态清回选卡组前、
// 阶段回到 waiting，持久化的座位归属一并清除，任何人都可以重新
// 入座。单方面取消只清掉自己的标记，没有其他副作用。
func (r *Room) applyRestart(p *Player, act action.RestartRequest) Result {
	p.RestartRequested = act.Requested

	if !act.Requested {
		return r.success(p, act.ActionTag(), fmt.Sprintf("%s 取消了重新开始请求", p.Username), nil)
	}

	for _, other := range r.Players {
		if !other.RestartRequested {
			return r.success(p, act.ActionTag(), fmt.Sprintf("%s 请求重新开始对局", p.Username), nil)
		}
	}

	// 双方都同意，执行整体重置
	for _, pl := range r.Players {
		pl.resetForRestart()
	}
	r.Seats = make(map[string]*SeatBinding)
	r.Locked = false
	r.Match = MatchState{Phase: PhaseWaiting, SharedBoard: r.Match.SharedBoard[:0]}

	return r.success(p, act.ActionTag(), "双方同意，对局已重置", nil)
}
