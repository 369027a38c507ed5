package room

import (
	"fmt"
	"time"

	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/game/zone"
	"github.com/palemoky/card-duel/internal/network/protocol"
)

// Result 一次动作调度的结果
//
// Mutated 为 false 时 Broadcast 可能仍有内容（解释性失败，例如
// 法力不足），调用方不得把“有消息”当成“已生效”。下标越界、
// 区域非法这类客户端缺陷则完全静默。
type Result struct {
	Mutated   bool
	Broadcast string
	Tag       action.Tag
	Actor     string
	Card      *card.Card         // 需要在 UI 上展示的完整卡牌
	Private   *protocol.Message  // 仅回给操作者的私有消息（牌库检索）
}

// success 记录日志并构建成功结果
func (r *Room) success(p *Player, tag action.Tag, msg string, c *card.Card) Result {
	r.appendLog(LogEntry{
		Message: msg,
		Actor:   p.Username,
		Tag:     tag,
		Card:    c,
		At:      time.Now(),
	})
	return Result{Mutated: true, Broadcast: msg, Tag: tag, Actor: p.Username, Card: c}
}

// refused 构建解释性失败结果，状态未被触碰
func refused(p *Player, tag action.Tag, msg string) Result {
	return Result{Broadcast: msg, Tag: tag, Actor: p.Username}
}

// silent 静默失败（客户端缺陷，不值得解释）
func silent() Result { return Result{} }

// Apply 把一个动作应用到房间状态
//
// 校验全部通过后才开始变更，任何动作要么完整生效要么毫无痕迹。
// 整个调用在房间 worker 协程内同步完成，读-验-改之间没有任何
// 挂起点，同房间的两个动作永远看不到彼此的中间状态。
func (r *Room) Apply(userID string, act action.Action) Result {
	p := r.playerByID(userID)
	if p == nil {
		return silent() // 未知 userId，静默丢弃
	}

	switch a := act.(type) {
	case action.DrawCard:
		return r.applyDraw(p, a)
	case action.DiscardCard:
		return r.applyDiscard(p, a)
	case action.PlayCard:
		return r.applyPlay(p, a)
	case action.MoveCard:
		return r.applyMove(p, a)
	case action.ShuffleDeck:
		return r.applyShuffle(p, a)
	case action.SearchDeck:
		return r.applySearch(p, a)
	case action.ModifyStat:
		return r.applyModifyStat(p, a)
	case action.ModifyCard:
		return r.applyModifyCard(p, a)
	case action.CardNote:
		return r.applyNote(p, a)
	case action.ModifySlots:
		return r.applySlots(p, a)
	case action.CopyCard:
		return r.applyCopy(p, a)
	case action.RemoveCard:
		return r.applyRemove(p, a)
	case action.DisplayHand:
		return r.applyDisplay(p, a)
	case action.RollDice:
		return r.applyRoll(p, a)
	case action.EndTurn:
		return r.applyEndTurn(p, a)
	case action.RestartRequest:
		return r.applyRestart(p, a)
	}
	return silent()
}

// applyDraw 从牌库抽牌
func (r *Room) applyDraw(p *Player, a action.DrawCard) Result {
	count := a.Count
	if count == 0 {
		count = 1
	}
	drawn := p.draw(count)
	if drawn == 0 {
		return refused(p, a.ActionTag(), fmt.Sprintf("%s 的牌库已经空了", p.Username))
	}
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 抽了 %d 张牌", p.Username, drawn), nil)
}

// applyDiscard 手牌弃入墓地
func (r *Room) applyDiscard(p *Player, a action.DiscardCard) Result {
	c, ok := p.Hand.RemoveAt(a.Index)
	if !ok {
		return silent()
	}
	p.Graveyard = append(p.Graveyard, c)
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 弃置了「%s」", p.Username, c.Name), c)
}

// applyPlay 打出手牌到战场或效果区
//
// 费用以客户端声明为准（万能费用跳过校验），法力在同一次
// 调用内扣除，放置与扣费之间没有让出点。
func (r *Room) applyPlay(p *Player, a action.PlayCard) Result {
	c := p.Hand.At(a.HandIndex)
	if c == nil {
		return silent()
	}

	slots, slotCount := p.slotZone(a.Zone)
	if slots == nil {
		return silent()
	}
	if a.Slot < 0 || a.Slot >= slotCount {
		return silent()
	}

	cost := a.Cost
	if cost != card.WildcardCost && cost > p.Mana {
		return refused(p, a.ActionTag(), fmt.Sprintf("%s 法力不足，无法打出「%s」", p.Username, c.Name))
	}

	if slots.Occupied(a.Slot) {
		return refused(p, a.ActionTag(), fmt.Sprintf("%s 的目标格子已有卡牌", p.Username))
	}

	// 校验全部通过，开始变更
	p.Hand.RemoveAt(a.HandIndex)
	slots.Place(a.Slot, c)
	if cost != card.WildcardCost {
		p.Mana -= cost
	}

	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 打出了「%s」", p.Username, c.Name), c)
}

// applyMove 区域内或跨区域移动
//
// 密集目标按插入方式落位（头部/尾部/随机洗入），格子目标按
// 显式下标放置，占用即拒绝（目标与来源相同除外）。
func (r *Room) applyMove(p *Player, a action.MoveCard) Result {
	// 先取出来源的牌，但占用检查通过前不真正移除
	var moving *card.Card
	if l := p.denseZone(a.FromZone); l != nil {
		moving = l.At(a.FromIndex)
	} else if s, _ := p.slotZone(a.FromZone); s != nil {
		moving = s.At(a.FromIndex)
	}
	if moving == nil {
		return silent()
	}

	if a.ToZone.IsSlotted() {
		slots, slotCount := p.slotZone(a.ToZone)
		if a.ToIndex < 0 || a.ToIndex >= slotCount {
			return silent()
		}
		if target := slots.At(a.ToIndex); target != nil {
			if target == moving {
				return silent() // 原地移动，无操作
			}
			return refused(p, a.ActionTag(), fmt.Sprintf("%s 的目标格子已有卡牌", p.Username))
		}
		r.detachCard(p, a.FromZone, a.FromIndex)
		slots.Place(a.ToIndex, moving)
	} else {
		r.detachCard(p, a.FromZone, a.FromIndex)
		mode := a.Mode
		if mode == "" {
			mode = zone.InsertBottom
		}
		p.denseZone(a.ToZone).Insert(moving, mode, r.rng)
	}

	msg := fmt.Sprintf("%s 将「%s」从%s移到%s", p.Username, moving.Name, zoneLabel(a.FromZone), zoneLabel(a.ToZone))
	return r.success(p, a.ActionTag(), msg, moving)
}

// detachCard 从来源区域取走一张牌，密集拼接，格子清空
func (r *Room) detachCard(p *Player, name zone.Name, i int) {
	if l := p.denseZone(name); l != nil {
		l.RemoveAt(i)
		return
	}
	if s, _ := p.slotZone(name); s != nil {
		s.ClearAt(i)
	}
}

// applyShuffle 洗牌库
func (r *Room) applyShuffle(p *Player, a action.ShuffleDeck) Result {
	p.Deck.Shuffle(r.rng)
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 洗了牌库", p.Username), nil)
}

// applySearch 检索牌库，内容只回给检索者（私有通道，不广播）
func (r *Room) applySearch(p *Player, a action.SearchDeck) Result {
	private := protocol.MustNewMessage(protocol.MsgDeckContents, protocol.DeckContentsPayload{
		Cards: p.Deck,
	})
	res := r.success(p, a.ActionTag(), fmt.Sprintf("%s 检索了牌库", p.Username), nil)
	res.Private = private
	return res
}

// applyModifyStat 修改玩家数值
//
// 数值不允许为负；章节指示物统一封顶；其余上不设限，
// 手动把法力上限拉过 10 是合法的沙盒操作（见回合推进）。
func (r *Room) applyModifyStat(p *Player, a action.ModifyStat) Result {
	v := a.Value
	if v < 0 {
		v = 0
	}

	switch a.Stat {
	case action.StatHealth:
		p.Health = v
	case action.StatMaxHealth:
		p.MaxHealth = v
	case action.StatMana:
		p.Mana = v
	case action.StatMaxMana:
		p.MaxMana = v
	case action.StatChapterProgress:
		p.ChapterProgress = v
	case action.StatMaxChapterProgress:
		p.MaxChapterProgress = v
	case action.StatChapterTokens:
		if v > chapterTokenCap {
			v = chapterTokenCap
		}
		p.ChapterTokens = v
	default:
		return silent()
	}

	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 将 %s 调整为 %d", p.Username, statLabel(a.Stat), v), nil)
}

// applyModifyCard 修改卡牌攻防叠加
func (r *Room) applyModifyCard(p *Player, a action.ModifyCard) Result {
	c := p.cardAt(a.Zone, a.Index)
	if c == nil {
		return silent()
	}

	if a.Reset {
		c.ResetStats()
		return r.success(p, a.ActionTag(), fmt.Sprintf("%s 恢复了「%s」的数值", p.Username, c.Name), c)
	}

	c.SetStats(a.Attack, a.Health)
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 修改了「%s」的数值", p.Username, c.Name), c)
}

// applyNote 设置卡牌备注
func (r *Room) applyNote(p *Player, a action.CardNote) Result {
	c := p.cardAt(a.Zone, a.Index)
	if c == nil {
		return silent()
	}
	c.Note = a.Note

	if a.Note == "" {
		return r.success(p, a.ActionTag(), fmt.Sprintf("%s 清除了「%s」的备注", p.Username, c.Name), c)
	}
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 给「%s」加了备注", p.Username, c.Name), c)
}

// applySlots 调整格子数量
//
// 只改放置上限，数组本身从不收缩，已越界的牌留在原格子。
func (r *Room) applySlots(p *Player, a action.ModifySlots) Result {
	switch a.Zone {
	case zone.Battlefield:
		p.BattlefieldSlots = a.Count
	case zone.Effect:
		p.EffectSlots = a.Count
	default:
		return silent()
	}
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 将%s格子数调整为 %d", p.Username, zoneLabel(a.Zone), a.Count), nil)
}

// applyCopy 复制一张牌
//
// 密集区域副本插在原牌之后；格子区域副本落到第一个空格，
// 放置范围内没有空格时拒绝。
func (r *Room) applyCopy(p *Player, a action.CopyCard) Result {
	if l := p.denseZone(a.Zone); l != nil {
		c := l.At(a.Index)
		if c == nil {
			return silent()
		}
		dup := c.Clone()
		*l = append(*l, nil)
		copy((*l)[a.Index+2:], (*l)[a.Index+1:])
		(*l)[a.Index+1] = dup
		return r.success(p, a.ActionTag(), fmt.Sprintf("%s 复制了「%s」", p.Username, c.Name), dup)
	}

	slots, slotCount := p.slotZone(a.Zone)
	if slots == nil {
		return silent()
	}
	c := slots.At(a.Index)
	if c == nil {
		return silent()
	}

	target := -1
	for i := 0; i < slotCount; i++ {
		if !slots.Occupied(i) {
			target = i
			break
		}
	}
	if target < 0 {
		return refused(p, a.ActionTag(), fmt.Sprintf("%s 的%s没有空格子放副本", p.Username, zoneLabel(a.Zone)))
	}

	dup := c.Clone()
	slots.Place(target, dup)
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 复制了「%s」", p.Username, c.Name), dup)
}

// applyRemove 从区域移除一张牌（移出对局，不进墓地）
func (r *Room) applyRemove(p *Player, a action.RemoveCard) Result {
	var removed *card.Card
	if l := p.denseZone(a.Zone); l != nil {
		removed, _ = l.RemoveAt(a.Index)
	} else if s, _ := p.slotZone(a.Zone); s != nil {
		removed, _ = s.ClearAt(a.Index)
	}
	if removed == nil {
		return silent()
	}
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 移除了「%s」", p.Username, removed.Name), removed)
}

// applyDisplay 亮出或收起手牌
func (r *Room) applyDisplay(p *Player, a action.DisplayHand) Result {
	p.DisplayedHand = a.Shown
	if a.Shown {
		return r.success(p, a.ActionTag(), fmt.Sprintf("%s 亮出了手牌", p.Username), nil)
	}
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 收起了手牌", p.Username), nil)
}

// applyRoll 掷骰
func (r *Room) applyRoll(p *Player, a action.RollDice) Result {
	n := r.rng.Intn(a.Sides) + 1
	return r.success(p, a.ActionTag(), fmt.Sprintf("%s 掷出了 %d 点（d%d）", p.Username, n, a.Sides), nil)
}

// zoneLabel 区域的展示名称
func zoneLabel(name zone.Name) string {
	switch name {
	case zone.Hand:
		return "手牌"
	case zone.Deck:
		return "牌库"
	case zone.Graveyard:
		return "墓地"
	case zone.Battlefield:
		return "战场"
	case zone.Effect:
		return "效果区"
	}
	return string(name)
}

// statLabel 数值的展示名称
func statLabel(stat string) string {
	switch stat {
	case action.StatHealth:
		return "生命"
	case action.StatMaxHealth:
		return "生命上限"
	case action.StatMana:
		return "法力"
	case action.StatMaxMana:
		return "法力上限"
	case action.StatChapterProgress:
		return "章节进度"
	case action.StatMaxChapterProgress:
		return "章节上限"
	case action.StatChapterTokens:
		return "章节指示物"
	}
	return stat
}
