package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/game/zone"
	"github.com/palemoky/card-duel/internal/network/protocol"
)

// totalCards 玩家所有区域的卡牌总数
func totalCards(p *Player) int {
	return p.Hand.Len() + p.Deck.Len() + p.Graveyard.Len() +
		p.Battlefield.Count() + p.EffectZone.Count()
}

func TestApply_UnknownUserIsSilent(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 10)
	res := r.Apply("ghost", action.DrawCard{Count: 1})
	assert.False(t, res.Mutated)
	assert.Empty(t, res.Broadcast)
}

// --- 抽牌 / 弃牌 ---

func TestDraw_DefaultsToOne(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	hand, deck := alice.Hand.Len(), alice.Deck.Len()

	res := r.Apply("u1", action.DrawCard{})
	require.True(t, res.Mutated)
	assert.Equal(t, hand+1, alice.Hand.Len())
	assert.Equal(t, deck-1, alice.Deck.Len())
}

func TestDraw_EmptyDeckRefusedWithExplanation(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 10)
	alice := r.playerByID("u1")
	alice.Deck = alice.Deck[:0]
	logBefore := len(r.Log)

	res := r.Apply("u1", action.DrawCard{Count: 1})
	assert.False(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast) // 解释性失败要下发，但不进日志
	assert.Len(t, r.Log, logBefore)
}

func TestDraw_ClearsFirstDrawHint(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	first := r.Players[r.Match.FirstPlayer]
	require.True(t, first.FirstDrawHint)

	r.Apply(first.UserID, action.DrawCard{Count: 1})
	assert.False(t, first.FirstDrawHint)
}

func TestDiscard_MovesToGraveyard(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	c := alice.Hand.At(0)
	before := totalCards(alice)

	res := r.Apply("u1", action.DiscardCard{Index: 0})
	require.True(t, res.Mutated)
	assert.Same(t, c, res.Card)
	assert.Same(t, c, alice.Graveyard.At(alice.Graveyard.Len()-1))
	assert.Equal(t, before, totalCards(alice)) // 总量守恒
}

func TestDiscard_OutOfRangeIsSilent(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	res := r.Apply("u1", action.DiscardCard{Index: 99})
	assert.False(t, res.Mutated)
	assert.Empty(t, res.Broadcast)
}

// --- 打出卡牌 ---

func TestPlay_DeductsManaAndConserves(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 5
	c := alice.Hand.At(0)
	before := totalCards(alice)

	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 1, Cost: 3})
	require.True(t, res.Mutated)
	assert.Equal(t, 2, alice.Mana)
	assert.Same(t, c, alice.Battlefield.At(1))
	assert.Equal(t, before, totalCards(alice))
}

func TestPlay_InsufficientManaIsCompleteNoop(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 1
	hand := alice.Hand.Len()

	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 4})
	assert.False(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast)
	assert.Equal(t, hand, alice.Hand.Len())
	assert.Equal(t, 1, alice.Mana)
	assert.Equal(t, 0, alice.Battlefield.Count())
}

func TestPlay_WildcardCostSkipsManaCheck(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 0

	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: card.WildcardCost})
	require.True(t, res.Mutated)
	assert.Equal(t, 0, alice.Mana)
	assert.NotNil(t, alice.Battlefield.At(0))
}

func TestPlay_OccupiedSlotRefused(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)

	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1})
	assert.False(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast)
	assert.Equal(t, 9, alice.Mana) // 第二次没有扣费
}

func TestPlay_SlotBeyondCapIsSilent(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10

	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: alice.BattlefieldSlots, Cost: 1})
	assert.False(t, res.Mutated)
	assert.Empty(t, res.Broadcast)
}

// --- 格子位置稳定性 ---

func TestSlots_RemovalDoesNotShiftNeighbors(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 1, Cost: 1}).Mutated)
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 3, Cost: 1}).Mutated)
	atThree := alice.Battlefield.At(3)

	res := r.Apply("u1", action.RemoveCard{Zone: zone.Battlefield, Index: 1})
	require.True(t, res.Mutated)

	assert.Nil(t, alice.Battlefield.At(1))
	assert.Same(t, atThree, alice.Battlefield.At(3)) // 邻位不塌缩
}

// --- 移动 ---

func TestMove_SlotToSlot(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)
	c := alice.Battlefield.At(0)

	res := r.Apply("u1", action.MoveCard{FromZone: zone.Battlefield, FromIndex: 0, ToZone: zone.Effect, ToIndex: 2})
	require.True(t, res.Mutated)
	assert.Nil(t, alice.Battlefield.At(0))
	assert.Same(t, c, alice.EffectZone.At(2))
}

func TestMove_OccupiedTargetRefused(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 1, Cost: 1}).Mutated)
	a, b := alice.Battlefield.At(0), alice.Battlefield.At(1)

	res := r.Apply("u1", action.MoveCard{FromZone: zone.Battlefield, FromIndex: 0, ToZone: zone.Battlefield, ToIndex: 1})
	assert.False(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast)
	assert.Same(t, a, alice.Battlefield.At(0))
	assert.Same(t, b, alice.Battlefield.At(1))
}

func TestMove_SameSlotIsSilentNoop(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 10
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)
	c := alice.Battlefield.At(0)

	res := r.Apply("u1", action.MoveCard{FromZone: zone.Battlefield, FromIndex: 0, ToZone: zone.Battlefield, ToIndex: 0})
	assert.False(t, res.Mutated)
	assert.Empty(t, res.Broadcast)
	assert.Same(t, c, alice.Battlefield.At(0))
}

func TestMove_ToDenseTop(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	c := alice.Hand.At(2)
	before := totalCards(alice)

	res := r.Apply("u1", action.MoveCard{
		FromZone: zone.Hand, FromIndex: 2,
		ToZone: zone.Deck, Mode: zone.InsertTop,
	})
	require.True(t, res.Mutated)
	assert.Same(t, c, alice.Deck.At(0))
	assert.Equal(t, before, totalCards(alice))
}

func TestMove_ToDenseDefaultsToBottom(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	c := alice.Hand.At(0)

	res := r.Apply("u1", action.MoveCard{FromZone: zone.Hand, FromIndex: 0, ToZone: zone.Graveyard})
	require.True(t, res.Mutated)
	assert.Same(t, c, alice.Graveyard.At(alice.Graveyard.Len()-1))
}

// --- 洗牌 / 检索 ---

func TestShuffle_PreservesCount(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 30)
	alice := r.playerByID("u1")
	deck := alice.Deck.Len()

	res := r.Apply("u1", action.ShuffleDeck{})
	require.True(t, res.Mutated)
	assert.Equal(t, deck, alice.Deck.Len())
}

func TestSearch_ContentsArePrivate(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	res := r.Apply("u1", action.SearchDeck{})
	require.True(t, res.Mutated)
	require.NotNil(t, res.Private)
	assert.Equal(t, protocol.MsgDeckContents, res.Private.Type)

	payload, err := protocol.ParsePayload[protocol.DeckContentsPayload](res.Private)
	require.NoError(t, err)
	assert.Equal(t, r.playerByID("u1").Deck.Len(), len(payload.Cards))
}

// --- 数值修改 ---

func TestModifyStat_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		act  action.ModifyStat
		get  func(p *Player) int
		want int
	}{
		{"生命", action.ModifyStat{Stat: action.StatHealth, Value: 18}, func(p *Player) int { return p.Health }, 18},
		{"负值钳到零", action.ModifyStat{Stat: action.StatHealth, Value: -7}, func(p *Player) int { return p.Health }, 0},
		{"法力上限超过 10 合法", action.ModifyStat{Stat: action.StatMaxMana, Value: 15}, func(p *Player) int { return p.MaxMana }, 15},
		{"章节指示物封顶", action.ModifyStat{Stat: action.StatChapterTokens, Value: 9}, func(p *Player) int { return p.ChapterTokens }, 3},
		{"章节进度", action.ModifyStat{Stat: action.StatChapterProgress, Value: 2}, func(p *Player) int { return p.ChapterProgress }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPlayingRoom(t, 10)
			res := r.Apply("u1", tt.act)
			require.True(t, res.Mutated)
			assert.Equal(t, tt.want, tt.get(r.playerByID("u1")))
		})
	}
}

func TestModifyStat_UnknownStatIsSilent(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 10)
	res := r.Apply("u1", action.ModifyStat{Stat: "charisma", Value: 5})
	assert.False(t, res.Mutated)
}

// --- 卡牌修改 ---

func TestModifyCard_SetAndReset(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	c := alice.Hand.At(0)
	origAtk, origHP := c.Attack, c.Health

	atk, hp := 7, 9
	require.True(t, r.Apply("u1", action.ModifyCard{Zone: zone.Hand, Index: 0, Attack: &atk, Health: &hp}).Mutated)
	require.NotNil(t, c.ModifiedAttack)
	assert.Equal(t, 7, *c.ModifiedAttack)
	assert.Equal(t, 9, *c.ModifiedHealth)

	require.True(t, r.Apply("u1", action.ModifyCard{Zone: zone.Hand, Index: 0, Reset: true}).Mutated)
	assert.Nil(t, c.ModifiedAttack)
	assert.Nil(t, c.ModifiedHealth)
	assert.Equal(t, origAtk, c.Attack)
	assert.Equal(t, origHP, c.Health)
}

func TestCardNote_SetAndClear(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	c := alice.Hand.At(1)

	require.True(t, r.Apply("u1", action.CardNote{Zone: zone.Hand, Index: 1, Note: "下回合献祭"}).Mutated)
	assert.Equal(t, "下回合献祭", c.Note)

	require.True(t, r.Apply("u1", action.CardNote{Zone: zone.Hand, Index: 1, Note: ""}).Mutated)
	assert.Empty(t, c.Note)
}

// --- 格子数量 ---

func TestModifySlots_CapsPlacementOnly(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 20
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 4, Cost: 1}).Mutated)
	atFour := alice.Battlefield.At(4)

	// 缩到 2：越界的牌留在原格子
	require.True(t, r.Apply("u1", action.ModifySlots{Zone: zone.Battlefield, Count: 2}).Mutated)
	assert.Equal(t, 2, alice.BattlefieldSlots)
	assert.Same(t, atFour, alice.Battlefield.At(4))

	// 新的放置受上限约束
	res := r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 3, Cost: 1})
	assert.False(t, res.Mutated)

	// 扩回去又可以放了
	require.True(t, r.Apply("u1", action.ModifySlots{Zone: zone.Battlefield, Count: 8}).Mutated)
	assert.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 7, Cost: 1}).Mutated)
}

// --- 复制 ---

func TestCopy_DenseInsertsAfterOriginal(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	orig := alice.Hand.At(1)
	next := alice.Hand.At(2)
	before := alice.Hand.Len()

	res := r.Apply("u1", action.CopyCard{Zone: zone.Hand, Index: 1})
	require.True(t, res.Mutated)
	assert.Equal(t, before+1, alice.Hand.Len())

	dup := alice.Hand.At(2)
	assert.Equal(t, orig.Name, dup.Name)
	assert.NotEqual(t, orig.InstanceID, dup.InstanceID)
	assert.Same(t, next, alice.Hand.At(3)) // 后续的牌整体后移一位
}

func TestCopy_SlotUsesFirstFreeSlot(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 20
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 1, Cost: 1}).Mutated)

	res := r.Apply("u1", action.CopyCard{Zone: zone.Battlefield, Index: 0})
	require.True(t, res.Mutated)
	require.NotNil(t, alice.Battlefield.At(2))
	assert.Equal(t, alice.Battlefield.At(0).Name, alice.Battlefield.At(2).Name)
}

func TestCopy_FullSlotsRefused(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	alice.Mana = 20
	require.True(t, r.Apply("u1", action.ModifySlots{Zone: zone.Battlefield, Count: 2}).Mutated)
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 0, Cost: 1}).Mutated)
	require.True(t, r.Apply("u1", action.PlayCard{HandIndex: 0, Zone: zone.Battlefield, Slot: 1, Cost: 1}).Mutated)

	res := r.Apply("u1", action.CopyCard{Zone: zone.Battlefield, Index: 0})
	assert.False(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast)
	assert.Equal(t, 2, alice.Battlefield.Count())
}

// --- 移除 / 亮手牌 / 掷骰 ---

func TestRemove_LeavesTheGame(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")
	before := totalCards(alice)

	res := r.Apply("u1", action.RemoveCard{Zone: zone.Hand, Index: 0})
	require.True(t, res.Mutated)
	assert.Equal(t, before-1, totalCards(alice))
	assert.Equal(t, 0, alice.Graveyard.Len()) // 不进墓地
}

func TestDisplayHand_Toggle(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 20)
	alice := r.playerByID("u1")

	require.True(t, r.Apply("u1", action.DisplayHand{Shown: true}).Mutated)
	assert.True(t, alice.DisplayedHand)
	require.True(t, r.Apply("u1", action.DisplayHand{Shown: false}).Mutated)
	assert.False(t, alice.DisplayedHand)
}

func TestRollDice_ResultInBroadcast(t *testing.T) {
	t.Parallel()

	r := newPlayingRoom(t, 10)
	res := r.Apply("u1", action.RollDice{Sides: 20})
	require.True(t, res.Mutated)
	assert.NotEmpty(t, res.Broadcast)
	assert.Contains(t, res.Broadcast, "d20")
}
