package zone

import (
	"math/rand"

	"github.com/palemoky/card-duel/internal/game/card"
)

// Name 区域名称
type Name string

const (
	Hand        Name = "hand"
	Deck        Name = "deck"
	Graveyard   Name = "graveyard"
	Battlefield Name = "battlefield"
	Effect      Name = "effect"
)

// IsDense 是否为密集列表区域（删除后后续下标前移）
func (n Name) IsDense() bool {
	switch n {
	case Hand, Deck, Graveyard:
		return true
	}
	return false
}

// IsSlotted 是否为格子区域（删除后保留空位）
func (n Name) IsSlotted() bool {
	switch n {
	case Battlefield, Effect:
		return true
	}
	return false
}

// Valid 是否为已知区域
func (n Name) Valid() bool {
	return n.IsDense() || n.IsSlotted()
}

// InsertMode 密集列表的插入方式
type InsertMode string

const (
	InsertTop    InsertMode = "top"    // 列表头部
	InsertBottom InsertMode = "bottom" // 列表尾部
	InsertRandom InsertMode = "random" // 均匀随机位置（洗入）
)

// List 密集列表区域：手牌、牌库、墓地
//
// 删除按下标拼接，后续元素前移；插入支持头部、尾部和随机洗入。
type List []*card.Card

// Len 返回列表长度
func (l List) Len() int { return len(l) }

// At 返回下标处的牌，越界返回 nil
func (l List) At(i int) *card.Card {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

// RemoveAt 删除并返回下标处的牌
func (l *List) RemoveAt(i int) (*card.Card, bool) {
	if i < 0 || i >= len(*l) {
		return nil, false
	}
	c := (*l)[i]
	*l = append((*l)[:i], (*l)[i+1:]...)
	return c, true
}

// PopFront 移除并返回第一张牌（抽牌），空列表返回 nil
func (l *List) PopFront() *card.Card {
	if len(*l) == 0 {
		return nil
	}
	c := (*l)[0]
	*l = (*l)[1:]
	return c
}

// Insert 按插入方式放入一张牌，返回实际落点下标
func (l *List) Insert(c *card.Card, mode InsertMode, rng *rand.Rand) int {
	switch mode {
	case InsertTop:
		*l = append(List{c}, *l...)
		return 0
	case InsertRandom:
		i := 0
		if len(*l) > 0 {
			i = rng.Intn(len(*l) + 1)
		}
		*l = append(*l, nil)
		copy((*l)[i+1:], (*l)[i:])
		(*l)[i] = c
		return i
	default: // InsertBottom
		*l = append(*l, c)
		return len(*l) - 1
	}
}

// Shuffle 原地洗匀整个列表
func (l List) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(l), func(i, j int) {
		l[i], l[j] = l[j], l[i]
	})
}

// Slots 格子区域：战场、效果区
//
// 空位用 nil 表示。删除只清空格子，绝不拼接，这样其他客户端
// 持有的位置引用在并发操作下仍然有效。数组按需增长，从不收缩。
type Slots []*card.Card

// At 返回格子里的牌，越界或空位返回 nil
func (s Slots) At(i int) *card.Card {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Occupied 格子是否有牌
func (s Slots) Occupied(i int) bool {
	return s.At(i) != nil
}

// Count 返回非空格子数量
func (s Slots) Count() int {
	n := 0
	for _, c := range s {
		if c != nil {
			n++
		}
	}
	return n
}

// Place 把牌放进指定格子，数组不足时用空位补齐
//
// 目标格子已有其他牌时放置失败；目标就是这张牌本身时视为无操作。
func (s *Slots) Place(i int, c *card.Card) bool {
	if i < 0 {
		return false
	}
	s.grow(i + 1)
	if occupant := (*s)[i]; occupant != nil {
		return occupant == c
	}
	(*s)[i] = c
	return true
}

// ClearAt 清空格子并返回原来的牌，格子本身保留
func (s *Slots) ClearAt(i int) (*card.Card, bool) {
	if i < 0 || i >= len(*s) || (*s)[i] == nil {
		return nil, false
	}
	c := (*s)[i]
	(*s)[i] = nil
	return c, true
}

// grow 扩展到至少 n 个格子
func (s *Slots) grow(n int) {
	for len(*s) < n {
		*s = append(*s, nil)
	}
}
