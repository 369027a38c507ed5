package action

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/card-duel/internal/game/zone"
)

// Tag 动作标签
type Tag string

const (
	TagDrawCard       Tag = "draw_card"       // 从牌库抽牌到手牌
	TagDiscardCard    Tag = "discard_card"    // 手牌弃入墓地
	TagPlayCard       Tag = "play_card"       // 打出手牌到战场/效果区
	TagMoveCard       Tag = "move_card"       // 区域内或跨区域移动
	TagShuffleDeck    Tag = "shuffle_deck"    // 洗牌库
	TagSearchDeck     Tag = "search_deck"     // 检索牌库（内容仅自己可见）
	TagModifyStat     Tag = "modify_stat"     // 修改玩家数值
	TagModifyCard     Tag = "modify_card"     // 修改卡牌攻防叠加
	TagCardNote       Tag = "card_note"       // 卡牌备注
	TagModifySlots    Tag = "modify_slots"    // 调整格子数量
	TagCopyCard       Tag = "copy_card"       // 复制卡牌
	TagRemoveCard     Tag = "remove_card"     // 移除卡牌
	TagDisplayHand    Tag = "display_hand"    // 亮出/收起手牌
	TagRollDice       Tag = "roll_dice"       // 掷骰
	TagEndTurn        Tag = "end_turn"        // 结束回合
	TagRestartRequest Tag = "restart_request" // 请求重开对局
)

// 可通过 modify_stat 修改的玩家数值
const (
	StatHealth             = "health"
	StatMaxHealth          = "max_health"
	StatMana               = "mana"
	StatMaxMana            = "max_mana"
	StatChapterProgress    = "chapter_progress"
	StatMaxChapterProgress = "max_chapter_progress"
	StatChapterTokens      = "chapter_tokens"
)

// Action 动作联合类型的公共接口
//
// 每个变体携带自己的强类型 payload；Validate 只做与玩家状态无关的
// 结构校验（区域名、数值范围），下标和资源校验在调度器里完成。
type Action interface {
	ActionTag() Tag
	Validate() error
}

// DrawCard 抽牌
type DrawCard struct {
	Count int `json:"count"`
}

func (DrawCard) ActionTag() Tag { return TagDrawCard }

func (a DrawCard) Validate() error {
	if a.Count < 0 {
		return fmt.Errorf("抽牌数不能为负: %d", a.Count)
	}
	return nil
}

// DiscardCard 弃牌
type DiscardCard struct {
	Index int `json:"index"`
}

func (DiscardCard) ActionTag() Tag { return TagDiscardCard }
func (DiscardCard) Validate() error { return nil }

// PlayCard 打出手牌
//
// Cost 是客户端声明的费用，WildcardCost 表示免校验。
type PlayCard struct {
	HandIndex int       `json:"hand_index"`
	Zone      zone.Name `json:"zone"`
	Slot      int       `json:"slot"`
	Cost      int       `json:"cost"`
}

func (PlayCard) ActionTag() Tag { return TagPlayCard }

func (a PlayCard) Validate() error {
	if !a.Zone.IsSlotted() {
		return fmt.Errorf("无效的目标区域: %s", a.Zone)
	}
	return nil
}

// MoveCard 移动卡牌：同区域调整顺序，或跨区域转移
type MoveCard struct {
	FromZone  zone.Name       `json:"from_zone"`
	FromIndex int             `json:"from_index"`
	ToZone    zone.Name       `json:"to_zone"`
	ToIndex   int             `json:"to_index"`
	Mode      zone.InsertMode `json:"mode,omitempty"` // 密集目标的插入方式
}

func (MoveCard) ActionTag() Tag { return TagMoveCard }

func (a MoveCard) Validate() error {
	if !a.FromZone.Valid() {
		return fmt.Errorf("无效的来源区域: %s", a.FromZone)
	}
	if !a.ToZone.Valid() {
		return fmt.Errorf("无效的目标区域: %s", a.ToZone)
	}
	return nil
}

// ShuffleDeck 洗牌库
type ShuffleDeck struct{}

func (ShuffleDeck) ActionTag() Tag { return TagShuffleDeck }
func (ShuffleDeck) Validate() error { return nil }

// SearchDeck 检索牌库，内容只回给检索者
type SearchDeck struct{}

func (SearchDeck) ActionTag() Tag { return TagSearchDeck }
func (SearchDeck) Validate() error { return nil }

// ModifyStat 修改玩家数值
type ModifyStat struct {
	Stat  string `json:"stat"`
	Value int    `json:"value"`
}

func (ModifyStat) ActionTag() Tag { return TagModifyStat }

func (a ModifyStat) Validate() error {
	switch a.Stat {
	case StatHealth, StatMaxHealth, StatMana, StatMaxMana,
		StatChapterProgress, StatMaxChapterProgress, StatChapterTokens:
		return nil
	}
	return fmt.Errorf("未知的数值类型: %s", a.Stat)
}

// ModifyCard 修改卡牌攻防叠加，Reset 为 true 时恢复图鉴数值
type ModifyCard struct {
	Zone   zone.Name `json:"zone"`
	Index  int       `json:"index"`
	Attack *int      `json:"attack,omitempty"`
	Health *int      `json:"health,omitempty"`
	Reset  bool      `json:"reset,omitempty"`
}

func (ModifyCard) ActionTag() Tag { return TagModifyCard }

func (a ModifyCard) Validate() error {
	if !a.Zone.Valid() {
		return fmt.Errorf("无效的区域: %s", a.Zone)
	}
	return nil
}

// CardNote 设置卡牌备注，空字符串清除
type CardNote struct {
	Zone  zone.Name `json:"zone"`
	Index int       `json:"index"`
	Note  string    `json:"note"`
}

func (CardNote) ActionTag() Tag { return TagCardNote }

func (a CardNote) Validate() error {
	if !a.Zone.Valid() {
		return fmt.Errorf("无效的区域: %s", a.Zone)
	}
	return nil
}

// ModifySlots 调整格子区域的格子数
type ModifySlots struct {
	Zone  zone.Name `json:"zone"`
	Count int       `json:"count"`
}

func (ModifySlots) ActionTag() Tag { return TagModifySlots }

func (a ModifySlots) Validate() error {
	if !a.Zone.IsSlotted() {
		return fmt.Errorf("无效的格子区域: %s", a.Zone)
	}
	if a.Count < 1 || a.Count > 10 {
		return fmt.Errorf("格子数必须在 1-10 之间: %d", a.Count)
	}
	return nil
}

// CopyCard 复制一张牌，副本获得新实例 ID
type CopyCard struct {
	Zone  zone.Name `json:"zone"`
	Index int       `json:"index"`
}

func (CopyCard) ActionTag() Tag { return TagCopyCard }

func (a CopyCard) Validate() error {
	if !a.Zone.Valid() {
		return fmt.Errorf("无效的区域: %s", a.Zone)
	}
	return nil
}

// RemoveCard 从区域移除一张牌
type RemoveCard struct {
	Zone  zone.Name `json:"zone"`
	Index int       `json:"index"`
}

func (RemoveCard) ActionTag() Tag { return TagRemoveCard }

func (a RemoveCard) Validate() error {
	if !a.Zone.Valid() {
		return fmt.Errorf("无效的区域: %s", a.Zone)
	}
	return nil
}

// DisplayHand 亮出或收起手牌
type DisplayHand struct {
	Shown bool `json:"shown"`
}

func (DisplayHand) ActionTag() Tag { return TagDisplayHand }
func (DisplayHand) Validate() error { return nil }

// RollDice 掷骰
type RollDice struct {
	Sides int `json:"sides"`
}

func (RollDice) ActionTag() Tag { return TagRollDice }

func (a RollDice) Validate() error {
	if a.Sides < 2 || a.Sides > 1000 {
		return fmt.Errorf("骰子面数必须在 2-1000 之间: %d", a.Sides)
	}
	return nil
}

// EndTurn 结束回合
type EndTurn struct{}

func (EndTurn) ActionTag() Tag { return TagEndTurn }
func (EndTurn) Validate() error { return nil }

// RestartRequest 请求或取消重开对局
type RestartRequest struct {
	Requested bool `json:"requested"`
}

func (RestartRequest) ActionTag() Tag { return TagRestartRequest }
func (RestartRequest) Validate() error { return nil }

// Decode 按标签解码出对应的动作变体并做结构校验
func Decode(tag Tag, data json.RawMessage) (Action, error) {
	var act Action
	switch tag {
	case TagDrawCard:
		act = decodeAs[DrawCard](data)
	case TagDiscardCard:
		act = decodeAs[DiscardCard](data)
	case TagPlayCard:
		act = decodeAs[PlayCard](data)
	case TagMoveCard:
		act = decodeAs[MoveCard](data)
	case TagShuffleDeck:
		act = ShuffleDeck{}
	case TagSearchDeck:
		act = SearchDeck{}
	case TagModifyStat:
		act = decodeAs[ModifyStat](data)
	case TagModifyCard:
		act = decodeAs[ModifyCard](data)
	case TagCardNote:
		act = decodeAs[CardNote](data)
	case TagModifySlots:
		act = decodeAs[ModifySlots](data)
	case TagCopyCard:
		act = decodeAs[CopyCard](data)
	case TagRemoveCard:
		act = decodeAs[RemoveCard](data)
	case TagDisplayHand:
		act = decodeAs[DisplayHand](data)
	case TagRollDice:
		act = decodeAs[RollDice](data)
	case TagEndTurn:
		act = EndTurn{}
	case TagRestartRequest:
		act = decodeAs[RestartRequest](data)
	default:
		return nil, fmt.Errorf("未知的动作标签: %s", tag)
	}

	if act == nil {
		return nil, fmt.Errorf("动作 payload 解析失败: %s", tag)
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}
	return act, nil
}

// decodeAs 解析 payload 到具体变体，失败返回 nil
func decodeAs[T Action](data json.RawMessage) Action {
	var payload T
	if len(data) == 0 {
		return payload
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload
}
