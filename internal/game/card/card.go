package card

import "github.com/google/uuid"

// WildcardCost 客户端声明的万能费用，跳过法力校验
const WildcardCost = -1

// Card 一张牌的运行时实例
//
// 图鉴字段（名称、费用、攻防、效果）由客户端声明，服务端原样信任；
// 叠加字段（modified_*、note、cost_override）是对局中产生的实例级修改。
// InstanceID 区分同名卡的多个实例，复制牌时必须重新生成。
type Card struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	Cost       int    `json:"cost"`
	Attack     int    `json:"attack"`
	Health     int    `json:"health"`
	Effect     string `json:"effect,omitempty"`
	Faction    string `json:"faction,omitempty"`

	ModifiedAttack *int   `json:"modified_attack,omitempty"`
	ModifiedHealth *int   `json:"modified_health,omitempty"`
	OriginalAttack *int   `json:"original_attack,omitempty"`
	OriginalHealth *int   `json:"original_health,omitempty"`
	CostOverride   *int   `json:"cost_override,omitempty"`
	Note           string `json:"note,omitempty"`
}

// New 创建一张新实例
func New(name string, cost, attack, health int, effect, faction string) *Card {
	return &Card{
		InstanceID: uuid.New().String(),
		Name:       name,
		Cost:       cost,
		Attack:     attack,
		Health:     health,
		Effect:     effect,
		Faction:    faction,
	}
}

// EnsureInstanceID 补齐缺失的实例 ID（客户端声明的牌可能没带）
func (c *Card) EnsureInstanceID() {
	if c.InstanceID == "" {
		c.InstanceID = uuid.New().String()
	}
}

// EffectiveCost 返回当前生效的费用
func (c *Card) EffectiveCost() int {
	if c.CostOverride != nil {
		return *c.CostOverride
	}
	return c.Cost
}

// Clone 复制一张牌，叠加字段一并复制，实例 ID 重新生成
func (c *Card) Clone() *Card {
	dup := *c
	dup.InstanceID = uuid.New().String()
	dup.ModifiedAttack = cloneInt(c.ModifiedAttack)
	dup.ModifiedHealth = cloneInt(c.ModifiedHealth)
	dup.OriginalAttack = cloneInt(c.OriginalAttack)
	dup.OriginalHealth = cloneInt(c.OriginalHealth)
	dup.CostOverride = cloneInt(c.CostOverride)
	return &dup
}

// SetStats 覆盖攻防，首次修改时记录原值
func (c *Card) SetStats(attack, health *int) {
	if attack != nil {
		if c.OriginalAttack == nil {
			orig := c.Attack
			c.OriginalAttack = &orig
		}
		c.ModifiedAttack = cloneInt(attack)
	}
	if health != nil {
		if c.OriginalHealth == nil {
			orig := c.Health
			c.OriginalHealth = &orig
		}
		c.ModifiedHealth = cloneInt(health)
	}
}

// ResetStats 清除攻防叠加，恢复图鉴数值
func (c *Card) ResetStats() {
	c.ModifiedAttack = nil
	c.ModifiedHealth = nil
	c.OriginalAttack = nil
	c.OriginalHealth = nil
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	dup := *v
	return &dup
}
