package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/card-duel/internal/game/card"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"
	deckKeyPrefix = "deck:"
)

// RedisStore Redis 存储
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	return &RedisStore{client: client, expiration: expiration}
}

// --- 房间存储 ---

// SaveRoom 保存房间行
func (rs *RedisStore) SaveRoom(ctx context.Context, row *RoomRow) error {
	row.SavedAt = time.Now().Unix()

	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + row.RoomID
	return rs.client.Set(ctx, key, data, rs.expiration).Err()
}

// LoadRoom 加载房间行，不存在时返回 (nil, nil)
//
// 返回前完成版本迁移，调用方拿到的永远是当前版本的行。
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*RoomRow, error) {
	key := roomKeyPrefix + roomID
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var row RoomRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	row.Migrate()
	return &row, nil
}

// DeleteRoom 删除房间行
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// --- 卡组存储 ---
//
// 卡组的编辑和目录管理在别的服务，这里只做查询网关：
// select_deck 没带牌表时按 deck_id 补全。

// SaveDeck 保存卡组牌表
func (rs *RedisStore) SaveDeck(ctx context.Context, deckID string, cards []*card.Card) error {
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("序列化卡组失败: %w", err)
	}
	return rs.client.Set(ctx, deckKeyPrefix+deckID, data, 0).Err()
}

// LoadDeck 加载卡组牌表，不存在时返回 (nil, nil)
func (rs *RedisStore) LoadDeck(ctx context.Context, deckID string) ([]*card.Card, error) {
	data, err := rs.client.Get(ctx, deckKeyPrefix+deckID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cards []*card.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("反序列化卡组失败: %w", err)
	}
	return cards, nil
}
