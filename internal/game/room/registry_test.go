package room

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-duel/internal/storage"
)

func newTestRegistry(t *testing.T) (*Registry, *storage.RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := storage.NewRedisStore(client, time.Hour)
	writer := storage.NewRoomWriter(store, 16)
	t.Cleanup(writer.Close)

	return NewRegistry(store, writer, 100), store
}

func TestRegistry_CreatesOnFirstAccess(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t)
	assert.Equal(t, 0, reg.Count())
	assert.Nil(t, reg.Peek("room-1"))

	w, err := reg.Room(context.Background(), "room-1")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, 1, reg.Count())

	// 再次访问拿到同一个工作者
	again, err := reg.Room(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Same(t, w, again)
	assert.Same(t, w, reg.Peek("room-1"))
}

func TestRegistry_RestoresFromStore(t *testing.T) {
	t.Parallel()

	reg, store := newTestRegistry(t)

	// 预先落一份有两位玩家的房间行，模拟进程重启后的冷启动
	seed := New("room-cold", 100)
	require.NoError(t, seed.BindSeat(SeatA, "u1", "Alice", newFakeConn("c1")))
	require.NoError(t, seed.BindSeat(SeatB, "u2", "Bob", newFakeConn("c2")))
	require.NoError(t, seed.SelectDeck("u1", "Alice", "d1", "暮光轮替", "", "", testDeck(15)))
	require.NoError(t, seed.SelectDeck("u2", "Bob", "d2", "灰烬远征", "", "", testDeck(15)))
	require.NoError(t, store.SaveRoom(context.Background(), seed.ToRow()))

	w, err := reg.Room(context.Background(), "room-cold")
	require.NoError(t, err)

	w.Do(func(r *Room) {
		assert.Equal(t, PhasePlaying, r.Match.Phase)
		assert.True(t, r.Locked)
		require.Len(t, r.Players, 2)
		for _, p := range r.Players {
			assert.Nil(t, p.Conn) // 连接待各自重连后挂回
		}
		assert.Len(t, r.Seats, 2)
	})
}
