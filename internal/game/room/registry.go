package room

import (
	"context"
	"log"
	"sync"

	"github.com/palemoky/card-duel/internal/storage"
)

// Registry roomId 到活跃工作者的顶层映射
//
// 房间在进程存活期间从不销毁，进程重启后在首次访问时从
// 持久化存储整体重建（冷启动恢复 = 热内存恢复，同一套数据形态）。
type Registry struct {
	store  *storage.RedisStore
	writer *storage.RoomWriter

	logLimit int

	mu      sync.Mutex
	workers map[string]*Worker
}

// NewRegistry 创建房间注册表
func NewRegistry(store *storage.RedisStore, writer *storage.RoomWriter, logLimit int) *Registry {
	return &Registry{
		store:    store,
		writer:   writer,
		logLimit: logLimit,
		workers:  make(map[string]*Worker),
	}
}

// Room 返回房间的工作者，首次访问时创建
//
// 持久化存储里有数据就整体重建（玩家状态、座位归属、观战名单、
// 对局进度、日志），没有就建一个空房间。
func (reg *Registry) Room(ctx context.Context, roomID string) (*Worker, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if w, ok := reg.workers[roomID]; ok {
		return w, nil
	}

	row, err := reg.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var r *Room
	if row != nil {
		r = FromRow(row, reg.logLimit)
		log.Printf("🧊 房间 %s 已从持久化存储恢复（%d 位玩家）", roomID, len(r.Players))
	} else {
		r = New(roomID, reg.logLimit)
		log.Printf("🏠 房间 %s 已创建", roomID)
	}

	w := newWorker(r, reg.writer)
	reg.workers[roomID] = w
	return w, nil
}

// Peek 返回已存在的工作者，不触发创建和恢复
func (reg *Registry) Peek(roomID string) *Worker {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.workers[roomID]
}

// Count 当前活跃房间数
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.workers)
}
