package storage

import (
	"context"
	"log"
	"sync"
	"time"
)

// 单次写入超时
const saveTimeout = 5 * time.Second

// RoomWriter 每房间单写者的持久化队列
//
// 每次变更入队一个带序号的完整快照，由该房间专属的写协程按入队
// 顺序落盘，序号落后的快照直接丢弃。这保证了持久副本不会被先发
// 后至的旧写覆盖；内存状态始终是权威，持久副本只是最终一致的备份。
// 队列满时丢弃最旧的待写快照（最新优先），对全量快照而言是安全的。
type RoomWriter struct {
	store     *RedisStore
	queueSize int

	mu     sync.Mutex
	queues map[string]chan *RoomRow
	closed bool
	wg     sync.WaitGroup
}

// NewRoomWriter 创建持久化写队列
func NewRoomWriter(store *RedisStore, queueSize int) *RoomWriter {
	if queueSize < 1 {
		queueSize = 1
	}
	return &RoomWriter{
		store:     store,
		queueSize: queueSize,
		queues:    make(map[string]chan *RoomRow),
	}
}

// Enqueue 异步提交一份房间快照
//
// 入队全程持锁，与 Close 的关队列互斥，关闭后的提交是无操作。
// 腾位循环不会阻塞（要么写入成功要么丢最旧），持锁不影响吞吐。
func (w *RoomWriter) Enqueue(row *RoomRow) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	q, ok := w.queues[row.RoomID]
	if !ok {
		q = make(chan *RoomRow, w.queueSize)
		w.queues[row.RoomID] = q
		w.wg.Add(1)
		go w.drain(row.RoomID, q)
	}

	for {
		select {
		case q <- row:
			return
		default:
			// 队列满，丢掉最旧的待写快照给新快照腾位
			select {
			case <-q:
			default:
			}
		}
	}
}

// drain 按序落盘单个房间的快照
func (w *RoomWriter) drain(roomID string, q chan *RoomRow) {
	defer w.wg.Done()

	var lastSeq uint64
	for row := range q {
		if row.Seq <= lastSeq && lastSeq != 0 {
			continue // 过期快照
		}
		lastSeq = row.Seq

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := w.store.SaveRoom(ctx, row); err != nil {
			log.Printf("⚠️ 房间 %s 持久化失败 (seq=%d): %v", roomID, row.Seq, err)
		}
		cancel()
	}
}

// Close 关闭所有队列并等待未完成的写入落盘
func (w *RoomWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, q := range w.queues {
		close(q)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
