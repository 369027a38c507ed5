package room

import (
	"log"
	"time"

	"github.com/palemoky/card-duel/internal/game/action"
	"github.com/palemoky/card-duel/internal/game/card"
	"github.com/palemoky/card-duel/internal/network/protocol"
	"github.com/palemoky/card-duel/internal/storage"
)

// 收件箱长度，满了之后提交方阻塞等待排队
const inboxSize = 64

// Worker 房间的专属工作者
//
// 房间状态只属于这一个协程：所有变更请求以闭包形式排进收件箱，
// 逐个执行，单写者不变量不依赖运行时的调度假设。持久化和广播
// 都发生在变更完成之后，绝不反过来阻塞后续请求。
type Worker struct {
	room   *Room
	inbox  chan task
	writer *storage.RoomWriter
}

type task struct {
	fn   func(r *Room)
	done chan struct{}
}

// newWorker 创建并启动房间工作者
func newWorker(r *Room, writer *storage.RoomWriter) *Worker {
	w := &Worker{
		room:   r,
		inbox:  make(chan task, inboxSize),
		writer: writer,
	}
	go w.run()
	return w
}

// run 串行执行收件箱里的请求
func (w *Worker) run() {
	for t := range w.inbox {
		t.fn(w.room)
		close(t.done)
	}
}

// Do 在房间协程内同步执行一个闭包
func (w *Worker) Do(fn func(r *Room)) {
	done := make(chan struct{})
	w.inbox <- task{fn: fn, done: done}
	<-done
}

// persist 提交一份快照到持久化队列（异步，绝不阻塞房间协程）
func (w *Worker) persist(r *Room) {
	w.writer.Enqueue(r.ToRow())
}

// --- 入站操作的编排：变更 → 广播 → 持久化 ---

// Join 处理 socket 加入
func (w *Worker) Join(conn Conn, userID, username string, spectate bool) {
	w.Do(func(r *Room) {
		res := r.Join(conn, userID, username, spectate)

		switch {
		case res.Spectator:
			log.Printf("👁️ 观战者 %s 加入房间 %s", username, r.ID)
		case res.Seated:
			log.Printf("📶 玩家 %s 重连到房间 %s", username, r.ID)
		default:
			// 生面孔：先看座位情况，显式绑定后才算入座
			conn.Send(r.Positions())
		}

		conn.Send(r.Snapshot())
		if res.Seated || res.Spectator {
			r.Broadcast(r.Snapshot())
			w.persist(r)
		}
	})
}

// BindSeat 绑定座位
func (w *Worker) BindSeat(conn Conn, seat, userID, username string) error {
	var err error
	w.Do(func(r *Room) {
		err = r.BindSeat(seat, userID, username, conn)
		if err != nil {
			return
		}
		log.Printf("💺 玩家 %s 绑定了房间 %s 的座位 %s", username, r.ID, seat)
		r.Broadcast(r.Snapshot())
		w.persist(r)
	})
	return err
}

// SelectDeck 选择卡组，可能触发开局
func (w *Worker) SelectDeck(userID, username, deckID, deckName, hero, champion string, cards []*card.Card) {
	w.Do(func(r *Room) {
		phaseBefore := r.Match.Phase
		if err := r.SelectDeck(userID, username, deckID, deckName, hero, champion, cards); err != nil {
			return
		}
		if phaseBefore != r.Match.Phase {
			log.Printf("⚔️ 房间 %s 对局开始", r.ID)
		}
		r.Broadcast(r.Snapshot())
		w.persist(r)
	})
}

// Dispatch 调度一个对局动作
func (w *Worker) Dispatch(userID string, act action.Action) {
	w.Do(func(r *Room) {
		res := r.Apply(userID, act)

		if res.Private != nil {
			if p := r.playerByID(userID); p != nil && p.Conn != nil {
				p.Conn.Send(res.Private)
			}
		}

		if res.Mutated {
			r.Broadcast(protocol.MustNewMessage(protocol.MsgLogEvent, protocol.LogEventPayload{
				Message:  res.Broadcast,
				Actor:    res.Actor,
				Tag:      string(res.Tag),
				Card:     res.Card,
				UnixMill: time.Now().UnixMilli(),
			}))
			r.Broadcast(r.Snapshot())
			w.persist(r)
			return
		}

		// 解释性失败也走同一条下行通道，但不入日志、不持久化
		if res.Broadcast != "" {
			r.Broadcast(protocol.MustNewMessage(protocol.MsgLogEvent, protocol.LogEventPayload{
				Message:  res.Broadcast,
				Actor:    res.Actor,
				Tag:      string(res.Tag),
				UnixMill: time.Now().UnixMilli(),
			}))
		}
	})
}

// Leave 显式离开
func (w *Worker) Leave(userID string) {
	w.Do(func(r *Room) {
		r.Leave(userID)
		log.Printf("👋 %s 离开了房间 %s", userID, r.ID)
		r.Broadcast(r.Snapshot())
		w.persist(r)
	})
}

// Disconnect 传输层断开
func (w *Worker) Disconnect(connID string) {
	w.Do(func(r *Room) {
		if p := r.Disconnect(connID); p != nil {
			log.Printf("📴 玩家 %s 在房间 %s 中掉线，状态保留", p.Username, r.ID)
		}
		r.Broadcast(r.Snapshot())
		w.persist(r)
	})
}
