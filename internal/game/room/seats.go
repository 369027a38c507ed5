package room

import (
	"sort"
	"time"

	"github.com/palemoky/card-duel/internal/apperrors"
)

// 两个座位的固定标签
const (
	SeatA = "A"
	SeatB = "B"
)

var seatLabels = []string{SeatA, SeatB}

// SeatBinding 座位归属记录
//
// 独立于 Player 存在并随房间持久化，房间锁定后它决定
// 谁有资格重新入座：只有两位原始持有者可以重绑。
type SeatBinding struct {
	UserID   string
	Username string
	BoundAt  time.Time
}

// ValidSeat 是否为合法座位标签
func ValidSeat(seat string) bool {
	return seat == SeatA || seat == SeatB
}

// BindSeat 把 userId 绑定到座位
//
// 空座位或同一 userId 重绑（重连）幂等成功；座位归他人则失败；
// 房间锁定后，没有既存玩家状态的 userId 一律拒绝，迟到者不能
// 在对局开始后顶掉座位。
func (r *Room) BindSeat(seat, userID, username string, conn Conn) error {
	if !ValidSeat(seat) {
		return apperrors.ErrInvalidZone
	}

	if b, ok := r.Seats[seat]; ok && b.UserID != userID {
		return apperrors.ErrSeatOccupied
	}

	if r.Locked && r.playerByID(userID) == nil {
		return apperrors.ErrRoomLocked
	}

	// 同一 userId 重绑：挂回连接即可。绑到另一个座位则是整体换座，
	// 归属记录跟着玩家走，绝不出现"归属在 B、玩家在 A"的脱节状态。
	if p := r.playerByID(userID); p != nil {
		if p.Seat != seat {
			if r.Locked {
				return apperrors.ErrRoomLocked
			}
			if old := r.playerBySeat(seat); old != nil {
				r.removePlayer(old.UserID)
			}
			delete(r.Seats, p.Seat)
			p.Seat = seat
			sort.Slice(r.Players, func(i, j int) bool {
				return r.Players[i].Seat < r.Players[j].Seat
			})
		}
		p.attach(conn)
		if _, ok := r.Seats[seat]; !ok {
			r.Seats[seat] = &SeatBinding{UserID: userID, Username: username, BoundAt: time.Now()}
		}
		return nil
	}

	// 座位归属已解除但旧的占位状态还在（双方重开后换人），替换之
	if old := r.playerBySeat(seat); old != nil {
		r.removePlayer(old.UserID)
	}

	p := newPlayer(userID, username, seat)
	p.attach(conn)
	r.Players = append(r.Players, p)

	// 回合顺序恒等于座位顺序，恢复和运行期保持一致
	sort.Slice(r.Players, func(i, j int) bool {
		return r.Players[i].Seat < r.Players[j].Seat
	})

	r.Seats[seat] = &SeatBinding{UserID: userID, Username: username, BoundAt: time.Now()}
	return nil
}

// removePlayer 从回合顺序中移除玩家
func (r *Room) removePlayer(userID string) {
	for i, p := range r.Players {
		if p.UserID == userID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}
