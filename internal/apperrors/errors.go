package apperrors

import (
	"github.com/palemoky/card-duel/internal/network/protocol"
)

// GameError 对局错误（座位与调度共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误，规则内的玩法拒绝由调度器就地生成提示，不走这里
var (
	ErrSeatOccupied = &GameError{Code: protocol.ErrCodeSeatOccupied, Message: "座位已被其他玩家占用"}
	ErrRoomLocked   = &GameError{Code: protocol.ErrCodeRoomLocked, Message: "对局已开始，房间不再接受新玩家"}
	ErrInvalidZone  = &GameError{Code: protocol.ErrCodeInvalidZone, Message: "无效的区域"}
)
