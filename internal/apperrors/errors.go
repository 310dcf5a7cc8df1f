package apperrors

import (
	"github.com/palemoky/tetris-battle/internal/protocol"
)

// GameError 游戏错误（主机和客户端共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomFull         = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满或游戏已开始"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "至少需要 2 名玩家"}
	ErrAlreadyStarted   = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始"}
	ErrHandshake        = &GameError{Code: protocol.ErrCodeHandshake, Message: "未收到主机分配的玩家编号"}
	ErrConnectionLost   = &GameError{Code: protocol.ErrCodeConnectionLost, Message: "与主机的连接已断开"}
)

// New 按错误码创建错误，消息取自协议错误表
func New(code int) *GameError {
	msg, ok := protocol.ErrorMessages[code]
	if !ok {
		msg = protocol.ErrorMessages[protocol.ErrCodeUnknown]
	}
	return &GameError{Code: code, Message: msg}
}
