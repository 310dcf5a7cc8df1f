package protocol

import "errors"

// 错误码
const (
	ErrCodeUnknown          = 1000
	ErrCodeInvalidMsg       = 1001
	ErrCodeFrameTooLarge    = 1002
	ErrCodeSchemaVersion    = 1003
	ErrCodeRoomFull         = 2002
	ErrCodeGameStarted      = 2004
	ErrCodeNotEnoughPlayers = 2005
	ErrCodeHandshake        = 4001
	ErrCodeConnectionLost   = 4002
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:          "未知错误",
	ErrCodeInvalidMsg:       "无效的消息格式",
	ErrCodeFrameTooLarge:    "消息过大",
	ErrCodeSchemaVersion:    "协议版本不一致",
	ErrCodeRoomFull:         "房间已满",
	ErrCodeGameStarted:      "游戏已开始",
	ErrCodeNotEnoughPlayers: "玩家人数不足",
	ErrCodeHandshake:        "握手失败",
	ErrCodeConnectionLost:   "连接已断开",
}

// 编解码错误
var (
	ErrSchemaVersion  = errors.New("protocol: schema version mismatch")
	ErrUnknownType    = errors.New("protocol: unknown message type")
	ErrPayloadType    = errors.New("protocol: payload does not match message type")
	ErrMalformedField = errors.New("protocol: malformed field")
)
