package convert

import (
	"fmt"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

// EncodePayload 将载荷结构体编码为 protobuf 字节，值和指针均可
func EncodePayload(msgType protocol.MessageType, payload any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}

	switch msgType {
	case protocol.MsgPlayerAssigned:
		if p, ok := asPointer[protocol.PlayerAssignedPayload](payload); ok {
			return encodePlayerAssigned(p), nil
		}
	case protocol.MsgHeartbeat:
		if p, ok := asPointer[protocol.HeartbeatPayload](payload); ok {
			return encodeHeartbeat(p), nil
		}
	case protocol.MsgGameState:
		if p, ok := asPointer[protocol.GameStatePayload](payload); ok {
			return encodeGameState(p), nil
		}
	case protocol.MsgBroadcast:
		if p, ok := asPointer[protocol.BroadcastPayload](payload); ok {
			return encodeBroadcast(p), nil
		}
	case protocol.MsgLobbyControl:
		if p, ok := asPointer[protocol.LobbyControlPayload](payload); ok {
			return encodeLobbyControl(p), nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnknownType, msgType)
	}
	return nil, fmt.Errorf("%w: %s with %T", protocol.ErrPayloadType, msgType, payload)
}

// DecodePayload 按消息类型解码载荷，返回对应结构体的指针
func DecodePayload(msgType protocol.MessageType, data []byte) (any, error) {
	switch msgType {
	case protocol.MsgPlayerAssigned:
		return decodePlayerAssigned(data)
	case protocol.MsgHeartbeat:
		return decodeHeartbeat(data)
	case protocol.MsgGameState:
		return decodeGameState(data)
	case protocol.MsgBroadcast:
		return decodeBroadcast(data)
	case protocol.MsgLobbyControl:
		return decodeLobbyControl(data)
	default:
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnknownType, msgType)
	}
}

func asPointer[T any](payload any) (*T, bool) {
	switch p := payload.(type) {
	case T:
		return &p, true
	case *T:
		return p, p != nil
	}
	return nil, false
}
