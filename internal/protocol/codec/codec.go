package codec

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/convert"
)

// 信封字段号
const (
	fieldVersion protowire.Number = 1
	fieldType    protowire.Number = 2
	fieldSender  protowire.Number = 3
	fieldPayload protowire.Number = 4
)

// NewMessage 创建一个新消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func NewMessage(msgType protocol.MessageType, sender int, payload any) (*protocol.Message, error) {
	msg := GetMessage()
	msg.Type = msgType
	msg.Sender = sender

	if payload != nil {
		var err error
		msg.Payload, err = convert.EncodePayload(msgType, payload)
		if err != nil {
			PutMessage(msg) // 失败时归还
			return nil, err
		}
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, sender int, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, sender, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为带版本号的信封
func Encode(m *protocol.Message) []byte {
	return AppendEncode(nil, m)
}

// AppendEncode 把编码后的信封追加到 dst
func AppendEncode(dst []byte, m *protocol.Message) []byte {
	dst = protowire.AppendTag(dst, fieldVersion, protowire.VarintType)
	dst = protowire.AppendVarint(dst, protocol.SchemaVersion)
	dst = protowire.AppendTag(dst, fieldType, protowire.VarintType)
	dst = protowire.AppendVarint(dst, uint64(m.Type))
	if m.Sender != 0 {
		dst = protowire.AppendTag(dst, fieldSender, protowire.VarintType)
		dst = protowire.AppendVarint(dst, uint64(m.Sender))
	}
	if len(m.Payload) > 0 {
		dst = protowire.AppendTag(dst, fieldPayload, protowire.BytesType)
		dst = protowire.AppendBytes(dst, m.Payload)
	}
	return dst
}

// EncodeTo 把信封写入缓冲区（用于拼接帧头）
func EncodeTo(buf *bytes.Buffer, m *protocol.Message) {
	buf.Write(AppendEncode(buf.AvailableBuffer(), m))
}

// Decode 解码信封；版本不一致或类型未知返回错误
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	var (
		version uint64
		msgType uint64
		sender  uint64
		payload []byte
	)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedField, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(data)
		case num == fieldType && typ == protowire.VarintType:
			msgType, n = protowire.ConsumeVarint(data)
		case num == fieldSender && typ == protowire.VarintType:
			sender, n = protowire.ConsumeVarint(data)
		case num == fieldPayload && typ == protowire.BytesType:
			payload, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", protocol.ErrMalformedField, num, protowire.ParseError(n))
		}
		data = data[n:]
	}

	if version != protocol.SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", protocol.ErrSchemaVersion, version, protocol.SchemaVersion)
	}
	t := protocol.MessageType(msgType)
	if msgType > 0xff || !t.Valid() {
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnknownType, msgType)
	}

	msg := GetMessage()
	msg.Type = t
	msg.Sender = int(sender)
	msg.Payload = append([]byte(nil), payload...) // 复制 payload 避免引用
	return msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	v, err := convert.DecodePayload(msg.Type, msg.Payload)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not %T", protocol.ErrPayloadType, msg.Type, p)
	}
	return p, nil
}
