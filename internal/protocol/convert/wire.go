package convert

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

// field 一个已切分的字段，raw 为不含 tag 的字段值
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

// walk 依次回调每个字段；未知字段由回调忽略即可跳过
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", protocol.ErrMalformedField, protowire.ParseError(n))
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", protocol.ErrMalformedField, num, protowire.ParseError(m))
		}
		if err := fn(field{num: num, typ: typ, raw: b[:m]}); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func (f field) asUint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: field %d is not a varint", protocol.ErrMalformedField, f.num)
	}
	v, n := protowire.ConsumeVarint(f.raw)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", protocol.ErrMalformedField, protowire.ParseError(n))
	}
	return v, nil
}

func (f field) asInt() (int, error) {
	v, err := f.asUint()
	return int(int64(v)), err
}

func (f field) asSint() (int, error) {
	v, err := f.asUint()
	return int(protowire.DecodeZigZag(v)), err
}

func (f field) asBool() (bool, error) {
	v, err := f.asUint()
	return v != 0, err
}

func (f field) asBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: field %d is not length-delimited", protocol.ErrMalformedField, f.num)
	}
	v, n := protowire.ConsumeBytes(f.raw)
	if n < 0 {
		return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedField, protowire.ParseError(n))
	}
	return v, nil
}

func (f field) asString() (string, error) {
	v, err := f.asBytes()
	return string(v), err
}

// --- 编码辅助：零值字段省略 ---

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	return appendUint(b, num, uint64(int64(v)))
}

func appendSint(b []byte, num protowire.Number, v int) []byte {
	return appendUint(b, num, protowire.EncodeZigZag(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendUint(b, num, 1)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendBytes 重复字段的元素即使为空也要写出
func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
