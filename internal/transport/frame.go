package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize 帧头长度（大端 uint32）
	HeaderSize = 4
	// MaxFrameSize 单帧载荷上限，超过视为损坏的流
	MaxFrameSize = 1 << 20
)

var (
	ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")
	ErrClosed        = errors.New("transport: connection closed")
	ErrUnhealthy     = errors.New("transport: connection unhealthy")
	ErrSendQueueFull = errors.New("transport: send queue full")
)

// WriteFrame 写入 [长度][载荷]，一次 Write 完成
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	_, err := w.Write(frame)
	return err
}

// ReadFrame 先读满 4 字节帧头，再读满载荷
// 流在帧中间结束时返回 io.ErrUnexpectedEOF
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
