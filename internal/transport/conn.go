package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/codec"
)

const (
	// writeWait 单次写出的超时
	writeWait = time.Second
	// readBufferSize 读缓冲区大小
	readBufferSize = 32 * 1024
	// sendQueueSize 发送队列容量，队列满时新帧被丢弃
	sendQueueSize = 16
)

// Conn 一条帧化的消息连接，对称地收发 protocol.Message
// Send 可被多个协程调用且从不阻塞，由 writePump 串行写出；Receive 只能由一个协程调用
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	send chan []byte
	done chan struct{}
	wg   sync.WaitGroup

	healthy atomic.Bool
	closed  atomic.Bool
	once    sync.Once
}

// NewConn 包装已建立的连接并启动写协程
func NewConn(c net.Conn) *Conn {
	conn := &Conn{
		conn:   c,
		reader: bufio.NewReaderSize(c, readBufferSize),
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
	conn.healthy.Store(true)
	conn.wg.Go(conn.writePump)
	return conn
}

// Send 编码一条消息并放入发送队列
// 连接已关闭返回 ErrClosed，写出失败过返回 ErrUnhealthy，队列满时丢弃该帧并返回 ErrSendQueueFull
func (c *Conn) Send(msg *protocol.Message) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.healthy.Load() {
		return ErrUnhealthy
	}

	frame, err := encodeFrame(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// encodeFrame 在池化缓冲区中编码 [长度][信封]，返回独立的副本
func encodeFrame(msg *protocol.Message) ([]byte, error) {
	buf := codec.GetBuffer()
	defer codec.PutBuffer(buf)

	buf.Write(make([]byte, HeaderSize))
	codec.EncodeTo(buf, msg)
	frame := buf.Bytes()
	size := len(frame) - HeaderSize
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	binary.BigEndian.PutUint32(frame, uint32(size))
	return bytes.Clone(frame), nil
}

// Receive 阻塞读取下一条消息
// 帧损坏、版本不一致或连接关闭都会返回错误，调用方应结束读循环
// 注意: 使用完毕后应调用 codec.PutMessage 归还对象到池
func (c *Conn) Receive() (*protocol.Message, error) {
	data, err := ReadFrame(c.reader)
	if err != nil {
		if c.closed.Load() {
			return nil, ErrClosed
		}
		return nil, err
	}
	return codec.Decode(data)
}

// Healthy 连接未关闭且写出没有失败过
func (c *Conn) Healthy() bool {
	return c.healthy.Load() && !c.closed.Load()
}

// MarkUnhealthy 标记连接异常，等待存活检测处理
func (c *Conn) MarkUnhealthy() {
	c.healthy.Store(false)
}

// RemoteAddr 对端地址
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Close 关闭连接，阻塞中的 Receive 随之返回，队列中未写出的帧被丢弃；可重复调用
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		c.healthy.Store(false)
		close(c.done)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}
