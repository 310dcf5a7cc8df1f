package transport

import (
	"fmt"
	"log"
	"time"

	"github.com/palemoky/tetris-battle/internal/logger"
	"github.com/palemoky/tetris-battle/internal/protocol"
)

// ReadPump 连接的接收循环：每条消息交给 onMessage，直到读取失败或连接关闭
// onMessage 只应把消息放入共享槽位，不能回调游戏逻辑
func (c *Conn) ReadPump(onMessage func(*protocol.Message)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] readPump panic recovered: %v", r)
			err = fmt.Errorf("transport: read pump panic: %v", r)
		}
		c.MarkUnhealthy()
	}()

	for {
		msg, err := c.Receive()
		if err != nil {
			return err
		}
		onMessage(msg)
	}
}

// writePump 唯一的写协程：按入队顺序写出帧，任何一次写失败后标记连接异常并退出
func (c *Conn) writePump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] writePump panic recovered: %v", r)
		}
		c.MarkUnhealthy()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if _, err := c.conn.Write(frame); err != nil {
				if !c.closed.Load() {
					log.Printf("⚠️ 写入 %s 失败: %v", c.RemoteAddr(), err)
				}
				return
			}
		case <-c.done:
			return
		}
	}
}
