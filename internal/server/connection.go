package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 观战者只会发送控制帧
	maxMessageSize = 512

	// 发送队列长度，满了就丢帧
	sendBuffer = 16
)

// Spectator 一个只读的观战连接
type Spectator struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// SendFrame 非阻塞地排队一帧，队列满时丢弃
func (c *Spectator) SendFrame(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// handleWebSocket 处理观战连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	c := &Spectator{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !s.hub.register(c) {
		log.Printf("🚫 观战人数已满，拒绝 %s", r.RemoteAddr)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "spectators full"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	log.Printf("👀 观战者已连接 (%s)", r.RemoteAddr)
	go c.writePump()
	go c.readPump()
}

// readPump 丢弃观战者发来的数据，只用于检测断开
func (c *Spectator) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("观战连接读取错误: %v", err)
			}
			return
		}
	}
}

// writePump 推送快照并定期 ping
func (c *Spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
