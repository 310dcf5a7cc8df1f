package server

import (
	"log"
	"sync"

	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/codec"
	"github.com/palemoky/tetris-battle/internal/session"
)

// Hub 把主机的全局快照推送给所有观战者
// 慢的观战者直接丢帧，不阻塞主机的 tick 协程
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Spectator]struct{}
	max      int
	latest   []byte // 最近一帧，新观战者连接后立即收到
	snapshot *protocol.BroadcastPayload
	closed   bool
}

// NewHub 创建推送中心，limit <= 0 表示不限制人数
func NewHub(limit int) *Hub {
	return &Hub{
		clients: make(map[*Spectator]struct{}),
		max:     limit,
	}
}

// Publish 编码并推送一帧快照；可直接作为 session.Host.OnBroadcast 的回调
func (h *Hub) Publish(b *protocol.BroadcastPayload) {
	msg, err := codec.NewMessage(protocol.MsgBroadcast, session.HostID, b)
	if err != nil {
		log.Printf("⚠️ 编码观战快照失败: %v", err)
		return
	}
	data := codec.Encode(msg)
	codec.PutMessage(msg)

	h.mu.Lock()
	h.latest = data
	h.snapshot = b
	h.mu.Unlock()

	h.Broadcast(data)
}

// Broadcast 推送一帧已编码的数据
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.SendFrame(data)
	}
}

// Latest 最近一次推送的快照
func (h *Hub) Latest() (*protocol.BroadcastPayload, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot, h.snapshot != nil
}

// Count 当前观战人数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register 人数已满或已关闭时返回 false
func (h *Hub) register(c *Spectator) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || (h.max > 0 && len(h.clients) >= h.max) {
		return false
	}
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.SendFrame(h.latest)
	}
	return true
}

// unregister 移除观战者并关闭其发送通道
func (h *Hub) unregister(c *Spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close 断开所有观战者，之后不再接受新连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
