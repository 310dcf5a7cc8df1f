package session

import (
	"slices"
	"sync"
	"time"
)

// 默认存活检测参数
const (
	DefaultHeartbeatInterval = time.Second
	DefaultTimeout           = 5 * time.Second
)

// Monitor 心跳发送节奏与每个连接的静默超时检测
// Touch 由接收协程调用，其余方法由 tick 协程调用
type Monitor struct {
	mu       sync.Mutex
	now      func() time.Time
	interval time.Duration
	timeout  time.Duration
	lastSeen map[int]time.Time
	lastBeat time.Time
}

// NewMonitor 创建存活检测器，now 为 nil 时使用系统时钟
func NewMonitor(interval, timeout time.Duration, now func() time.Time) *Monitor {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		now:      now,
		interval: interval,
		timeout:  timeout,
		lastSeen: make(map[int]time.Time),
	}
}

// Touch 记录收到了来自 id 的任意消息
func (m *Monitor) Touch(id int) {
	m.mu.Lock()
	m.lastSeen[id] = m.now()
	m.mu.Unlock()
}

// Forget 停止跟踪 id
func (m *Monitor) Forget(id int) {
	m.mu.Lock()
	delete(m.lastSeen, id)
	m.mu.Unlock()
}

// LastSeen 最后一次收到 id 消息的时间
func (m *Monitor) LastSeen(id int) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.lastSeen[id]
	return t, ok
}

// Expired 返回静默时间超过超时的 id（升序）
func (m *Monitor) Expired() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var out []int
	for id, seen := range m.lastSeen {
		if now.Sub(seen) > m.timeout {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// HeartbeatDue 距上次心跳已满一个间隔时返回 true 并记为已发送
func (m *Monitor) HeartbeatDue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.lastBeat.IsZero() && now.Sub(m.lastBeat) < m.interval {
		return false
	}
	m.lastBeat = now
	return true
}

// Now 检测器使用的时钟
func (m *Monitor) Now() time.Time {
	return m.now()
}
