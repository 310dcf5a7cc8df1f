package session

import "sync"

// Latest 只保存最新值的单槽位：接收协程写入覆盖旧值，tick 协程取走
type Latest[T any] struct {
	mu  sync.Mutex
	v   T
	set bool
}

// Store 写入新值，覆盖未取走的旧值
func (l *Latest[T]) Store(v T) {
	l.mu.Lock()
	l.v = v
	l.set = true
	l.mu.Unlock()
}

// Take 取走当前值；没有新值时返回 false
func (l *Latest[T]) Take() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.v, l.set
	var zero T
	l.v = zero
	l.set = false
	return v, ok
}
