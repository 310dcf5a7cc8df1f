//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

// MockCoordinator 实现 session.Coordinator 的 mock
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) PlayerID() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockCoordinator) Receive() (*protocol.BroadcastPayload, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*protocol.BroadcastPayload), args.Bool(1)
}

func (m *MockCoordinator) Publish(state *protocol.GameStatePayload) {
	m.Called(state)
}

func (m *MockCoordinator) Lost() bool {
	args := m.Called()
	return args.Bool(0)
}

// SimpleCoordinator 简单的协调器，不使用 testify（用于按顺序喂快照的测试）
// Inbox 中的快照每次 Receive 取走一个；Published 记录所有发布的状态
type SimpleCoordinator struct {
	ID        int
	Inbox     []*protocol.BroadcastPayload
	Published []*protocol.GameStatePayload
	IsLost    bool
}

func (c *SimpleCoordinator) PlayerID() int { return c.ID }
func (c *SimpleCoordinator) Lost() bool    { return c.IsLost }

func (c *SimpleCoordinator) Receive() (*protocol.BroadcastPayload, bool) {
	if len(c.Inbox) == 0 {
		return nil, false
	}
	b := c.Inbox[0]
	c.Inbox = c.Inbox[1:]
	return b, true
}

func (c *SimpleCoordinator) Publish(state *protocol.GameStatePayload) {
	state.PlayerID = c.ID
	c.Published = append(c.Published, state)
}

// Push 追加一个快照
func (c *SimpleCoordinator) Push(states ...protocol.GameStatePayload) {
	c.Inbox = append(c.Inbox, &protocol.BroadcastPayload{States: states, PlayerCount: len(states)})
}

// Last 最近一次发布的状态
func (c *SimpleCoordinator) Last() *protocol.GameStatePayload {
	if len(c.Published) == 0 {
		return nil
	}
	return c.Published[len(c.Published)-1]
}
