package session

import "github.com/palemoky/tetris-battle/internal/protocol"

// Coordinator 一个对等端与其他玩家交换状态的方式（主机或客户端）
// 所有方法只在 tick 协程中调用
type Coordinator interface {
	// PlayerID 本机玩家 ID
	PlayerID() int
	// Receive 取走最近一次的全局快照；没有新快照时返回 false
	Receive() (*protocol.BroadcastPayload, bool)
	// Publish 发布本机玩家本 tick 的状态，并处理心跳与超时
	Publish(state *protocol.GameStatePayload)
	// Lost 与会话的连接是否已断开（不可恢复）
	Lost() bool
}

// LobbyStatus 大厅状态
type LobbyStatus struct {
	PlayerCount int
	PlayerIDs   []int
	Started     bool
}

// HostID 主机玩家固定使用 0
const HostID = 0
