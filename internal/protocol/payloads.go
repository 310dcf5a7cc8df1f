package protocol

// PlayerAssignedPayload 分配给新连接的玩家 ID
type PlayerAssignedPayload struct {
	PlayerID int `json:"player_id"`
}

// HeartbeatPayload 心跳
type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"` // 发送时间（毫秒）
}

// PieceInfo 当前方块的快照
type PieceInfo struct {
	Kind  uint8    `json:"kind"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Shape [][]bool `json:"shape"`
}

// GameStatePayload 单个玩家一个 tick 的可见状态
type GameStatePayload struct {
	PlayerID       int         `json:"player_id"`
	Name           string      `json:"name"`
	Grid           [][]uint8   `json:"grid"`
	Score          int         `json:"score"`
	Lines          int         `json:"lines"`
	Combo          int         `json:"combo"` // -1 表示无连击
	B2B            bool        `json:"b2b"`
	GameOver       bool        `json:"game_over"`
	AttackAmount   int         `json:"attack_amount"` // 本 tick 新发出的攻击，仅用于显示
	AttackTarget   int         `json:"attack_target"` // -1 表示无
	Piece          *PieceInfo  `json:"piece,omitempty"`
	AttackTotals   map[int]int `json:"attack_totals,omitempty"` // 目标 -> 累计攻击量
	Rank           int         `json:"rank"`
	Disconnected   bool        `json:"disconnected"`
	PendingGarbage int         `json:"pending_garbage"`
	Hold           uint8       `json:"hold"`
	Target         int         `json:"target"` // 当前攻击目标，-1 表示无
	Seq            uint64      `json:"seq"`
}

// BroadcastPayload 主机汇总的全部玩家状态，按玩家 ID 升序
type BroadcastPayload struct {
	States      []GameStatePayload `json:"states"`
	PlayerCount int                `json:"player_count"`
}

// State 按玩家 ID 查找状态
func (b *BroadcastPayload) State(id int) (*GameStatePayload, bool) {
	for i := range b.States {
		if b.States[i].PlayerID == id {
			return &b.States[i], true
		}
	}
	return nil, false
}

// LobbyControlPayload 大厅控制：周期性人数更新，或一次性的开始信号
type LobbyControlPayload struct {
	PlayerCount int   `json:"player_count"`
	Start       bool  `json:"start"`
	PlayerIDs   []int `json:"player_ids,omitempty"` // 开始时的全部玩家
}
