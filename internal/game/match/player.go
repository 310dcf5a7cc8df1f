package match

import (
	"sync/atomic"

	"github.com/palemoky/tetris-battle/internal/game/piece"
)

// PlayerState 对局中的一名玩家
// 本地玩家的棋盘由引擎持有；远端玩家只保存最近一次快照（影子状态）
type PlayerState struct {
	ID           int
	Name         string
	Alive        bool
	Rank         int // 0 表示名次未定
	Disconnected bool

	Score  int
	Lines  int
	Combo  int // -1 表示无连击
	B2B    bool
	Target int // 当前攻击目标，-1 表示无

	Grid  [][]uint8    // 影子棋盘
	Piece *piece.Piece // 影子方块
	Hold  piece.Kind

	// ReportedGarbage 远端玩家自报的待接收垃圾行数，只用于显示
	ReportedGarbage int

	pending atomic.Int32
}

// NewPlayerState 创建存活的玩家
func NewPlayerState(id int) *PlayerState {
	return &PlayerState{
		ID:     id,
		Alive:  true,
		Combo:  -1,
		Target: -1,
	}
}

// AddGarbage 累加待接收的垃圾行
func (p *PlayerState) AddGarbage(n int) {
	if n <= 0 {
		return
	}
	p.pending.Add(int32(n))
}

// TakeGarbage 取走全部待接收的垃圾行
func (p *PlayerState) TakeGarbage() int {
	return int(p.pending.Swap(0))
}

// PendingGarbage 当前待接收的垃圾行数
func (p *PlayerState) PendingGarbage() int {
	return int(p.pending.Load())
}
