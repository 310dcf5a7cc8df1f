package engine

import (
	"time"

	"github.com/palemoky/tetris-battle/internal/game/piece"
)

// State 当前状态
func (e *Engine) State() State { return e.state }

// GameOver 是否已顶出
func (e *Engine) GameOver() bool { return e.state == StateGameOver }

// Owner 所属玩家 ID
func (e *Engine) Owner() int { return e.owner }

// Grid 棋盘副本
func (e *Engine) Grid() [][]uint8 { return e.board.Rows() }

// Width 棋盘宽度
func (e *Engine) Width() int { return e.board.Width() }

// Height 棋盘高度
func (e *Engine) Height() int { return e.board.Height() }

// Current 当前方块副本，游戏结束后仍返回最后一个方块
func (e *Engine) Current() *piece.Piece { return e.current.Clone() }

// HoldKind 暂存区中的方块，KindNone 表示为空
func (e *Engine) HoldKind() piece.Kind { return e.hold }

// CanHold 本次锁定前是否还能暂存
func (e *Engine) CanHold() bool { return e.canHold }

// Preview 预览队列
func (e *Engine) Preview() []piece.Kind { return e.queue.Peek() }

// Score 累计得分
func (e *Engine) Score() int { return e.score }

// Lines 累计消行数
func (e *Engine) Lines() int { return e.lines }

// Combo 当前连击数，-1 表示无
func (e *Engine) Combo() int { return e.combo }

// B2B 是否处于 back-to-back 状态
func (e *Engine) B2B() bool { return e.b2b }

// Elapsed 对局已进行时间
func (e *Engine) Elapsed() time.Duration { return e.elapsed }

// LockTimer 剩余锁定延迟（仅触底时有意义）
func (e *Engine) LockTimer() time.Duration { return e.lockTimer }

// MovesLeft 剩余的锁定延迟重置次数（仅触底时有意义）
func (e *Engine) MovesLeft() int { return e.movesLeft }
