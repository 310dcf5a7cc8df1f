package engine

import (
	"math/rand/v2"
	"time"

	"github.com/palemoky/tetris-battle/internal/game/board"
	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/game/rule"
)

// State 引擎状态
type State uint8

const (
	StateFalling  State = iota // 下落中
	StateGrounded              // 触底，等待锁定
	StateLocked                // 锁定处理中（瞬时）
	StateGameOver              // 顶出，终止
)

// stateNames 状态名称映射表
var stateNames = map[State]string{
	StateFalling:  "falling",
	StateGrounded: "grounded",
	StateLocked:   "locked",
	StateGameOver: "game over",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// kickOffsets 旋转失败后依次尝试的水平偏移
var kickOffsets = [...]int{1, -1, 2, -2}

// GarbageSource 待接收垃圾行的来源，锁定后一次性取走
type GarbageSource interface {
	TakeGarbage() int
}

// LockResult 一次锁定的结果
type LockResult struct {
	Lines     int
	Points    int
	Combo     int
	B2B       bool
	Garbage   int  // 本次锁定后插入的垃圾行数
	ToppedOut bool // 新方块无法出生
}

// Engine 单个玩家的方块状态机，拥有自己的棋盘和预览队列
type Engine struct {
	cfg     Config
	owner   int
	board   *board.Board
	queue   *piece.Queue
	garbage GarbageSource

	current *piece.Piece
	hold    piece.Kind
	canHold bool

	state        State
	lockTimer    time.Duration
	movesLeft    int
	fallProgress time.Duration
	elapsed      time.Duration

	score int
	lines int
	combo int
	b2b   bool

	locks []LockResult
}

// New 创建引擎并生成第一个方块
// garbage 可以为 nil（单机或测试）；rng 决定垃圾行缺口
func New(cfg Config, owner int, src piece.Source, garbage GarbageSource, rng *rand.Rand) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:     cfg,
		owner:   owner,
		board:   board.New(cfg.Width, cfg.Height, rng),
		queue:   piece.NewQueue(src, cfg.PreviewSize),
		garbage: garbage,
		canHold: true,
		combo:   -1,
	}
	e.spawn(e.queue.Next())
	return e
}

// Tick 推进 dt 时间：重力下落或锁定延迟计时
func (e *Engine) Tick(dt time.Duration) {
	if e.state == StateGameOver || dt <= 0 {
		return
	}
	e.elapsed += dt

	switch e.state {
	case StateFalling:
		e.fallProgress += dt
		for e.state == StateFalling {
			interval := e.FallInterval()
			if e.fallProgress < interval {
				break
			}
			e.fallProgress -= interval
			e.stepDown()
		}
	case StateGrounded:
		e.lockTimer -= dt
		if e.lockTimer <= 0 || e.movesLeft <= 0 {
			e.lock()
		}
	}
}

// FallInterval 当前的下落间隔，随对局时间线性缩短并限制在最小值
func (e *Engine) FallInterval() time.Duration {
	return fallInterval(e.cfg, e.elapsed)
}

func fallInterval(cfg Config, elapsed time.Duration) time.Duration {
	if cfg.SpeedRamp <= 0 {
		return max(cfg.BaseFall, cfg.MinFall)
	}
	factor := 1 - 0.5*float64(elapsed)/float64(cfg.SpeedRamp)
	interval := time.Duration(float64(cfg.BaseFall) * factor)
	return max(interval, cfg.MinFall)
}

// MoveLeft 左移一格
func (e *Engine) MoveLeft() bool { return e.shift(-1) }

// MoveRight 右移一格
func (e *Engine) MoveRight() bool { return e.shift(1) }

// SoftDrop 下移一格，每格得 1 分
func (e *Engine) SoftDrop() bool {
	if !e.active() || !e.board.CanPlace(e.current, 0, 1) {
		return false
	}
	e.score += rule.SoftDropPoints
	e.stepDown()
	return true
}

// HardDrop 直接落到底并立即锁定，每格得 2 分
func (e *Engine) HardDrop() {
	if !e.active() {
		return
	}
	for e.board.CanPlace(e.current, 0, 1) {
		e.current.Y++
		e.score += rule.HardDropPoints
	}
	e.lock()
}

// LoadBoard 用预设局面替换棋盘；当前方块与新局面重叠时游戏结束
func (e *Engine) LoadBoard(rows [][]uint8) {
	e.board.Replace(rows)
	if e.active() && !e.board.CanPlace(e.current, 0, 0) {
		e.state = StateGameOver
	}
}

// RotateCW 顺时针旋转
func (e *Engine) RotateCW() bool { return e.rotate((*piece.Piece).RotateCW) }

// RotateCCW 逆时针旋转
func (e *Engine) RotateCCW() bool { return e.rotate((*piece.Piece).RotateCCW) }

// Rotate180 旋转 180 度
func (e *Engine) Rotate180() bool { return e.rotate((*piece.Piece).Rotate180) }

// Hold 把当前方块放入暂存区，每次锁定后只能使用一次
func (e *Engine) Hold() bool {
	if !e.active() || !e.canHold {
		return false
	}
	e.canHold = false

	held := e.hold
	e.hold = e.current.Kind
	if held == piece.KindNone {
		held = e.queue.Next()
	}
	e.spawn(held)
	return true
}

// GhostY 当前方块直接落下后的 Y 坐标
func (e *Engine) GhostY() int {
	if e.current == nil {
		return 0
	}
	dy := 0
	for e.board.CanPlace(e.current, 0, dy+1) {
		dy++
	}
	return e.current.Y + dy
}

// DrainLocks 取走上次调用以来的全部锁定结果
func (e *Engine) DrainLocks() []LockResult {
	locks := e.locks
	e.locks = nil
	return locks
}

func (e *Engine) active() bool {
	return e.state == StateFalling || e.state == StateGrounded
}

func (e *Engine) shift(dx int) bool {
	if !e.active() || !e.board.CanPlace(e.current, dx, 0) {
		return false
	}
	e.current.X += dx
	e.afterAdjust()
	return true
}

func (e *Engine) rotate(turn func(*piece.Piece)) bool {
	if !e.active() {
		return false
	}
	before := e.current.Clone()
	turn(e.current)

	if !e.board.CanPlace(e.current, 0, 0) {
		kicked := false
		for _, dx := range kickOffsets {
			if e.board.CanPlace(e.current, dx, 0) {
				e.current.X += dx
				kicked = true
				break
			}
		}
		if !kicked {
			e.current = before
			return false
		}
	}
	e.afterAdjust()
	return true
}

// afterAdjust 水平移动或旋转成功后更新触底状态
func (e *Engine) afterAdjust() {
	grounded := !e.board.CanPlace(e.current, 0, 1)
	switch {
	case e.state == StateGrounded && !grounded:
		e.state = StateFalling
		e.fallProgress = 0
	case e.state == StateGrounded && grounded:
		if e.movesLeft > 0 {
			e.movesLeft--
			e.lockTimer = e.cfg.LockDelay
		}
	case e.state == StateFalling && grounded:
		e.enterGrounded()
	}
}

// stepDown 尝试下移一格，落地时进入触底状态
func (e *Engine) stepDown() {
	if e.board.CanPlace(e.current, 0, 1) {
		e.current.Y++
	}
	if !e.board.CanPlace(e.current, 0, 1) && e.state == StateFalling {
		e.enterGrounded()
	}
}

func (e *Engine) enterGrounded() {
	e.state = StateGrounded
	e.lockTimer = e.cfg.LockDelay
	e.movesLeft = e.cfg.LockMoves
	e.fallProgress = 0
}

// lock 锁定当前方块：消行、计分、插入待接收的垃圾行、生成下一个方块
func (e *Engine) lock() {
	if !e.active() {
		return
	}
	e.state = StateLocked

	cleared := e.board.Lock(e.current)
	res := rule.Score(cleared, e.combo, e.b2b)
	e.score += res.Points
	e.lines += cleared
	e.combo = res.Combo
	e.b2b = res.B2B

	garbage := 0
	if e.garbage != nil {
		garbage = e.garbage.TakeGarbage()
		e.board.InsertGarbage(garbage)
	}

	e.canHold = true
	e.spawn(e.queue.Next())

	e.locks = append(e.locks, LockResult{
		Lines:     cleared,
		Points:    res.Points,
		Combo:     res.Combo,
		B2B:       res.B2B,
		Garbage:   garbage,
		ToppedOut: e.state == StateGameOver,
	})
}

// spawn 在顶部生成方块；出生位置被占据则游戏结束
func (e *Engine) spawn(kind piece.Kind) {
	e.current = piece.New(kind, e.cfg.Width, e.owner)
	e.fallProgress = 0
	e.lockTimer = 0
	e.movesLeft = 0

	if !e.board.CanPlace(e.current, 0, 0) {
		e.state = StateGameOver
		return
	}
	e.state = StateFalling
	if !e.board.CanPlace(e.current, 0, 1) {
		e.enterGrounded()
	}
}
