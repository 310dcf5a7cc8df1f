package engine

import (
	"time"

	"github.com/palemoky/tetris-battle/internal/game/board"
	"github.com/palemoky/tetris-battle/internal/game/piece"
)

// 默认参数
const (
	DefaultLockDelay = 500 * time.Millisecond
	DefaultLockMoves = 15
	DefaultBaseFall  = time.Second
	DefaultMinFall   = 300 * time.Millisecond
	DefaultSpeedRamp = 60 * time.Second
)

// Config 引擎参数
type Config struct {
	Width       int
	Height      int
	LockDelay   time.Duration // 触底后的锁定延迟
	LockMoves   int           // 触底后可重置锁定延迟的次数
	PreviewSize int
	BaseFall    time.Duration // 开局时每格下落间隔
	MinFall     time.Duration // 下落间隔下限
	SpeedRamp   time.Duration // 下落间隔缩短到一半所需的对局时间
}

// DefaultConfig 返回默认参数
func DefaultConfig() Config {
	return Config{
		Width:       board.DefaultWidth,
		Height:      board.DefaultHeight,
		LockDelay:   DefaultLockDelay,
		LockMoves:   DefaultLockMoves,
		PreviewSize: piece.DefaultPreviewSize,
		BaseFall:    DefaultBaseFall,
		MinFall:     DefaultMinFall,
		SpeedRamp:   DefaultSpeedRamp,
	}
}

// withDefaults 零值字段使用默认值
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.LockDelay <= 0 {
		c.LockDelay = d.LockDelay
	}
	if c.LockMoves <= 0 {
		c.LockMoves = d.LockMoves
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = d.PreviewSize
	}
	if c.BaseFall <= 0 {
		c.BaseFall = d.BaseFall
	}
	if c.MinFall <= 0 {
		c.MinFall = d.MinFall
	}
	return c
}
