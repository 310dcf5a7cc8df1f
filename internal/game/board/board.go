package board

import (
	"math/rand/v2"

	"github.com/palemoky/tetris-battle/internal/game/piece"
)

const (
	// DefaultWidth 标准棋盘宽度
	DefaultWidth = 10
	// DefaultHeight 标准棋盘高度
	DefaultHeight = 20

	// Empty 空格
	Empty uint8 = 0
	// Garbage 垃圾行格子
	Garbage uint8 = 8
)

// Board 固定尺寸的格子棋盘
type Board struct {
	width  int
	height int
	cells  [][]uint8
	rng    *rand.Rand
}

// New 创建空棋盘，rng 用于决定垃圾行缺口位置
func New(width, height int, rng *rand.Rand) *Board {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &Board{
		width:  width,
		height: height,
		cells:  cells,
		rng:    rng,
	}
}

// Width 宽度
func (b *Board) Width() int { return b.width }

// Height 高度
func (b *Board) Height() int { return b.height }

// Cell 返回 (x, y) 处的格子值，越界视为空
func (b *Board) Cell(x, y int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Empty
	}
	return b.cells[y][x]
}

// CanPlace 方块偏移 (dx, dy) 后是否完全位于棋盘内且不与已有格子重叠
// 棋盘顶部以上（负行）视为空，但仍检查左右边界
func (b *Board) CanPlace(p *piece.Piece, dx, dy int) bool {
	for y, row := range p.Shape {
		for x, filled := range row {
			if !filled {
				continue
			}
			nx := p.X + x + dx
			ny := p.Y + y + dy
			if nx < 0 || nx >= b.width || ny >= b.height {
				return false
			}
			if ny >= 0 && b.cells[ny][nx] != Empty {
				return false
			}
		}
	}
	return true
}

// Lock 把方块写入棋盘并消除所有满行，返回消除行数
func (b *Board) Lock(p *piece.Piece) int {
	color := p.Kind.Color()
	for _, c := range p.Cells() {
		x, y := c[0], c[1]
		if x < 0 || x >= b.width || y < 0 || y >= b.height {
			continue
		}
		b.cells[y][x] = color
	}
	return b.clearLines()
}

// clearLines 自下而上保留非满行，顶部补空行
func (b *Board) clearLines() int {
	kept := make([][]uint8, 0, b.height)
	cleared := 0
	for y := range b.height {
		if b.rowFull(y) {
			cleared++
			continue
		}
		kept = append(kept, b.cells[y])
	}
	if cleared == 0 {
		return 0
	}

	rows := make([][]uint8, 0, b.height)
	for range cleared {
		rows = append(rows, make([]uint8, b.width))
	}
	b.cells = append(rows, kept...)
	return cleared
}

func (b *Board) rowFull(y int) bool {
	for _, v := range b.cells[y] {
		if v == Empty {
			return false
		}
	}
	return true
}

// InsertGarbage 从底部插入 n 行垃圾行，每插入一行顶部移出一行
// 每行只有一个缺口，相邻 width 行内缺口列互不相同
func (b *Board) InsertGarbage(n int) {
	if n <= 0 {
		return
	}
	holes := b.rng.Perm(b.width)
	for i := range n {
		row := make([]uint8, b.width)
		for x := range row {
			row[x] = Garbage
		}
		row[holes[i%b.width]] = Empty

		b.cells = append(b.cells[1:], row)
	}
}

// Rows 返回棋盘副本
func (b *Board) Rows() [][]uint8 {
	out := make([][]uint8, b.height)
	for y, row := range b.cells {
		out[y] = append([]uint8(nil), row...)
	}
	return out
}

// Replace 用快照或预设局面覆盖棋盘，尺寸不符的部分被裁剪或补空
func (b *Board) Replace(rows [][]uint8) {
	for y := range b.height {
		for x := range b.width {
			var v uint8
			if y < len(rows) && x < len(rows[y]) {
				v = rows[y][x]
			}
			b.cells[y][x] = v
		}
	}
}

// StackHeight 已堆叠的高度（最高非空行到底部）
func (b *Board) StackHeight() int {
	for y := range b.height {
		for _, v := range b.cells[y] {
			if v != Empty {
				return b.height - y
			}
		}
	}
	return 0
}
