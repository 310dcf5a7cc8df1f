// Package view provides UI rendering functions.
package view

import (
	"strings"

	"github.com/palemoky/tetris-battle/internal/game/board"
	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/ui/common"
)

// overlay 把方块（和影子）叠加到棋盘副本上，返回格子值和影子标记
func overlay(grid [][]uint8, p *piece.Piece, ghostY int) ([][]uint8, [][]bool) {
	cells := make([][]uint8, len(grid))
	ghost := make([][]bool, len(grid))
	for y, row := range grid {
		cells[y] = append([]uint8(nil), row...)
		ghost[y] = make([]bool, len(row))
	}
	if p == nil {
		return cells, ghost
	}

	inside := func(x, y int) bool {
		return y >= 0 && y < len(cells) && x >= 0 && x < len(cells[y])
	}
	if ghostY > p.Y {
		for _, c := range p.Cells() {
			x, y := c[0], c[1]-p.Y+ghostY
			if inside(x, y) && cells[y][x] == board.Empty {
				ghost[y][x] = true
			}
		}
	}
	for _, c := range p.Cells() {
		x, y := c[0], c[1]
		if inside(x, y) {
			cells[y][x] = p.Kind.Color()
			ghost[y][x] = false
		}
	}
	return cells, ghost
}

// RenderBoard 渲染本机棋盘，ghostY < 0 表示不显示影子
func RenderBoard(grid [][]uint8, p *piece.Piece, ghostY int) string {
	cells, ghost := overlay(grid, p, ghostY)

	var sb strings.Builder
	for y, row := range cells {
		for x, v := range row {
			switch {
			case v != board.Empty:
				sb.WriteString(common.CellStyle(v).Render(common.BlockCell))
			case ghost[y][x]:
				sb.WriteString(common.DimStyle.Render(common.GhostCell))
			default:
				sb.WriteString(common.DimStyle.Render(common.EmptyCell))
			}
		}
		if y < len(cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return common.BoxStyle.Render(sb.String())
}

// RenderMiniBoard 渲染对手的缩小棋盘（每格一列）
func RenderMiniBoard(grid [][]uint8, p *piece.Piece) string {
	cells, _ := overlay(grid, p, -1)

	var sb strings.Builder
	for y, row := range cells {
		for _, v := range row {
			if v == board.Empty {
				sb.WriteString(common.DimStyle.Render(common.MiniEmpty))
			} else {
				sb.WriteString(common.CellStyle(v).Render(common.MiniBlock))
			}
		}
		if y < len(cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderPiecePreview 渲染单个方块（暂存或预览）
func RenderPiecePreview(kind piece.Kind) string {
	if !kind.Valid() {
		return common.DimStyle.Render("--")
	}
	p := piece.New(kind, 0, -1)

	var sb strings.Builder
	for y, row := range p.Shape {
		for _, filled := range row {
			if filled {
				sb.WriteString(common.CellStyle(kind.Color()).Render(common.BlockCell))
			} else {
				sb.WriteString("  ")
			}
		}
		if y < len(p.Shape)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
