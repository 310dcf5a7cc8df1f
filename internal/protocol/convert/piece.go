package convert

import (
	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/protocol"
)

// PieceToInfo 将 piece.Piece 转换为 protocol.PieceInfo
func PieceToInfo(p *piece.Piece) *protocol.PieceInfo {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &protocol.PieceInfo{
		Kind:  uint8(c.Kind),
		X:     c.X,
		Y:     c.Y,
		Shape: c.Shape,
	}
}

// InfoToPiece 将 protocol.PieceInfo 转换为 piece.Piece，未知种类返回 nil
func InfoToPiece(info *protocol.PieceInfo, owner int) *piece.Piece {
	if info == nil || !piece.Kind(info.Kind).Valid() {
		return nil
	}
	p := &piece.Piece{
		Kind:  piece.Kind(info.Kind),
		X:     info.X,
		Y:     info.Y,
		Owner: owner,
	}
	p.Shape = make([][]bool, len(info.Shape))
	for i, row := range info.Shape {
		p.Shape[i] = append([]bool(nil), row...)
	}
	return p
}

// CloneGrid 深拷贝棋盘
func CloneGrid(grid [][]uint8) [][]uint8 {
	if grid == nil {
		return nil
	}
	out := make([][]uint8, len(grid))
	for i, row := range grid {
		out[i] = append([]uint8(nil), row...)
	}
	return out
}
