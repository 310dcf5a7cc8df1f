package piece

// shapes 各方块的初始形状（出生朝向）
var shapes = map[Kind][][]bool{
	KindI: {
		{true, true, true, true},
	},
	KindO: {
		{true, true},
		{true, true},
	},
	KindT: {
		{false, true, false},
		{true, true, true},
	},
	KindS: {
		{false, true, true},
		{true, true, false},
	},
	KindZ: {
		{true, true, false},
		{false, true, true},
	},
	KindJ: {
		{true, false, false},
		{true, true, true},
	},
	KindL: {
		{false, false, true},
		{true, true, true},
	},
}

// Piece 正在下落的方块
type Piece struct {
	Kind  Kind
	Shape [][]bool
	X, Y  int // 左上角在棋盘中的坐标
	Owner int // 所属玩家 ID
}

// New 在宽度为 boardWidth 的棋盘顶部中央生成方块
func New(kind Kind, boardWidth, owner int) *Piece {
	shape := cloneShape(shapes[kind])
	return &Piece{
		Kind:  kind,
		Shape: shape,
		X:     boardWidth/2 - len(shape[0])/2,
		Y:     0,
		Owner: owner,
	}
}

// Clone 深拷贝
func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	c := *p
	c.Shape = cloneShape(p.Shape)
	return &c
}

// Width 形状宽度
func (p *Piece) Width() int {
	if len(p.Shape) == 0 {
		return 0
	}
	return len(p.Shape[0])
}

// Height 形状高度
func (p *Piece) Height() int {
	return len(p.Shape)
}

// Cells 返回所有实心格子的绝对坐标
func (p *Piece) Cells() [][2]int {
	cells := make([][2]int, 0, 4)
	for y, row := range p.Shape {
		for x, filled := range row {
			if filled {
				cells = append(cells, [2]int{p.X + x, p.Y + y})
			}
		}
	}
	return cells
}

// RotateCW 顺时针旋转 90 度
func (p *Piece) RotateCW() {
	p.Shape = rotateCW(p.Shape)
}

// RotateCCW 逆时针旋转 90 度
func (p *Piece) RotateCCW() {
	for range 3 {
		p.Shape = rotateCW(p.Shape)
	}
}

// Rotate180 旋转 180 度
func (p *Piece) Rotate180() {
	p.Shape = rotateCW(rotateCW(p.Shape))
}

// rotateCW 矩阵顺时针旋转：new[r][c] = old[h-1-c][r]
func rotateCW(shape [][]bool) [][]bool {
	h := len(shape)
	if h == 0 {
		return shape
	}
	w := len(shape[0])
	rotated := make([][]bool, w)
	for r := range rotated {
		rotated[r] = make([]bool, h)
		for c := range h {
			rotated[r][c] = shape[h-1-c][r]
		}
	}
	return rotated
}

func cloneShape(shape [][]bool) [][]bool {
	out := make([][]bool, len(shape))
	for i, row := range shape {
		out[i] = append([]bool(nil), row...)
	}
	return out
}
