package piece

// Kind 方块种类（七种标准四格骨牌）
type Kind uint8

const (
	KindNone Kind = iota
	KindI
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// AllKinds 一个完整 bag 中的全部方块
var AllKinds = [...]Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}

// kindNames 方块名称映射表
var kindNames = map[Kind]string{
	KindI: "I",
	KindO: "O",
	KindT: "T",
	KindS: "S",
	KindZ: "Z",
	KindJ: "J",
	KindL: "L",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Valid 是否是七种方块之一
func (k Kind) Valid() bool {
	return k >= KindI && k <= KindL
}

// Color 写入棋盘的格子值，直接使用种类编号
func (k Kind) Color() uint8 {
	return uint8(k)
}

// ParseKind 从名称解析方块种类
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindNone, false
}
