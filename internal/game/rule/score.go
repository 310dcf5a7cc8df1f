package rule

// 各消行数对应的基础分
var basePoints = [...]int{0, 100, 300, 500, 800}

const (
	// DifficultLines 一次消除达到该行数即为“困难消除”（Tetris）
	DifficultLines = 4
	// ComboBonus 每段连击的额外加分
	ComboBonus = 50

	// SoftDropPoints 软降每格得分
	SoftDropPoints = 1
	// HardDropPoints 硬降每格得分
	HardDropPoints = 2
)

// Result 一次锁定后的计分结果
type Result struct {
	Points int
	Combo  int // -1 表示没有连击
	B2B    bool
}

// Score 根据消行数和之前的连击/B2B 状态计算得分
//
// 不消行：得 0 分，连击归为 -1，B2B 保持不变。
// 消行：连击 +1；连击前值大于 0 时加 50×前值；
// 4 行为困难消除，前一次也是困难消除时基础分 ×1.5。
func Score(lines, priorCombo int, priorB2B bool) Result {
	if lines <= 0 {
		return Result{Points: 0, Combo: -1, B2B: priorB2B}
	}
	if lines > DifficultLines {
		lines = DifficultLines
	}
	if priorCombo < -1 {
		priorCombo = -1
	}

	difficult := lines == DifficultLines
	points := basePoints[lines]
	if difficult && priorB2B {
		points = points * 3 / 2
	}
	if priorCombo > 0 {
		points += ComboBonus * priorCombo
	}

	return Result{
		Points: points,
		Combo:  priorCombo + 1,
		B2B:    difficult,
	}
}

// Damage 消行产生的垃圾行数：消行时至少 1 行，否则向上取整的一半
func Damage(lines int) int {
	if lines <= 0 {
		return 0
	}
	return max(1, (lines+1)/2)
}
