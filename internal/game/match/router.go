package match

import (
	"maps"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/palemoky/tetris-battle/internal/game/rule"
)

// DefaultTargetInterval 多人局攻击目标的轮换间隔
const DefaultTargetInterval = 2 * time.Second

// NoTarget 没有可攻击的对手
const NoTarget = -1

// Attack 一次攻击
type Attack struct {
	Target int
	Amount int
}

// Router 把本地玩家的消行转换为对某个对手的攻击
// 两人存活时固定攻击对方；三人及以上时定时随机轮换目标，目标被淘汰立即重选
type Router struct {
	self      int
	interval  time.Duration
	rng       *rand.Rand
	target    int
	sinceRoll time.Duration
	totals    map[int]int // 目标 -> 累计发送的垃圾行
}

// NewRouter 创建攻击路由
func NewRouter(self int, interval time.Duration, rng *rand.Rand) *Router {
	if interval <= 0 {
		interval = DefaultTargetInterval
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Router{
		self:     self,
		interval: interval,
		rng:      rng,
		target:   NoTarget,
		totals:   make(map[int]int),
	}
}

// Update 推进轮换计时并根据存活名单修正目标
func (r *Router) Update(dt time.Duration, survivors []int) {
	opponents := make([]int, 0, len(survivors))
	for _, id := range survivors {
		if id != r.self {
			opponents = append(opponents, id)
		}
	}

	switch len(opponents) {
	case 0:
		r.target = NoTarget
		r.sinceRoll = 0
		return
	case 1:
		r.target = opponents[0]
		r.sinceRoll = 0
		return
	}

	r.sinceRoll += dt
	if !slices.Contains(opponents, r.target) || r.sinceRoll >= r.interval {
		r.target = opponents[r.rng.IntN(len(opponents))]
		r.sinceRoll = 0
	}
}

// Target 当前目标
func (r *Router) Target() int { return r.target }

// Route 计算消行产生的攻击并记入累计值
func (r *Router) Route(lines int) Attack {
	amount := rule.Damage(lines)
	if amount == 0 || r.target == NoTarget {
		return Attack{Target: NoTarget}
	}
	r.totals[r.target] += amount
	return Attack{Target: r.target, Amount: amount}
}

// Totals 每个目标累计收到的攻击（副本）
func (r *Router) Totals() map[int]int {
	return maps.Clone(r.totals)
}
