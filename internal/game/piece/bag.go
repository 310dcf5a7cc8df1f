package piece

import "math/rand/v2"

// Source 方块来源
type Source interface {
	Next() Kind
}

// Bag 7-bag 随机器：每 7 次抽取恰好包含每种方块各一次
type Bag struct {
	rng   *rand.Rand
	queue []Kind
}

// NewBag 使用给定种子创建 bag，相同种子产生相同序列
func NewBag(seed uint64) *Bag {
	return &Bag{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		queue: make([]Kind, 0, len(AllKinds)),
	}
}

// Next 取出下一个方块，bag 空时补充一组新的随机排列
func (b *Bag) Next() Kind {
	if len(b.queue) == 0 {
		b.refill()
	}
	k := b.queue[0]
	b.queue = b.queue[1:]
	return k
}

func (b *Bag) refill() {
	b.queue = append(b.queue[:0], AllKinds[:]...)
	b.rng.Shuffle(len(b.queue), func(i, j int) {
		b.queue[i], b.queue[j] = b.queue[j], b.queue[i]
	})
}
