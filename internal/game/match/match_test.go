package match

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := New(2, []int{3, 0, 2, 0})
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, []int{0, 2, 3}, m.Survivors())
	assert.Equal(t, 2, m.Local().ID)
	for _, p := range m.Players() {
		assert.True(t, p.Alive)
		assert.Equal(t, -1, p.Combo)
		assert.Equal(t, NoTarget, p.Target)
	}
}

func TestEliminate_RankIsSurvivorCount(t *testing.T) {
	t.Parallel()

	m := New(0, []int{0, 1, 2, 3})

	rank, ok := m.Eliminate(2)
	require.True(t, ok)
	assert.Equal(t, 4, rank)

	_, ok = m.Eliminate(2)
	assert.False(t, ok, "never resurrected or ranked twice")
	_, ok = m.Eliminate(9)
	assert.False(t, ok)

	rank, _ = m.Eliminate(0)
	assert.Equal(t, 3, rank)
	assert.False(t, m.Over())

	rank, _ = m.Eliminate(3)
	assert.Equal(t, 2, rank)
	assert.True(t, m.Over())

	assert.Equal(t, 1, m.Finalize())
	p, _ := m.Player(1)
	assert.Equal(t, 1, p.Rank)

	var order []int
	for _, s := range m.Standings() {
		order = append(order, s.ID)
	}
	assert.Equal(t, []int{1, 3, 0, 2}, order)
}

func TestFinalize_NotOver(t *testing.T) {
	t.Parallel()

	m := New(0, []int{0, 1, 2})
	m.Eliminate(1)
	assert.Equal(t, -1, m.Finalize())
	p, _ := m.Player(0)
	assert.Equal(t, 0, p.Rank)
}

func TestFinalize_SimultaneousLastElimination(t *testing.T) {
	t.Parallel()

	m := New(0, []int{0, 1})
	// 同一 tick 内按 ID 升序处理
	m.Eliminate(0)
	m.Eliminate(1)
	assert.True(t, m.Over())
	assert.Equal(t, -1, m.Finalize())

	p0, _ := m.Player(0)
	p1, _ := m.Player(1)
	assert.Equal(t, 2, p0.Rank)
	assert.Equal(t, 1, p1.Rank)
}

func TestCreditAttack_DeltaOnly(t *testing.T) {
	t.Parallel()

	m := New(1, []int{0, 1, 2})

	assert.Equal(t, 2, m.CreditAttack(0, 2))
	assert.Equal(t, 0, m.CreditAttack(0, 2), "same snapshot seen twice")
	assert.Equal(t, 3, m.CreditAttack(0, 5), "intermediate snapshot overwritten")
	assert.Equal(t, 1, m.CreditAttack(2, 1))
	assert.Equal(t, 0, m.CreditAttack(1, 4), "own totals are ignored")

	assert.Equal(t, 6, m.Local().PendingGarbage())
	assert.Equal(t, 6, m.Local().TakeGarbage())
	assert.Equal(t, 0, m.Local().PendingGarbage())
}

func TestPendingGarbage_Concurrent(t *testing.T) {
	t.Parallel()

	p := NewPlayerState(0)
	var wg sync.WaitGroup
	total := 0

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 1000 {
			p.AddGarbage(1)
		}
	}()
	for range 1000 {
		total += p.TakeGarbage()
	}
	wg.Wait()
	total += p.TakeGarbage()

	assert.Equal(t, 1000, total)
}

func TestAddGarbage_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	p := NewPlayerState(0)
	p.AddGarbage(0)
	p.AddGarbage(-3)
	assert.Equal(t, 0, p.PendingGarbage())
}
