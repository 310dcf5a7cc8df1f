package match

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRouter(self int) *Router {
	return NewRouter(self, 2*time.Second, rand.New(rand.NewPCG(3, 4)))
}

func TestRouter_TwoPlayersAlwaysOpponent(t *testing.T) {
	t.Parallel()

	r := newTestRouter(0)
	for range 20 {
		r.Update(time.Second, []int{0, 3})
		assert.Equal(t, 3, r.Target())
	}

	a := r.Route(4)
	assert.Equal(t, Attack{Target: 3, Amount: 2}, a)
	assert.Equal(t, map[int]int{3: 2}, r.Totals())
}

func TestRouter_NoOpponents(t *testing.T) {
	t.Parallel()

	r := newTestRouter(1)
	r.Update(time.Second, []int{1})
	assert.Equal(t, NoTarget, r.Target())
	assert.Equal(t, Attack{Target: NoTarget}, r.Route(4))
	assert.Empty(t, r.Totals())
}

func TestRouter_NoLinesNoAttack(t *testing.T) {
	t.Parallel()

	r := newTestRouter(0)
	r.Update(0, []int{0, 1})
	assert.Equal(t, Attack{Target: NoTarget}, r.Route(0))
	assert.Empty(t, r.Totals())
}

func TestRouter_RotatingTargetExcludesSelf(t *testing.T) {
	t.Parallel()

	r := newTestRouter(1)
	survivors := []int{0, 1, 2, 3}
	seen := make(map[int]int)

	r.Update(0, survivors)
	first := r.Target()
	assert.NotEqual(t, 1, first)

	// 间隔内目标不变
	r.Update(time.Second, survivors)
	assert.Equal(t, first, r.Target())

	for range 300 {
		r.Update(2*time.Second, survivors)
		seen[r.Target()]++
	}
	assert.NotContains(t, seen, 1)
	assert.Len(t, seen, 3, "every opponent gets picked eventually")
}

func TestRouter_RerollWhenTargetEliminated(t *testing.T) {
	t.Parallel()

	r := newTestRouter(0)
	r.Update(0, []int{0, 1, 2, 3})
	victim := r.Target()

	remaining := []int{0}
	for _, id := range []int{1, 2, 3} {
		if id != victim {
			remaining = append(remaining, id)
		}
	}
	r.Update(time.Millisecond, remaining)
	assert.NotEqual(t, victim, r.Target())
	assert.Contains(t, remaining[1:], r.Target())
}

func TestRouter_TotalsAccumulate(t *testing.T) {
	t.Parallel()

	r := newTestRouter(2)
	r.Update(0, []int{1, 2})
	r.Route(1)
	r.Route(3)
	r.Route(4)
	assert.Equal(t, map[int]int{1: 5}, r.Totals())

	totals := r.Totals()
	totals[1] = 100
	assert.Equal(t, 5, r.Totals()[1], "Totals returns a copy")
}
