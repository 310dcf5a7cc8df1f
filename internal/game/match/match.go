package match

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaxPlayers 一局最多玩家数
const MaxPlayers = 4

// Match 一局对战的玩家名册与淘汰记录
// 只在 tick 协程中访问；跨协程的只有每个玩家的待接收垃圾计数
type Match struct {
	ID        string
	StartedAt time.Time

	localID  int
	players  map[int]*PlayerState
	ids      []int       // 升序
	credited map[int]int // 攻击者 -> 已计入本地玩家的累计垃圾行
}

// New 创建对局，ids 为全部玩家 ID，localID 为本机玩家
func New(localID int, ids []int) *Match {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	m := &Match{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		localID:   localID,
		players:   make(map[int]*PlayerState, len(sorted)),
		ids:       sorted,
		credited:  make(map[int]int),
	}
	for _, id := range sorted {
		m.players[id] = NewPlayerState(id)
	}
	if _, ok := m.players[localID]; !ok {
		m.players[localID] = NewPlayerState(localID)
		m.ids = append(m.ids, localID)
		slices.Sort(m.ids)
	}
	return m
}

// LocalID 本机玩家 ID
func (m *Match) LocalID() int { return m.localID }

// Local 本机玩家
func (m *Match) Local() *PlayerState { return m.players[m.localID] }

// Player 按 ID 查找玩家
func (m *Match) Player(id int) (*PlayerState, bool) {
	p, ok := m.players[id]
	return p, ok
}

// Players 按 ID 升序返回全部玩家
func (m *Match) Players() []*PlayerState {
	out := make([]*PlayerState, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.players[id])
	}
	return out
}

// Survivors 按 ID 升序返回存活玩家
func (m *Match) Survivors() []int {
	var out []int
	for _, id := range m.ids {
		if m.players[id].Alive {
			out = append(out, id)
		}
	}
	return out
}

// Eliminate 淘汰玩家，名次为淘汰时的存活人数
// 已淘汰或不存在的玩家返回 false
func (m *Match) Eliminate(id int) (int, bool) {
	p, ok := m.players[id]
	if !ok || !p.Alive {
		return 0, false
	}
	p.Rank = len(m.Survivors())
	p.Alive = false
	return p.Rank, true
}

// Over 存活人数不超过 1 时对局结束
func (m *Match) Over() bool {
	return len(m.Survivors()) <= 1
}

// Finalize 对局结束后给最后的幸存者第 1 名，返回胜者 ID（无则 -1）
func (m *Match) Finalize() int {
	if !m.Over() {
		return -1
	}
	survivors := m.Survivors()
	if len(survivors) == 0 {
		return -1
	}
	winner := m.players[survivors[0]]
	winner.Rank = 1
	return winner.ID
}

// Standings 按名次排序的玩家，名次未定的排在最后
func (m *Match) Standings() []*PlayerState {
	out := m.Players()
	slices.SortStableFunc(out, func(a, b *PlayerState) int {
		switch {
		case a.Rank == b.Rank:
			return 0
		case a.Rank == 0:
			return 1
		case b.Rank == 0:
			return -1
		default:
			return a.Rank - b.Rank
		}
	})
	return out
}

// CreditAttack 根据攻击者公布的累计攻击量，给本地玩家计入新增部分
// 快照被覆盖也不会丢失或重复计算攻击
func (m *Match) CreditAttack(from, total int) int {
	if from == m.localID {
		return 0
	}
	prev := m.credited[from]
	if total <= prev {
		return 0
	}
	m.credited[from] = total
	delta := total - prev
	m.Local().AddGarbage(delta)
	return delta
}
