package session

import (
	"context"
	"log"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/palemoky/tetris-battle/internal/game/engine"
	"github.com/palemoky/tetris-battle/internal/game/match"
	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/game/rule"
	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/convert"
	"github.com/palemoky/tetris-battle/internal/storage"
)

const (
	// DefaultCountdown 开始信号到第一个 tick 之间的倒计时
	DefaultCountdown = 3 * time.Second
	// recordTimeout 保存对局结果的超时
	recordTimeout = 2 * time.Second
)

// Recorder 对局结果的持久化（只有主机配置）
type Recorder interface {
	RecordMatch(ctx context.Context, m *storage.MatchResult) error
}

// Config 对局参数
type Config struct {
	Engine         engine.Config
	TargetInterval time.Duration
	Countdown      time.Duration // 0 使用默认值，负数表示不倒计时
	Seed           uint64        // 0 表示随机
	Name           string
}

// Session 一名玩家视角的对局：驱动本机引擎，合并其他玩家的快照，判定淘汰与胜负
// 所有方法只在 tick 协程中调用（输入命令直接作用于 Engine()）
type Session struct {
	cfg      Config
	coord    Coordinator
	recorder Recorder

	engine *engine.Engine
	match  *match.Match
	router *match.Router

	countdown time.Duration
	seq       uint64
	endedAt   time.Time

	attackAmount int
	attackTarget int

	over   bool
	lost   bool
	winner int
	result *storage.MatchResult

	events    []Event
	recording sync.WaitGroup
}

// New 创建对局，ids 为开始信号中的全部玩家 ID；recorder 可以为 nil
func New(coord Coordinator, ids []int, cfg Config, recorder Recorder) *Session {
	if cfg.Countdown == 0 {
		cfg.Countdown = DefaultCountdown
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	self := coord.PlayerID()
	m := match.New(self, ids)
	local := m.Local()
	local.Name = cfg.Name

	s := &Session{
		cfg:          cfg,
		coord:        coord,
		recorder:     recorder,
		match:        m,
		router:       match.NewRouter(self, cfg.TargetInterval, rand.New(rand.NewPCG(seed, 1))),
		countdown:    max(cfg.Countdown, 0),
		attackTarget: match.NoTarget,
		winner:       -1,
	}
	s.engine = engine.New(cfg.Engine, self, piece.NewBag(seed), local, rand.New(rand.NewPCG(seed, 2)))
	return s
}

// Tick 推进一个 tick：倒计时，或合并快照、推进引擎、路由攻击、判定淘汰并发布本机状态
func (s *Session) Tick(dt time.Duration) {
	if s.over || s.lost {
		return
	}
	if s.coord.Lost() {
		s.lost = true
		log.Printf("🔌 与主机的连接已断开")
		return
	}

	if s.countdown > 0 {
		s.countdown -= dt
		s.coord.Publish(s.snapshot())
		return
	}

	var eliminated []int
	if b, ok := s.coord.Receive(); ok {
		eliminated = s.applyWorld(b)
	}
	if s.coord.Lost() {
		s.lost = true
		return
	}

	// 快照带来的淘汰先于攻击路由生效，本 tick 的锁定不会打向已出局的玩家
	s.eliminate(eliminated)

	s.engine.Tick(dt)
	s.router.Update(dt, s.match.Survivors())

	s.attackAmount, s.attackTarget = 0, match.NoTarget
	for _, res := range s.engine.DrainLocks() {
		s.handleLock(res)
	}

	if s.engine.GameOver() && s.match.Local().Alive {
		s.eliminate([]int{s.match.LocalID()})
	}

	s.coord.Publish(s.snapshot())

	if s.match.Over() {
		s.finish()
	}
}

// eliminate 同一批淘汰按 ID 升序处理，各端名次一致
func (s *Session) eliminate(ids []int) {
	slices.Sort(ids)
	for _, id := range ids {
		if rank, ok := s.match.Eliminate(id); ok {
			s.emit(EventKO, id, rank)
			log.Printf("💀 玩家 %d 被淘汰，名次 %d", id, rank)
		}
	}
}

// applyWorld 用快照覆盖其他玩家的影子状态，计入发给本机的新增攻击，返回需要淘汰的玩家
func (s *Session) applyWorld(b *protocol.BroadcastPayload) []int {
	self := s.match.LocalID()
	var eliminated []int

	for i := range b.States {
		st := &b.States[i]
		if st.PlayerID == self {
			continue
		}
		p, ok := s.match.Player(st.PlayerID)
		if !ok {
			continue
		}

		if st.Name != "" {
			p.Name = st.Name
		}
		p.Score = st.Score
		p.Lines = st.Lines
		p.Combo = st.Combo
		p.B2B = st.B2B
		p.Target = st.Target
		p.Grid = convert.CloneGrid(st.Grid)
		p.Piece = convert.InfoToPiece(st.Piece, st.PlayerID)
		p.Hold = piece.Kind(st.Hold)
		p.ReportedGarbage = st.PendingGarbage
		if st.Disconnected {
			p.Disconnected = true
		}

		if n := s.match.CreditAttack(st.PlayerID, st.AttackTotals[self]); n > 0 {
			s.emit(EventGarbageIn, st.PlayerID, n)
		}
		if st.GameOver && p.Alive {
			eliminated = append(eliminated, st.PlayerID)
		}
	}
	return eliminated
}

// handleLock 处理一次锁定：事件与攻击
func (s *Session) handleLock(res engine.LockResult) {
	if res.Lines == 0 {
		return
	}
	if res.Lines >= rule.DifficultLines {
		s.emit(EventTetris, s.match.LocalID(), res.Lines)
	} else {
		s.emit(EventLineClear, s.match.LocalID(), res.Lines)
	}

	attack := s.router.Route(res.Lines)
	if attack.Target == match.NoTarget {
		return
	}
	s.attackAmount += attack.Amount
	s.attackTarget = attack.Target
	s.emit(EventAttack, attack.Target, attack.Amount)
}

// snapshot 本机玩家本 tick 的可见状态
func (s *Session) snapshot() *protocol.GameStatePayload {
	local := s.match.Local()
	s.seq++

	st := &protocol.GameStatePayload{
		PlayerID:       local.ID,
		Name:           local.Name,
		Grid:           s.engine.Grid(),
		Score:          s.engine.Score(),
		Lines:          s.engine.Lines(),
		Combo:          s.engine.Combo(),
		B2B:            s.engine.B2B(),
		GameOver:       s.engine.GameOver() || !local.Alive,
		AttackAmount:   s.attackAmount,
		AttackTarget:   s.attackTarget,
		AttackTotals:   s.router.Totals(),
		Rank:           local.Rank,
		PendingGarbage: local.PendingGarbage(),
		Hold:           uint8(s.engine.HoldKind()),
		Target:         s.router.Target(),
		Seq:            s.seq,
	}
	if !st.GameOver {
		st.Piece = convert.PieceToInfo(s.engine.Current())
	}
	return st
}

// finish 结束对局：确定胜者，生成并保存结果
func (s *Session) finish() {
	s.over = true
	s.endedAt = time.Now()
	s.winner = s.match.Finalize()

	local := s.match.Local()
	local.Score = s.engine.Score()
	local.Lines = s.engine.Lines()

	s.result = s.buildResult()
	s.emit(EventMatchOver, s.winner, len(s.result.Players))
	log.Printf("🏆 对局结束，胜者: %d", s.winner)

	if s.recorder == nil {
		return
	}
	// 保存在后台进行，不占用 tick 协程
	result := s.result
	s.recording.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.RecordMatch(ctx, result); err != nil {
			log.Printf("⚠️ 保存对局结果失败: %v", err)
		}
	})
}

// WaitRecorded 等待后台保存对局结果完成；没有 recorder 或对局未结束时立即返回
func (s *Session) WaitRecorded() {
	s.recording.Wait()
}

func (s *Session) buildResult() *storage.MatchResult {
	r := &storage.MatchResult{
		ID:        s.match.ID,
		StartedAt: s.match.StartedAt.Unix(),
		EndedAt:   s.endedAt.Unix(),
		Winner:    s.winner,
	}
	for _, p := range s.match.Standings() {
		r.Players = append(r.Players, storage.PlayerResult{
			PlayerID:     p.ID,
			Name:         p.Name,
			Rank:         p.Rank,
			Score:        p.Score,
			Lines:        p.Lines,
			Disconnected: p.Disconnected,
		})
	}
	return r
}

func (s *Session) emit(kind EventKind, player, amount int) {
	s.events = append(s.events, Event{Kind: kind, Player: player, Amount: amount})
}

// DrainEvents 取走自上次调用以来的事件
func (s *Session) DrainEvents() []Event {
	out := s.events
	s.events = nil
	return out
}

// Engine 本机引擎，输入命令直接调用其方法
func (s *Session) Engine() *engine.Engine { return s.engine }

// Match 对局名册
func (s *Session) Match() *match.Match { return s.match }

// Target 当前攻击目标，-1 表示无
func (s *Session) Target() int { return s.router.Target() }

// Countdown 剩余倒计时
func (s *Session) Countdown() time.Duration { return max(s.countdown, 0) }

// CountingDown 是否仍在倒计时
func (s *Session) CountingDown() bool { return s.countdown > 0 }

// Over 对局是否已结束
func (s *Session) Over() bool { return s.over }

// Lost 是否因断线而终止
func (s *Session) Lost() bool { return s.lost }

// Winner 胜者 ID，未结束或无胜者时为 -1
func (s *Session) Winner() int { return s.winner }

// Result 对局结果，结束前为 nil
func (s *Session) Result() *storage.MatchResult { return s.result }
