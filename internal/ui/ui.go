// Package ui 终端界面：大厅、对局和结算画面
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/tetris-battle/internal/config"
	"github.com/palemoky/tetris-battle/internal/session"
	"github.com/palemoky/tetris-battle/internal/sound"
	"github.com/palemoky/tetris-battle/internal/ui/input"
)

// Phase 界面阶段
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseResults
	PhaseLost
)

const (
	// noticeDuration 提示信息显示时长
	noticeDuration = 1500 * time.Millisecond
	// maxTickStep 单个 tick 最多推进的时间，终端卡顿后不会一次跳过太多
	maxTickStep = 250 * time.Millisecond
)

// tickMsg 驱动对局的定时消息
type tickMsg time.Time

// rejoinedMsg 重新连接的结果
type rejoinedMsg struct {
	member Member
	err    error
}

// Member 客户端一侧与主机的连接
type Member interface {
	session.Coordinator
	PollLobby() (session.LobbyStatus, bool)
	Err() error
	Close() error
}

// Options 界面参数
type Options struct {
	Name     string
	Config   *config.Config
	Recorder session.Recorder // 只有主机使用
	Sound    *sound.SoundManager
	Rejoin   func() (Member, error) // 客户端断线后重新连接主机，nil 表示只能退出
}

// Model 主界面
type Model struct {
	opts   Options
	coord  session.Coordinator
	addr   string
	isHost bool

	poll   func() (session.LobbyStatus, bool)
	start  func() ([]int, error) // 客户端为 nil
	cause  func() error          // 断线原因
	member Member                // 主机为 nil

	rejoining bool

	phase     Phase
	lobby     session.LobbyStatus
	session   *session.Session
	lastTick  time.Time
	lastCount int

	notice     string
	noticeLeft time.Duration
	err        error

	keys     input.KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

// NewHostModel 主机界面，addr 为展示给其他玩家的地址
func NewHostModel(h *session.Host, addr string, opts Options) *Model {
	m := newModel(h, addr, opts)
	m.isHost = true
	m.poll = func() (session.LobbyStatus, bool) { return h.PollLobby(), true }
	m.start = h.Start
	m.lobby = session.LobbyStatus{PlayerCount: 1, PlayerIDs: []int{session.HostID}}
	return m
}

// NewClientModel 客户端界面
func NewClientModel(c Member, addr string, opts Options) *Model {
	opts.Recorder = nil
	m := newModel(c, addr, opts)
	m.attach(c)
	return m
}

// attach 切换到新的主机连接，回到大厅
func (m *Model) attach(c Member) {
	m.member = c
	m.coord = c
	m.poll = c.PollLobby
	m.cause = c.Err
	m.phase = PhaseLobby
	m.lobby = session.LobbyStatus{}
	m.session = nil
	m.err = nil
}

// Close 关闭当前的主机连接
func (m *Model) Close() error {
	if m.member == nil {
		return nil
	}
	return m.member.Close()
}

func newModel(coord session.Coordinator, addr string, opts Options) *Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Model{
		opts:  opts,
		coord: coord,
		addr:  addr,
		phase: PhaseLobby,
		keys:  input.DefaultKeyMap(),
		help:  help.New(),
	}
}

// Init 启动 tick
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Config.Game.TickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Phase 当前阶段
func (m *Model) Phase() Phase { return m.phase }

// Session 当前对局，开局前为 nil
func (m *Model) Session() *session.Session { return m.session }

func (m *Model) sessionConfig() session.Config {
	g := &m.opts.Config.Game
	return session.Config{
		Engine:         g.EngineConfig(),
		TargetInterval: g.TargetIntervalDuration(),
		Countdown:      g.CountdownDuration(),
		Name:           m.opts.Name,
	}
}

// begin 收到开始信号后创建对局
func (m *Model) begin(ids []int) {
	m.session = session.New(m.coord, ids, m.sessionConfig(), m.opts.Recorder)
	m.phase = PhasePlaying
	m.lastCount = 0
}

func (m *Model) play(cue string) {
	if cue == "" || m.opts.Sound == nil {
		return
	}
	m.opts.Sound.Play(cue)
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeLeft = noticeDuration
}
