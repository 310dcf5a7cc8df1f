package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/tetris-battle/internal/logger"
	"github.com/palemoky/tetris-battle/internal/session"
	"github.com/palemoky/tetris-battle/internal/sound"
	"github.com/palemoky/tetris-battle/internal/ui/common"
	"github.com/palemoky/tetris-battle/internal/ui/input"
)

// Update 处理消息
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tickMsg:
		m.handleTick(time.Time(msg))
		return m, m.tick()

	case rejoinedMsg:
		m.handleRejoined(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil
	}

	switch m.phase {
	case PhaseLobby:
		if key.Matches(msg, m.keys.Start) && m.start != nil {
			m.startHost()
		}
	case PhasePlaying:
		if m.session.CountingDown() {
			return nil
		}
		cue, _ := input.ApplyGameKey(m.keys, msg, m.session.Engine())
		m.play(cue)
	case PhaseLost:
		if key.Matches(msg, m.keys.Start) {
			return m.rejoin()
		}
	}
	return nil
}

// rejoin 在后台重新连接主机，结果以 rejoinedMsg 返回
func (m *Model) rejoin() tea.Cmd {
	dial := m.opts.Rejoin
	if dial == nil || m.rejoining {
		return nil
	}
	m.rejoining = true
	m.setNotice("正在重新连接...")
	return func() tea.Msg {
		c, err := dial()
		return rejoinedMsg{member: c, err: err}
	}
}

func (m *Model) handleRejoined(msg rejoinedMsg) {
	m.rejoining = false
	if msg.err != nil {
		logger.LogError("rejoin failed: %v", msg.err)
		m.setNotice(msg.err.Error())
		return
	}
	if m.member != nil {
		_ = m.member.Close()
	}
	m.attach(msg.member)
	m.setNotice("✅ 已重新加入主机")
	logger.LogInfo("rejoined as player %d", msg.member.PlayerID())
}

func (m *Model) startHost() {
	ids, err := m.start()
	if err != nil {
		m.setNotice(err.Error())
		return
	}
	m.begin(ids)
}

// handleTick 按实际经过的时间推进大厅或对局
func (m *Model) handleTick(now time.Time) {
	dt := m.opts.Config.Game.TickInterval()
	if !m.lastTick.IsZero() {
		dt = min(max(now.Sub(m.lastTick), 0), maxTickStep)
	}
	m.lastTick = now

	if m.noticeLeft > 0 {
		m.noticeLeft -= dt
		if m.noticeLeft <= 0 {
			m.notice = ""
		}
	}

	switch m.phase {
	case PhaseLobby:
		m.tickLobby()
	case PhasePlaying:
		m.tickSession(dt)
	}
}

func (m *Model) tickLobby() {
	status, ok := m.poll()
	if m.coord.Lost() {
		m.lose()
		return
	}
	if !ok {
		return
	}
	m.lobby = status
	if status.Started && m.start == nil {
		m.begin(status.PlayerIDs)
	}
}

func (m *Model) tickSession(dt time.Duration) {
	s := m.session
	s.Tick(dt)
	m.handleEvents(s.DrainEvents())

	if s.CountingDown() {
		secs := int((s.Countdown() + time.Second - 1) / time.Second)
		if secs != m.lastCount {
			m.lastCount = secs
			m.play(sound.CueCountdown)
		}
	}

	switch {
	case s.Lost():
		m.lose()
	case s.Over():
		m.phase = PhaseResults
	}
}

func (m *Model) lose() {
	from := m.phase
	m.phase = PhaseLost
	if m.cause != nil {
		m.err = m.cause()
	}
	logger.LogError("connection lost in phase %d: %v", from, m.err)
}

// handleEvents 把对局事件转换为音效和提示
func (m *Model) handleEvents(events []session.Event) {
	self := m.coord.PlayerID()
	for _, ev := range events {
		switch ev.Kind {
		case session.EventLineClear:
			m.play(sound.CueLineClear)
		case session.EventTetris:
			m.play(sound.CueTetris)
			m.setNotice("🔥 TETRIS!")
		case session.EventGarbageIn:
			m.play(sound.CueGarbage)
			m.setNotice(fmt.Sprintf("⚠️ %s 发来 %d 行垃圾", m.label(ev.Player), ev.Amount))
		case session.EventAttack:
			m.play(sound.CueAttack)
			m.setNotice(fmt.Sprintf("⚔️ 向 %s 发送 %d 行", m.label(ev.Player), ev.Amount))
		case session.EventKO:
			m.play(sound.CueKO)
			if ev.Player == self {
				m.setNotice(fmt.Sprintf("%s 你已出局，第 %d 名", common.KOIcon, ev.Amount))
			} else {
				m.setNotice(fmt.Sprintf("%s %s 出局", common.KOIcon, m.label(ev.Player)))
			}
		case session.EventMatchOver:
			if ev.Player == self {
				m.play(sound.CueWin)
			} else {
				m.play(sound.CueLose)
			}
		}
	}
}

func (m *Model) label(id int) string {
	if m.session != nil {
		if p, ok := m.session.Match().Player(id); ok {
			return common.PlayerLabel(id, p.Name)
		}
	}
	return common.PlayerLabel(id, "")
}
