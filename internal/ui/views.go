package ui

import (
	"github.com/palemoky/tetris-battle/internal/ui/common"
	"github.com/palemoky/tetris-battle/internal/ui/view"
)

// View 渲染当前阶段
func (m *Model) View() string {
	var s string
	switch m.phase {
	case PhaseLobby:
		s = view.LobbyView(m.lobbyData())
	case PhasePlaying:
		s = view.GameView(m.gameData())
	case PhaseResults:
		s = view.ResultsView(m.session.Result(), m.coord.PlayerID(), m.width, m.helpView())
	case PhaseLost:
		s = view.LostView(m.err, m.opts.Rejoin != nil, m.notice, m.width)
	}
	return common.DocStyle.Render(s)
}

func (m *Model) helpView() string {
	return m.help.View(m.keys)
}

func (m *Model) lobbyData() view.LobbyData {
	return view.LobbyData{
		Width:       m.width,
		IsHost:      m.isHost,
		Addr:        m.addr,
		SelfID:      m.coord.PlayerID(),
		PlayerIDs:   m.lobby.PlayerIDs,
		PlayerCount: m.lobby.PlayerCount,
		MaxPlayers:  m.opts.Config.Server.MaxClients + 1,
		Notice:      m.notice,
		Help:        m.helpView(),
	}
}

func (m *Model) gameData() view.GameData {
	s := m.session
	e := s.Engine()
	local := s.Match().Local()

	d := view.GameData{
		Width:     m.width,
		Name:      m.opts.Name,
		Grid:      e.Grid(),
		GhostY:    -1,
		Hold:      e.HoldKind(),
		CanHold:   e.CanHold(),
		Preview:   e.Preview(),
		Score:     e.Score(),
		Lines:     e.Lines(),
		Combo:     e.Combo(),
		B2B:       e.B2B(),
		Pending:   local.PendingGarbage(),
		Fall:      e.FallInterval(),
		Alive:     local.Alive,
		Rank:      local.Rank,
		Target:    s.Target(),
		Countdown: s.Countdown(),
		Notice:    m.notice,
		Help:      m.helpView(),
	}
	if !e.GameOver() {
		d.Piece = e.Current()
		d.GhostY = e.GhostY()
	}

	for _, p := range s.Match().Players() {
		if p.ID == local.ID {
			continue
		}
		grid := p.Grid
		if grid == nil {
			grid = blankGrid(e.Width(), e.Height())
		}
		d.Opponents = append(d.Opponents, view.Opponent{
			ID:           p.ID,
			Name:         p.Name,
			Grid:         grid,
			Piece:        p.Piece,
			Score:        p.Score,
			Pending:      p.ReportedGarbage,
			Alive:        p.Alive,
			Rank:         p.Rank,
			Disconnected: p.Disconnected,
		})
	}
	return d
}

// blankGrid 还没收到快照的对手显示空棋盘
func blankGrid(w, h int) [][]uint8 {
	grid := make([][]uint8, h)
	for y := range grid {
		grid[y] = make([]uint8, w)
	}
	return grid
}
