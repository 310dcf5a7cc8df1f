package view

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/tetris-battle/internal/game/board"
	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/storage"
	"github.com/palemoky/tetris-battle/internal/ui/common"
)

func emptyGrid() [][]uint8 {
	grid := make([][]uint8, board.DefaultHeight)
	for y := range grid {
		grid[y] = make([]uint8, board.DefaultWidth)
	}
	return grid
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	grid := emptyGrid()
	p := piece.New(piece.KindO, board.DefaultWidth, 0)

	cells, ghost := overlay(grid, p, 18)

	for _, c := range p.Cells() {
		assert.Equal(t, piece.KindO.Color(), cells[c[1]][c[0]])
	}
	assert.True(t, ghost[18][4])
	assert.True(t, ghost[19][5])
	assert.False(t, ghost[0][4], "piece cells are never ghost")
	assert.Equal(t, board.Empty, grid[0][4], "source grid untouched")
}

func TestOverlay_GhostSkipsFilledCells(t *testing.T) {
	t.Parallel()

	grid := emptyGrid()
	grid[19][4] = board.Garbage
	p := piece.New(piece.KindO, board.DefaultWidth, 0)

	_, ghost := overlay(grid, p, 18)
	assert.False(t, ghost[19][4])
	assert.True(t, ghost[19][5])
}

func TestOverlay_NilPiece(t *testing.T) {
	t.Parallel()

	cells, ghost := overlay(emptyGrid(), nil, 5)
	require.Len(t, cells, board.DefaultHeight)
	for y := range ghost {
		assert.NotContains(t, ghost[y], true)
	}
}

func TestRenderMiniBoard(t *testing.T) {
	t.Parallel()

	grid := emptyGrid()
	grid[19][0] = board.Garbage
	out := RenderMiniBoard(grid, nil)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, board.DefaultHeight)
	assert.Contains(t, lines[19], common.MiniBlock)
}

func TestRenderPiecePreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kind  piece.Kind
		lines int
	}{
		{"I", piece.KindI, 1},
		{"O", piece.KindO, 2},
		{"T", piece.KindT, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := RenderPiecePreview(tt.kind)
			assert.Contains(t, out, common.BlockCell)
			assert.Len(t, strings.Split(out, "\n"), tt.lines)
		})
	}

	assert.Contains(t, RenderPiecePreview(piece.KindNone), "--")
}

func sampleGame() GameData {
	return GameData{
		Name:    "alice",
		Grid:    emptyGrid(),
		Piece:   piece.New(piece.KindT, board.DefaultWidth, 0),
		GhostY:  18,
		Hold:    piece.KindI,
		CanHold: true,
		Preview: []piece.Kind{piece.KindS, piece.KindZ},
		Score:   1234,
		Lines:   7,
		Combo:   2,
		B2B:     true,
		Pending: 3,
		Alive:   true,
		Target:  1,
		Opponents: []Opponent{
			{ID: 1, Name: "bob", Grid: emptyGrid(), Alive: true, Score: 500},
			{ID: 2, Grid: emptyGrid(), Alive: false, Rank: 3},
		},
	}
}

func TestGameView(t *testing.T) {
	t.Parallel()

	out := GameView(sampleGame())

	for _, s := range []string{"TETRIS BATTLE", "alice", "1234", "连击 2", "B2B", "垃圾 +3", "bob", "P3", common.TargetIcon, common.KOIcon} {
		assert.Contains(t, out, s)
	}
}

func TestGameView_Countdown(t *testing.T) {
	t.Parallel()

	d := sampleGame()
	d.Countdown = 2500 * time.Millisecond
	assert.Contains(t, GameView(d), "⏳ 3")
}

func TestGameView_Eliminated(t *testing.T) {
	t.Parallel()

	d := sampleGame()
	d.Alive = false
	d.Rank = 2
	d.Notice = "notice text"

	out := GameView(d)
	assert.Contains(t, out, "第 2 名")
	assert.Contains(t, out, "notice text")
}

func TestGameView_DisconnectedOpponent(t *testing.T) {
	t.Parallel()

	d := sampleGame()
	d.Opponents = []Opponent{{ID: 3, Grid: emptyGrid(), Disconnected: true}}
	d.Target = -1

	out := GameView(d)
	assert.Contains(t, out, common.LostIcon)
	assert.NotContains(t, out, common.TargetIcon)
}

func TestRenderGarbageMeter(t *testing.T) {
	t.Parallel()

	out := renderGarbageMeter(25, 4)
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.Equal(t, 4, strings.Count(out, "▌"), "capped at board height")
	assert.Empty(t, renderGarbageMeter(3, 0))
}

func TestLobbyView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     LobbyData
		expected []string
	}{
		{
			name:     "host alone",
			data:     LobbyData{IsHost: true, Addr: "10.0.0.2:5555", PlayerIDs: []int{0}, PlayerCount: 1, MaxPlayers: 4},
			expected: []string{"10.0.0.2:5555", "1/4", "P1 (你)", "等待其他玩家加入"},
		},
		{
			name:     "host can start",
			data:     LobbyData{IsHost: true, Addr: ":5555", PlayerIDs: []int{0, 1}, PlayerCount: 2, MaxPlayers: 4},
			expected: []string{"2/4", "P2", "按 Enter 开始游戏"},
		},
		{
			name:     "client waiting",
			data:     LobbyData{Addr: "host:5555", SelfID: 2, PlayerCount: 3, MaxPlayers: 4, Notice: "oops"},
			expected: []string{"host:5555", "你是 P3", "等待主机开始", "oops"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := LobbyView(tt.data)
			for _, s := range tt.expected {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestLobbyData_CanStart(t *testing.T) {
	t.Parallel()

	assert.False(t, LobbyData{IsHost: true, PlayerCount: 1}.CanStart())
	assert.True(t, LobbyData{IsHost: true, PlayerCount: 2}.CanStart())
	assert.False(t, LobbyData{PlayerCount: 4}.CanStart())
}

func TestResultsView(t *testing.T) {
	t.Parallel()

	result := &storage.MatchResult{
		Winner: 1,
		Players: []storage.PlayerResult{
			{PlayerID: 1, Name: "bob", Rank: 1, Score: 900, Lines: 12},
			{PlayerID: 0, Name: "alice", Rank: 2, Score: 400, Lines: 5},
			{PlayerID: 2, Rank: 3, Disconnected: true},
		},
	}

	out := ResultsView(result, 0, 0, "")
	for _, s := range []string{"胜者: bob", "alice*", "900", common.LostIcon, "2nd", "3rd"} {
		assert.Contains(t, out, s)
	}

	won := ResultsView(result, 1, 0, "")
	assert.Contains(t, won, "你赢了")

	assert.Contains(t, ResultsView(nil, 0, 0, ""), "没有对局数据")
}

func TestLostView(t *testing.T) {
	t.Parallel()

	out := LostView(errors.New("host timed out"), false, "", 0)
	assert.Contains(t, out, "连接已断开")
	assert.Contains(t, out, "host timed out")
	assert.Contains(t, out, "按 q 退出")
	assert.NotContains(t, out, "Enter")

	out = LostView(nil, true, "connection refused", 0)
	assert.Contains(t, out, "按 Enter 重新连接并返回大厅")
	assert.Contains(t, out, "connection refused")
}
