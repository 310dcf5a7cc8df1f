package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/ui/common"
)

// GameData 渲染对局画面所需的全部数据
type GameData struct {
	Width int

	Name    string
	Grid    [][]uint8
	Piece   *piece.Piece
	GhostY  int
	Hold    piece.Kind
	CanHold bool
	Preview []piece.Kind

	Score   int
	Lines   int
	Combo   int
	B2B     bool
	Pending int
	Fall    time.Duration
	Alive   bool
	Rank    int

	Target    int // -1 表示无
	Opponents []Opponent

	Countdown time.Duration // > 0 时显示倒计时
	Notice    string
	Help      string
}

// Opponent 对手的影子状态
type Opponent struct {
	ID           int
	Name         string
	Grid         [][]uint8
	Piece        *piece.Piece
	Score        int
	Pending      int
	Alive        bool
	Rank         int
	Disconnected bool
}

// GameView 对局画面：左侧暂存，中间本机棋盘，右侧预览与统计，下方对手
func GameView(d GameData) string {
	var sb strings.Builder

	title := common.TitleStyle("🧱 TETRIS BATTLE")
	sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		renderHoldPanel(d),
		" ",
		renderGarbageMeter(d.Pending, len(d.Grid)),
		RenderBoard(d.Grid, d.Piece, d.GhostY),
		" ",
		renderSidePanel(d),
	)
	sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, main))
	sb.WriteString("\n")

	if len(d.Opponents) > 0 {
		boxes := make([]string, 0, len(d.Opponents))
		for _, o := range d.Opponents {
			boxes = append(boxes, renderOpponent(o, o.ID == d.Target))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
		sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, row))
		sb.WriteString("\n")
	}

	switch {
	case d.Countdown > 0:
		secs := int((d.Countdown + time.Second - 1) / time.Second)
		sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center,
			common.TitleStyle(fmt.Sprintf("⏳ %d", secs))))
		sb.WriteString("\n")
	case !d.Alive:
		sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center,
			common.ErrorStyle.Render(fmt.Sprintf("%s 你已出局（第 %d 名），观战中...", common.KOIcon, d.Rank))))
		sb.WriteString("\n")
	}

	if d.Notice != "" {
		sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, d.Notice))
		sb.WriteString("\n")
	}
	if d.Help != "" {
		sb.WriteString(lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, d.Help))
	}
	return sb.String()
}

func renderHoldPanel(d GameData) string {
	label := "HOLD"
	if !d.CanHold {
		label = common.DimStyle.Render("HOLD")
	}
	return common.BoxStyle.Render(label + "\n\n" + RenderPiecePreview(d.Hold))
}

// renderGarbageMeter 待接收垃圾行的竖条
func renderGarbageMeter(pending, height int) string {
	if height <= 0 {
		return ""
	}
	// 与棋盘边框对齐
	lines := make([]string, height+2)
	for i := range lines {
		lines[i] = " "
	}
	for i := 0; i < min(pending, height); i++ {
		lines[height-i] = common.GarbageBar.Render("▌")
	}
	return strings.Join(lines, "\n")
}

func renderSidePanel(d GameData) string {
	var sb strings.Builder
	sb.WriteString("NEXT\n\n")
	for i, k := range d.Preview {
		sb.WriteString(RenderPiecePreview(k))
		if i < len(d.Preview)-1 {
			sb.WriteString("\n\n")
		}
	}
	next := common.BoxStyle.Render(sb.String())

	var stats strings.Builder
	fmt.Fprintf(&stats, "%s\n", common.PlayerLabel(0, d.Name))
	fmt.Fprintf(&stats, "分数 %s\n", common.ScoreStyle.Render(fmt.Sprint(d.Score)))
	fmt.Fprintf(&stats, "消行 %d\n", d.Lines)
	if d.Combo > 0 {
		fmt.Fprintf(&stats, "连击 %d\n", d.Combo)
	}
	if d.B2B {
		stats.WriteString("B2B ✓\n")
	}
	if d.Pending > 0 {
		stats.WriteString(common.GarbageBar.Render(fmt.Sprintf("垃圾 +%d", d.Pending)) + "\n")
	}
	if d.Fall > 0 {
		fmt.Fprintf(&stats, "速度 %dms\n", d.Fall.Milliseconds())
	}
	if target := targetName(d); target != "" {
		fmt.Fprintf(&stats, "%s %s", common.TargetIcon, target)
	}

	return lipgloss.JoinVertical(lipgloss.Left, next, common.BoxStyle.Render(strings.TrimRight(stats.String(), "\n")))
}

func targetName(d GameData) string {
	for _, o := range d.Opponents {
		if o.ID == d.Target {
			return common.PlayerLabel(o.ID, o.Name)
		}
	}
	return ""
}

func renderOpponent(o Opponent, targeted bool) string {
	var header string
	switch {
	case o.Disconnected:
		header = fmt.Sprintf("%s %s", common.LostIcon, common.PlayerLabel(o.ID, o.Name))
	case !o.Alive:
		header = fmt.Sprintf("%s %s #%d", common.KOIcon, common.PlayerLabel(o.ID, o.Name), o.Rank)
	default:
		header = common.PlayerLabel(o.ID, o.Name)
	}
	if targeted {
		header = common.TargetIcon + " " + header
	}

	body := RenderMiniBoard(o.Grid, o.Piece)
	footer := fmt.Sprintf("%d", o.Score)
	if o.Pending > 0 {
		footer += common.GarbageBar.Render(fmt.Sprintf(" +%d", o.Pending))
	}

	style := common.BoxStyle
	switch {
	case !o.Alive:
		style = common.DeadBox
	case targeted:
		style = common.TargetBox
	}
	return style.Render(header + "\n" + body + "\n" + footer)
}
