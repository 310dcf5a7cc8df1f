package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/tetris-battle/internal/storage"
	"github.com/palemoky/tetris-battle/internal/ui/common"
)

// ResultsView 对局结束画面，按名次列出所有玩家
func ResultsView(result *storage.MatchResult, selfID, width int, help string) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("🏁 对局结束"))
	sb.WriteString("\n\n")

	if result == nil || len(result.Players) == 0 {
		sb.WriteString(common.DimStyle.Render("没有对局数据"))
	} else {
		if result.Winner == selfID {
			sb.WriteString(common.ScoreStyle.Render("🎉 你赢了！"))
		} else {
			fmt.Fprintf(&sb, "%s 胜者: %s", common.WinnerIcon, winnerName(result))
		}
		sb.WriteString("\n\n")

		fmt.Fprintf(&sb, "%-8s %-12s %8s %6s\n", "名次", "玩家", "分数", "消行")
		for _, p := range result.Players {
			name := common.PlayerLabel(p.PlayerID, p.Name)
			if p.PlayerID == selfID {
				name += "*"
			}
			if p.Disconnected {
				name += " " + common.LostIcon
			}
			fmt.Fprintf(&sb, "%-8s %-12s %8d %6d\n", common.RankLabel(p.Rank), name, p.Score, p.Lines)
		}
	}

	sb.WriteString(common.PromptStyle.Render("按 q 退出"))

	box := common.BoxStyle.Padding(1, 4).Render(sb.String())
	out := lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	if help != "" {
		out += "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, help)
	}
	return out
}

func winnerName(result *storage.MatchResult) string {
	for _, p := range result.Players {
		if p.PlayerID == result.Winner {
			return common.PlayerLabel(p.PlayerID, p.Name)
		}
	}
	return "-"
}

// LostView 与会话失去连接
func LostView(err error, rejoin bool, notice string, width int) string {
	var sb strings.Builder
	sb.WriteString(common.ErrorStyle.Render(common.LostIcon + " 与会话的连接已断开"))
	if err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(common.DimStyle.Render(err.Error()))
	}
	if notice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(common.ErrorStyle.Render(notice))
	}
	prompt := "按 q 退出"
	if rejoin {
		prompt = "按 Enter 重新连接并返回大厅，按 q 退出"
	}
	sb.WriteString(common.PromptStyle.Render(prompt))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Padding(1, 4).Render(sb.String()))
}
