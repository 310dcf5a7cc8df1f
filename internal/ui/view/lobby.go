package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/tetris-battle/internal/ui/common"
)

// LobbyData 大厅画面数据
type LobbyData struct {
	Width       int
	IsHost      bool
	Addr        string // 主机监听地址或客户端连接地址
	SelfID      int
	PlayerIDs   []int
	PlayerCount int
	MaxPlayers  int
	Notice      string
	Help        string
}

// CanStart 主机在至少 2 名玩家时可以开局
func (d LobbyData) CanStart() bool {
	return d.IsHost && d.PlayerCount >= 2
}

// LobbyView 大厅画面
func LobbyView(d LobbyData) string {
	var sb strings.Builder

	sb.WriteString(common.TitleStyle("🧱 TETRIS BATTLE"))
	sb.WriteString("\n\n")

	if d.IsHost {
		fmt.Fprintf(&sb, "🏠 主机地址: %s\n", common.ScoreStyle.Render(d.Addr))
		sb.WriteString(common.DimStyle.Render("其他玩家使用该地址加入"))
	} else {
		fmt.Fprintf(&sb, "🔗 已连接: %s\n", d.Addr)
		fmt.Fprintf(&sb, "你是 %s", common.PlayerLabel(d.SelfID, ""))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "👥 玩家 %d/%d\n", d.PlayerCount, d.MaxPlayers)
	if len(d.PlayerIDs) > 0 {
		labels := make([]string, 0, len(d.PlayerIDs))
		for _, id := range d.PlayerIDs {
			label := common.PlayerLabel(id, "")
			if id == d.SelfID {
				label += " (你)"
			}
			labels = append(labels, label)
		}
		sb.WriteString(strings.Join(labels, "  "))
		sb.WriteString("\n")
	}

	var prompt string
	switch {
	case d.CanStart():
		prompt = "按 Enter 开始游戏"
	case d.IsHost:
		prompt = "等待其他玩家加入..."
	default:
		prompt = "等待主机开始..."
	}
	sb.WriteString(common.PromptStyle.Render(prompt))

	if d.Notice != "" {
		sb.WriteString("\n")
		sb.WriteString(common.ErrorStyle.Render(d.Notice))
	}

	box := common.BoxStyle.Padding(1, 4).Render(sb.String())
	out := lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, box)
	if d.Help != "" {
		out += "\n" + lipgloss.PlaceHorizontal(d.Width, lipgloss.Center, d.Help)
	}
	return out
}
