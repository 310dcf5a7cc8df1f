// Package input handles keyboard input processing.
package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/tetris-battle/internal/game/engine"
	"github.com/palemoky/tetris-battle/internal/sound"
)

// KeyMap 全部按键绑定，实现 help.KeyMap
type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	SoftDrop  key.Binding
	HardDrop  key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	Rotate180 key.Binding
	Hold      key.Binding
	Start     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap 默认按键
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "左移")),
		Right:     key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "右移")),
		SoftDrop:  key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "软降")),
		HardDrop:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "硬降")),
		RotateCW:  key.NewBinding(key.WithKeys("up", "x", "w"), key.WithHelp("↑/x", "顺时针")),
		RotateCCW: key.NewBinding(key.WithKeys("z", "ctrl+z"), key.WithHelp("z", "逆时针")),
		Rotate180: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "180°")),
		Hold:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "暂存")),
		Start:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "开始")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "帮助")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("q/esc", "退出")),
	}
}

// ShortHelp 简短帮助
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.RotateCW, k.HardDrop, k.Hold, k.Help, k.Quit}
}

// FullHelp 完整帮助
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.SoftDrop, k.HardDrop},
		{k.RotateCW, k.RotateCCW, k.Rotate180, k.Hold},
		{k.Start, k.Help, k.Quit},
	}
}

// ApplyGameKey 把按键转换为引擎命令，返回要播放的音效（空字符串表示无）和是否处理了该按键
func ApplyGameKey(k KeyMap, msg tea.KeyMsg, e *engine.Engine) (string, bool) {
	if e == nil || e.GameOver() {
		return "", false
	}

	switch {
	case key.Matches(msg, k.Left):
		return cueIf(e.MoveLeft(), sound.CueMove), true
	case key.Matches(msg, k.Right):
		return cueIf(e.MoveRight(), sound.CueMove), true
	case key.Matches(msg, k.SoftDrop):
		e.SoftDrop()
		return "", true
	case key.Matches(msg, k.HardDrop):
		e.HardDrop()
		return sound.CueLock, true
	case key.Matches(msg, k.RotateCW):
		return cueIf(e.RotateCW(), sound.CueRotate), true
	case key.Matches(msg, k.RotateCCW):
		return cueIf(e.RotateCCW(), sound.CueRotate), true
	case key.Matches(msg, k.Rotate180):
		return cueIf(e.Rotate180(), sound.CueRotate), true
	case key.Matches(msg, k.Hold):
		return cueIf(e.Hold(), sound.CueRotate), true
	}
	return "", false
}

func cueIf(ok bool, cue string) string {
	if ok {
		return cue
	}
	return ""
}
