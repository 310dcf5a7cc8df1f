// Package common provides shared utilities for the UI.
package common

import "fmt"

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// PlayerLabel 玩家显示名，没有昵称时使用编号
func PlayerLabel(id int, name string) string {
	if name == "" {
		return fmt.Sprintf("P%d", id+1)
	}
	return TruncateName(name, 10)
}

// RankLabel 名次显示
func RankLabel(rank int) string {
	switch rank {
	case 0:
		return "-"
	case 1:
		return WinnerIcon + " 1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", rank)
	}
}
