package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/tetris-battle/internal/config"
	"github.com/palemoky/tetris-battle/internal/logger"
	"github.com/palemoky/tetris-battle/internal/session"
	"github.com/palemoky/tetris-battle/internal/sound"
	"github.com/palemoky/tetris-battle/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:5555", "主机地址")
	name := flag.String("name", "", "玩家昵称")
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
	}
	defer logger.Close()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	clientCfg := session.ClientConfig{
		Addr:              *serverAddr,
		Transport:         cfg.Network.TransportOptions(),
		HeartbeatInterval: cfg.Network.HeartbeatIntervalDuration(),
		Timeout:           cfg.Network.ConnectionTimeoutDuration(),
	}
	dial := func() (*session.Client, error) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Network.DialTimeoutDuration())
		defer cancel()
		return session.Dial(ctx, clientCfg)
	}

	c, err := dial()
	if err != nil {
		fmt.Fprintf(os.Stderr, "连接主机失败: %v\n", err)
		os.Exit(1)
	}
	logger.LogInfo("已连接 %s，玩家编号 %d", *serverAddr, c.PlayerID())

	sm := sound.NewSoundManager()
	if err := sm.Init(); err != nil {
		log.Printf("⚠️ 音效初始化失败: %v", err)
	}
	defer sm.Close()

	model := ui.NewClientModel(c, *serverAddr, ui.Options{
		Name:   *name,
		Config: cfg,
		Sound:  sm,
		Rejoin: func() (ui.Member, error) {
			c, err := dial()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})
	defer func() { _ = model.Close() }()
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Printf("启动客户端时出错: %v", err)
	}
}
