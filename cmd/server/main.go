package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/tetris-battle/internal/config"
	"github.com/palemoky/tetris-battle/internal/logger"
	"github.com/palemoky/tetris-battle/internal/server"
	"github.com/palemoky/tetris-battle/internal/session"
	"github.com/palemoky/tetris-battle/internal/sound"
	"github.com/palemoky/tetris-battle/internal/storage"
	"github.com/palemoky/tetris-battle/internal/ui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	name := flag.String("name", "", "玩家昵称")
	port := flag.Int("port", 0, "监听端口（覆盖配置文件）")
	flag.Parse()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
	}
	defer logger.Close()

	// 加载配置
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Redis 可选，只有主机保存对局结果
	var (
		store       *storage.RedisStore
		recorder    session.Recorder
		leaderboard server.Leaderboard
	)
	if cfg.Redis.Enabled {
		store, err = connectRedis(cfg.Redis)
		if err != nil {
			logger.LogError("Redis 不可用，不保存对局结果: %v", err)
		} else {
			recorder, leaderboard = store, store
		}
	}

	host, err := session.Listen(session.HostConfig{
		Addr:              cfg.Server.Addr(),
		MaxClients:        cfg.Server.MaxClients,
		Transport:         cfg.Network.TransportOptions(),
		HeartbeatInterval: cfg.Network.HeartbeatIntervalDuration(),
		Timeout:           cfg.Network.ConnectionTimeoutDuration(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动主机失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = host.Close() }()

	// 观战服务
	var spectators *server.Server
	if cfg.Spectator.Enabled {
		spectators = server.New(cfg.Spectator, leaderboard)
		if _, err := spectators.Start(); err != nil {
			logger.LogError("观战服务启动失败: %v", err)
			spectators = nil
		} else {
			host.OnBroadcast(spectators.Hub().Publish)
		}
	}

	sm := sound.NewSoundManager()
	if err := sm.Init(); err != nil {
		log.Printf("⚠️ 音效初始化失败: %v", err)
	}
	defer sm.Close()

	_, hostPort, _ := net.SplitHostPort(host.Addr())
	addr := net.JoinHostPort(session.LANAddress(), hostPort)
	logger.LogInfo("主机地址 %s，玩家 %q", addr, *name)
	model := ui.NewHostModel(host, addr, ui.Options{
		Name:     *name,
		Config:   cfg,
		Recorder: recorder,
		Sound:    sm,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("正在关闭主机...")
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		log.Printf("界面异常退出: %v", err)
	}
	if s := model.Session(); s != nil {
		s.WaitRecorded()
	}

	if spectators != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := spectators.Shutdown(ctx); err != nil {
			log.Printf("⚠️ 关闭观战服务失败: %v", err)
		}
	}
}

// connectRedis 连接并测试 Redis
func connectRedis(cfg config.RedisConfig) (*storage.RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := storage.NewRedisStore(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}
	log.Printf("✅ 已连接 Redis %s (db=%d)", cfg.Addr, cfg.DB)
	return store, nil
}
