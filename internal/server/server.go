package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/palemoky/tetris-battle/internal/config"
	"github.com/palemoky/tetris-battle/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // 局域网观战，允许所有来源
	},
	EnableCompression: false,
}

// Leaderboard 排行榜与对局记录查询，nil 表示未启用 Redis
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]storage.LeaderboardEntry, error)
	GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, name string) (int64, error)
	RecentMatches(ctx context.Context, limit int) ([]*storage.MatchResult, error)
	Ping(ctx context.Context) error
}

// Server 主机上的 HTTP 服务：观战 WebSocket 推送和排行榜查询
type Server struct {
	config      config.SpectatorConfig
	leaderboard Leaderboard
	hub         *Hub
	router      chi.Router

	httpServer *http.Server
	stop       chan struct{}
}

// New 创建服务，leaderboard 可以为 nil
func New(cfg config.SpectatorConfig, leaderboard Leaderboard) *Server {
	s := &Server{
		config:      cfg,
		leaderboard: leaderboard,
		hub:         NewHub(cfg.MaxSpectators),
		stop:        make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/stats/{name}", s.handleStats)
	r.Get("/matches", s.handleMatches)
	return r
}

// Handler 路由，供测试使用 httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub 观战推送中心
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start 在后台监听，返回实际地址
func (s *Server) Start() (string, error) {
	addr := s.config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ 观战服务异常退出: %v", err)
		}
	}()
	go s.monitorStats()

	log.Printf("📺 观战服务启动在 ws://%s/ws", ln.Addr())
	return ln.Addr().String(), nil
}
