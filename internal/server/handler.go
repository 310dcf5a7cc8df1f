package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/palemoky/tetris-battle/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 50
	queryTimeout = 3 * time.Second
)

// StatsResponse 个人统计
type StatsResponse struct {
	*storage.PlayerStats
	Rank    int64   `json:"rank"` // -1 表示未上榜
	WinRate float64 `json:"win_rate"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ 写入响应失败: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt 读取整数查询参数，缺省或非法时返回 def
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// clampLimit 限制请求数量
func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return defaultLimit
	}
	return limit
}

// requireLeaderboard 未启用 Redis 时返回 503
func (s *Server) requireLeaderboard(w http.ResponseWriter) bool {
	if s.leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard disabled")
		return false
	}
	return true
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard != nil {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if err := s.leaderboard.Ping(ctx); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleState 最近一帧全局快照（JSON）
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	b, ok := s.hub.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no match in progress")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleLeaderboard 排行榜：?type=total|daily|weekly&offset=0&limit=10
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireLeaderboard(w) {
		return
	}
	boardType := r.URL.Query().Get("type")
	offset := max(queryInt(r, "offset", 0), 0)
	limit := clampLimit(queryInt(r, "limit", defaultLimit))

	switch boardType {
	case "", storage.BoardTotal, storage.BoardDaily, storage.BoardWeekly:
	default:
		writeError(w, http.StatusBadRequest, "unknown leaderboard type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	entries, err := s.leaderboard.GetLeaderboard(ctx, boardType, offset, limit)
	if err != nil {
		log.Printf("⚠️ 获取排行榜失败: %v", err)
		writeError(w, http.StatusInternalServerError, "获取排行榜失败")
		return
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleStats 个人统计
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireLeaderboard(w) {
		return
	}
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	stats, err := s.leaderboard.GetPlayerStats(ctx, name)
	if err != nil {
		log.Printf("⚠️ 获取玩家 %s 统计失败: %v", name, err)
		writeError(w, http.StatusInternalServerError, "获取统计失败")
		return
	}
	if stats == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	rank, err := s.leaderboard.GetPlayerRank(ctx, name)
	if err != nil {
		rank = -1
	}
	winRate := 0.0
	if stats.TotalGames > 0 {
		winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
	}
	writeJSON(w, http.StatusOK, StatsResponse{PlayerStats: stats, Rank: rank, WinRate: winRate})
}

// handleMatches 最近的对局记录
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireLeaderboard(w) {
		return
	}
	limit := clampLimit(queryInt(r, "limit", defaultLimit))

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	matches, err := s.leaderboard.RecentMatches(ctx, limit)
	if err != nil {
		log.Printf("⚠️ 获取对局记录失败: %v", err)
		writeError(w, http.StatusInternalServerError, "获取对局记录失败")
		return
	}
	if matches == nil {
		matches = []*storage.MatchResult{}
	}
	writeJSON(w, http.StatusOK, matches)
}
