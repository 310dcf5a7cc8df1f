package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:rating"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// 排行榜类型
const (
	BoardTotal  = "total"
	BoardDaily  = "daily"
	BoardWeekly = "weekly"
)

// PlayerStats 玩家统计数据（局域网内以昵称区分玩家）
type PlayerStats struct {
	PlayerName string `json:"player_name"`

	// 总计
	TotalGames  int `json:"total_games"`  // 总场次
	Wins        int `json:"wins"`         // 第一名次数
	Disconnects int `json:"disconnects"`  // 断线次数
	TotalLines  int `json:"total_lines"`  // 累计消行
	BestScore   int `json:"best_score"`   // 单局最高分
	TotalScore  int `json:"total_score"`  // 累计得分

	// 积分
	Rating int `json:"rating"` // 当前积分

	// 连胜
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"` // 最大连胜

	// 时间
	LastPlayedAt int64 `json:"last_played_at"` // 最后游戏时间
	CreatedAt    int64 `json:"created_at"`     // 首次游戏时间
}

// 积分规则：按名次
var rankRating = map[int]int{
	1: 30,
	2: 10,
	3: -5,
	4: -10,
}

const (
	// DisconnectPenalty 断线额外扣分
	DisconnectPenalty = -10

	// 连胜加成
	StreakBonus3  = 5  // 3 连胜加成
	StreakBonus5  = 10 // 5 连胜加成
	StreakBonus10 = 20 // 10 连胜加成
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Rating     int     `json:"rating"`
	Wins       int     `json:"wins"`
	BestScore  int     `json:"best_score"`
	WinRate    float64 `json:"win_rate"`
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (rs *RedisStore) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := rs.client.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("反序列化玩家统计失败: %w", err)
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (rs *RedisStore) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("序列化玩家统计失败: %w", err)
	}
	return rs.client.Set(ctx, playerStatsKey+stats.PlayerName, data, 0).Err()
}

// getOrCreateStats 获取或创建玩家统计
func (rs *RedisStore) getOrCreateStats(ctx context.Context, name string, now time.Time) (*PlayerStats, error) {
	stats, err := rs.GetPlayerStats(ctx, name)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &PlayerStats{
			PlayerName: name,
			CreatedAt:  now.Unix(),
		}
	}
	return stats, nil
}

// updateStreak 更新连胜/连败
func updateStreak(stats *PlayerStats, isWinner bool) {
	if isWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}

	if stats.CurrentStreak > stats.MaxWinStreak {
		stats.MaxWinStreak = stats.CurrentStreak
	}
}

// calculateStreakBonus 计算连胜加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordPlayerResult 记录一名玩家的一局结果并更新排行榜
func (rs *RedisStore) RecordPlayerResult(ctx context.Context, p PlayerResult, now time.Time) error {
	stats, err := rs.getOrCreateStats(ctx, p.Name, now)
	if err != nil {
		return err
	}

	stats.TotalGames++
	stats.TotalLines += p.Lines
	stats.TotalScore += p.Score
	stats.BestScore = max(stats.BestScore, p.Score)
	stats.LastPlayedAt = now.Unix()

	change := rankRating[p.Rank]
	if p.Disconnected {
		stats.Disconnects++
		change += DisconnectPenalty
	}
	updateStreak(stats, p.Rank == 1)
	change += calculateStreakBonus(stats.CurrentStreak)
	stats.Rating = max(0, stats.Rating+change)

	if err := rs.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return rs.updateLeaderboard(ctx, stats, now)
}

// dailyKey / weeklyKey 按日期分桶的排行榜 key
func dailyKey(t time.Time) string {
	return dailyLeaderboard + t.Format("2006-01-02")
}

func weeklyKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
}

// updateLeaderboard 更新总榜、日榜和周榜
func (rs *RedisStore) updateLeaderboard(ctx context.Context, stats *PlayerStats, now time.Time) error {
	member := redis.Z{Score: float64(stats.Rating), Member: stats.PlayerName}

	pipe := rs.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, member)

	daily := dailyKey(now)
	pipe.ZAdd(ctx, daily, member)
	pipe.Expire(ctx, daily, 48*time.Hour)

	weekly := weeklyKey(now)
	pipe.ZAdd(ctx, weekly, member)
	pipe.Expire(ctx, weekly, 8*24*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

// boardKey 排行榜类型对应的 key
func boardKey(boardType string, now time.Time) (string, error) {
	switch boardType {
	case "", BoardTotal:
		return leaderboardKey, nil
	case BoardDaily:
		return dailyKey(now), nil
	case BoardWeekly:
		return weeklyKey(now), nil
	default:
		return "", fmt.Errorf("未知的排行榜类型: %s", boardType)
	}
}

// GetLeaderboard 获取排行榜（从高到低）
func (rs *RedisStore) GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]LeaderboardEntry, error) {
	key, err := boardKey(boardType, time.Now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := rs.client.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := rs.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}

		entries = append(entries, LeaderboardEntry{
			Rank:       offset + i + 1,
			PlayerName: name,
			Rating:     int(result.Score),
			Wins:       stats.Wins,
			BestScore:  stats.BestScore,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的名次，未上榜返回 -1
func (rs *RedisStore) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := rs.client.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
