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
	matchKeyPrefix = "match:"
	recentMatchKey = "match:recent"

	// 对局记录保留时间
	matchExpiration = 7 * 24 * time.Hour
	// 最近对局列表长度
	recentMatchLimit = 50
)

// PlayerResult 一名玩家的对局结果
type PlayerResult struct {
	PlayerID     int    `json:"player_id"`
	Name         string `json:"name"`
	Rank         int    `json:"rank"`
	Score        int    `json:"score"`
	Lines        int    `json:"lines"`
	Disconnected bool   `json:"disconnected"`
}

// MatchResult 一局对战的结果
type MatchResult struct {
	ID        string         `json:"id"`
	StartedAt int64          `json:"started_at"`
	EndedAt   int64          `json:"ended_at"`
	Winner    int            `json:"winner"` // -1 表示无
	Players   []PlayerResult `json:"players"`
}

// RedisStore Redis 存储：对局记录与排行榜
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping 检查 Redis 是否可用
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// RecordMatch 保存对局记录，并更新每名玩家的统计和排行榜
func (rs *RedisStore) RecordMatch(ctx context.Context, m *MatchResult) error {
	if m == nil {
		return nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("序列化对局数据失败: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, matchKeyPrefix+m.ID, data, matchExpiration)
	pipe.LPush(ctx, recentMatchKey, m.ID)
	pipe.LTrim(ctx, recentMatchKey, 0, recentMatchLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	ended := time.Unix(m.EndedAt, 0)
	if m.EndedAt == 0 {
		ended = time.Now()
	}
	for _, p := range m.Players {
		if p.Name == "" {
			continue
		}
		if err := rs.RecordPlayerResult(ctx, p, ended); err != nil {
			return fmt.Errorf("记录玩家 %s 结果失败: %w", p.Name, err)
		}
	}
	return nil
}

// LoadMatch 读取对局记录，不存在或已过期时返回 nil
func (rs *RedisStore) LoadMatch(ctx context.Context, id string) (*MatchResult, error) {
	data, err := rs.client.Get(ctx, matchKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var m MatchResult
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("反序列化对局数据失败: %w", err)
	}
	return &m, nil
}

// RecentMatches 最近的对局（新的在前），跳过已过期的记录
func (rs *RedisStore) RecentMatches(ctx context.Context, limit int) ([]*MatchResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := rs.client.LRange(ctx, recentMatchKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*MatchResult, 0, len(ids))
	for _, id := range ids {
		m, err := rs.LoadMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		if m != nil {
			matches = append(matches, m)
		}
	}
	return matches, nil
}
