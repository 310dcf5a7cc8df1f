//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/tetris-battle/internal/storage"
)

// MockRecorder 对局结果持久化 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordMatch(ctx context.Context, result *storage.MatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockLeaderboard 排行榜查询 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]storage.LeaderboardEntry, error) {
	args := m.Called(ctx, boardType, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) RecentMatches(ctx context.Context, limit int) ([]*storage.MatchResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.MatchResult), args.Error(1)
}

func (m *MockLeaderboard) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
