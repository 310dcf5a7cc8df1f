package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatch() *MatchResult {
	return &MatchResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now().Add(-2 * time.Minute).Unix(),
		EndedAt:   time.Now().Unix(),
		Winner:    0,
		Players: []PlayerResult{
			{PlayerID: 0, Name: "host", Rank: 1, Score: 2400, Lines: 18},
			{PlayerID: 1, Name: "guest", Rank: 2, Score: 900, Lines: 7, Disconnected: true},
		},
	}
}

func TestRedisStore_RecordMatch(t *testing.T) {
	t.Parallel()

	rs, mr := newTestStore(t)
	defer mr.Close()
	ctx := context.Background()

	m := sampleMatch()
	require.NoError(t, rs.RecordMatch(ctx, m))

	loaded, err := rs.LoadMatch(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m, loaded)

	host, err := rs.GetPlayerStats(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, 1, host.Wins)
	assert.Equal(t, 2400, host.BestScore)

	guest, err := rs.GetPlayerStats(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, guest.Disconnects)
	assert.Equal(t, 0, guest.Rating) // 10 - 10
}

func TestRedisStore_MatchExpires(t *testing.T) {
	t.Parallel()

	rs, mr := newTestStore(t)
	defer mr.Close()
	ctx := context.Background()

	m := sampleMatch()
	require.NoError(t, rs.RecordMatch(ctx, m))

	mr.FastForward(matchExpiration + time.Second)

	loaded, err := rs.LoadMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	recent, err := rs.RecentMatches(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRedisStore_RecentMatches(t *testing.T) {
	t.Parallel()

	rs, mr := newTestStore(t)
	defer mr.Close()
	ctx := context.Background()

	var ids []string
	for i := range recentMatchLimit + 5 {
		m := sampleMatch()
		m.Players[0].Name = fmt.Sprintf("p%d", i)
		require.NoError(t, rs.RecordMatch(ctx, m))
		ids = append(ids, m.ID)
	}

	recent, err := rs.RecentMatches(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[len(ids)-1], recent[0].ID)

	all, err := rs.RecentMatches(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, all, recentMatchLimit)
}

func TestRedisStore_NilAndUnnamed(t *testing.T) {
	t.Parallel()

	rs, mr := newTestStore(t)
	defer mr.Close()
	ctx := context.Background()

	assert.NoError(t, rs.RecordMatch(ctx, nil))

	m := sampleMatch()
	m.Players = []PlayerResult{{PlayerID: 2, Rank: 1}}
	require.NoError(t, rs.RecordMatch(ctx, m))

	stats, err := rs.GetPlayerStats(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, stats)

	missing, err := rs.LoadMatch(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRedisStore_Ping(t *testing.T) {
	t.Parallel()

	rs, mr := newTestStore(t)
	ctx := context.Background()
	assert.NoError(t, rs.Ping(ctx))

	mr.Close()
	assert.Error(t, rs.Ping(ctx))
}
