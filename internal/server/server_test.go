package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/tetris-battle/internal/config"
	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/codec"
	"github.com/palemoky/tetris-battle/internal/storage"
	"github.com/palemoky/tetris-battle/internal/testutil"
)

func newTestServer(t *testing.T, lb Leaderboard, maxSpectators int) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config.SpectatorConfig{MaxSpectators: maxSpectators}, lb)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
	})
	return s, ts
}

func newRedisStore(t *testing.T) *storage.RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func dialSpectator(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readBroadcast(t *testing.T, conn *websocket.Conn) *protocol.BroadcastPayload {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)

	msg, err := codec.Decode(data)
	require.NoError(t, err)
	require.Equal(t, protocol.MsgBroadcast, msg.Type)
	b, err := codec.ParsePayload[protocol.BroadcastPayload](msg)
	require.NoError(t, err)
	return b
}

func sampleBroadcast(score int) *protocol.BroadcastPayload {
	return &protocol.BroadcastPayload{
		PlayerCount: 2,
		States: []protocol.GameStatePayload{
			{PlayerID: 0, Name: "host", Score: score, Combo: -1, Target: 1, AttackTarget: -1},
			{PlayerID: 1, Name: "guest", GameOver: true, Disconnected: true, Combo: -1, Target: -1, AttackTarget: -1},
		},
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, 4)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_HealthReportsRedisDown(t *testing.T) {
	t.Parallel()

	lb := new(testutil.MockLeaderboard)
	lb.On("Ping", mock.Anything).Return(errors.New("dial tcp: refused"))

	_, ts := newTestServer(t, lb, 4)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	lb.AssertExpectations(t)
}

func TestServer_SpectatorReceivesBroadcasts(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, 4)
	conn := dialSpectator(t, ts)
	require.Eventually(t, func() bool { return s.Hub().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Hub().Publish(sampleBroadcast(100))
	b := readBroadcast(t, conn)
	require.Len(t, b.States, 2)
	assert.Equal(t, "host", b.States[0].Name)
	assert.Equal(t, 100, b.States[0].Score)
	assert.True(t, b.States[1].Disconnected)

	// 新连接的观战者立即收到最近一帧
	late := dialSpectator(t, ts)
	b = readBroadcast(t, late)
	assert.Equal(t, 100, b.States[0].Score)
}

func TestServer_SpectatorLimit(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, 1)
	_ = dialSpectator(t, ts)
	require.Eventually(t, func() bool { return s.Hub().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	extra := dialSpectator(t, ts)
	require.NoError(t, extra.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := extra.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
	assert.Equal(t, 1, s.Hub().Count())
}

func TestServer_SpectatorDisconnectUnregisters(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, 4)
	conn := dialSpectator(t, ts)
	require.Eventually(t, func() bool { return s.Hub().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.Hub().Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_State(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil, 4)

	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.Hub().Publish(sampleBroadcast(700))

	resp, err = http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b protocol.BroadcastPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, 700, b.States[0].Score)
	assert.Equal(t, 2, b.PlayerCount)
}

func TestServer_LeaderboardDisabled(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil, 4)
	for _, path := range []string{"/leaderboard", "/stats/alice", "/matches"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestServer_LeaderboardAndStats(t *testing.T) {
	t.Parallel()

	store := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.RecordMatch(ctx, &storage.MatchResult{
		ID:     "m1",
		Winner: 0,
		Players: []storage.PlayerResult{
			{PlayerID: 0, Name: "alice", Rank: 1, Score: 1500, Lines: 12},
			{PlayerID: 1, Name: "bob", Rank: 2, Score: 300, Lines: 2},
		},
	}))

	_, ts := newTestServer(t, store, 4)

	resp, err := http.Get(ts.URL + "/leaderboard?type=daily&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []storage.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].PlayerName)
	assert.Equal(t, 1500, entries[0].BestScore)

	resp2, err := http.Get(ts.URL + "/stats/bob")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var stats StatsResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&stats))
	require.NotNil(t, stats.PlayerStats)
	assert.Equal(t, "bob", stats.PlayerName)
	assert.Equal(t, int64(2), stats.Rank)
	assert.Equal(t, 1, stats.TotalGames)

	resp3, err := http.Get(ts.URL + "/stats/nobody")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)

	resp4, err := http.Get(ts.URL + "/matches")
	require.NoError(t, err)
	defer resp4.Body.Close()
	var matches []storage.MatchResult
	require.NoError(t, json.NewDecoder(resp4.Body).Decode(&matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)

	resp5, err := http.Get(ts.URL + "/leaderboard?type=monthly")
	require.NoError(t, err)
	resp5.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp5.StatusCode)
}

func TestServer_LeaderboardQueryClamping(t *testing.T) {
	t.Parallel()

	lb := new(testutil.MockLeaderboard)
	lb.On("GetLeaderboard", mock.Anything, "", 0, defaultLimit).Return(nil, nil).Once()
	lb.On("GetLeaderboard", mock.Anything, storage.BoardWeekly, 20, 50).Return(nil, errors.New("boom")).Once()

	_, ts := newTestServer(t, lb, 4)

	resp, err := http.Get(ts.URL + "/leaderboard?offset=-5&limit=500")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []storage.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Empty(t, entries)

	resp2, err := http.Get(ts.URL + "/leaderboard?type=weekly&offset=20&limit=50")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp2.StatusCode)

	lb.AssertExpectations(t)
}

func TestServer_StartAndShutdown(t *testing.T) {
	t.Parallel()

	s := New(config.SpectatorConfig{Host: "127.0.0.1", Port: 0, MaxSpectators: 2}, nil)
	addr, err := s.Start()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	require.NoError(t, s.Shutdown(ctx), "second shutdown is a no-op")

	_, err = http.Get("http://" + addr + "/health")
	assert.Error(t, err)
}
