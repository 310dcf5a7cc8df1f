package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/tetris-battle/internal/game/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 6000
  max_clients: 2

network:
  heartbeat_interval: 500
  connection_timeout: 3000
  socket_buffer: 65536

game:
  board_width: 12
  board_height: 24
  tick_rate: 30
  lock_delay: 400
  speed_ramp: -1
  countdown: -1

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

spectator:
  enabled: true
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:6000", cfg.Server.Addr())
	assert.Equal(t, 2, cfg.Server.MaxClients)
	assert.Equal(t, 500*time.Millisecond, cfg.Network.HeartbeatIntervalDuration())
	assert.Equal(t, 3*time.Second, cfg.Network.ConnectionTimeoutDuration())
	assert.Equal(t, 65536, cfg.Network.TransportOptions().SocketBuffer)
	assert.Equal(t, 12, cfg.Game.BoardWidth)
	assert.Equal(t, time.Second/30, cfg.Game.TickInterval())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "0.0.0.0:9090", cfg.Spectator.Addr())

	ec := cfg.Game.EngineConfig()
	assert.Equal(t, 24, ec.Height)
	assert.Equal(t, 400*time.Millisecond, ec.LockDelay)
	assert.Zero(t, ec.SpeedRamp, "negative ramp disables speed-up")
	assert.Equal(t, time.Duration(-1), cfg.Game.CountdownDuration())
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = LoadOrDefault(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxClients, cfg.Server.MaxClients)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, defaultTickRate, cfg.Game.TickRate)
	assert.Equal(t, 3*time.Second, cfg.Game.CountdownDuration())
	assert.Equal(t, 2*time.Second, cfg.Game.TargetIntervalDuration())
}

func TestDefault_MatchesEngineDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, engine.DefaultConfig(), cfg.Game.EngineConfig())

	opts := cfg.Network.TransportOptions()
	assert.Equal(t, 128*1024, opts.SocketBuffer)
	assert.Equal(t, 15*time.Second, opts.KeepAlive)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"max clients", func(c *Config) { c.Server.MaxClients = 4 }},
		{"timeout below heartbeat", func(c *Config) { c.Network.ConnectionTimeout = 500 }},
		{"narrow board", func(c *Config) { c.Game.BoardWidth = 3 }},
		{"tick rate", func(c *Config) { c.Game.TickRate = -1 }},
		{"min fall above base", func(c *Config) { c.Game.MinFallInterval = 2000 }},
		{"spectator port clash", func(c *Config) {
			c.Spectator.Enabled = true
			c.Spectator.Port = c.Server.Port
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "game:\n  board_width: 2\n"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
