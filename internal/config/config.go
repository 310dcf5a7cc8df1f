package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/palemoky/tetris-battle/internal/game/engine"
	"github.com/palemoky/tetris-battle/internal/transport"
)

// 默认值
const (
	defaultHost       = "0.0.0.0"
	defaultPort       = 5555
	defaultMaxClients = 3

	defaultHeartbeatInterval = 1000 // 毫秒
	defaultConnectionTimeout = 5000 // 毫秒
	defaultDialTimeout       = 5000 // 毫秒
	defaultSocketBuffer      = 128 * 1024
	defaultKeepAlive         = 15 // 秒

	defaultBoardWidth       = 10
	defaultBoardHeight      = 20
	defaultTickRate         = 60
	defaultLockDelay        = 500  // 毫秒
	defaultLockMoves        = 15
	defaultPreviewSize      = 5
	defaultBaseFallInterval = 1000 // 毫秒
	defaultMinFallInterval  = 300  // 毫秒
	defaultSpeedRamp        = 60   // 秒
	defaultTargetInterval   = 2000 // 毫秒
	defaultCountdown        = 3    // 秒

	defaultRedisAddr = "localhost:6379"

	defaultSpectatorHost = "0.0.0.0"
	defaultSpectatorPort = 8080
	defaultMaxSpectators = 16
)

// Config 全部配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Network   NetworkConfig   `yaml:"network"`
	Game      GameConfig      `yaml:"game"`
	Redis     RedisConfig     `yaml:"redis"`
	Spectator SpectatorConfig `yaml:"spectator"`
}

// ServerConfig 主机监听配置
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	MaxClients int    `yaml:"max_clients"` // 主机之外的玩家数上限
}

// NetworkConfig 连接参数
type NetworkConfig struct {
	HeartbeatInterval int `yaml:"heartbeat_interval"` // 心跳间隔（毫秒）
	ConnectionTimeout int `yaml:"connection_timeout"` // 静默超时（毫秒）
	DialTimeout       int `yaml:"dial_timeout"`       // 连接超时（毫秒）
	SocketBuffer      int `yaml:"socket_buffer"`      // 收发缓冲区（字节）
	KeepAlive         int `yaml:"keep_alive"`         // TCP keep-alive（秒）
}

// GameConfig 游戏规则配置
type GameConfig struct {
	BoardWidth       int `yaml:"board_width"`
	BoardHeight      int `yaml:"board_height"`
	TickRate         int `yaml:"tick_rate"`          // 每秒 tick 数
	LockDelay        int `yaml:"lock_delay"`         // 锁定延迟（毫秒）
	LockMoves        int `yaml:"lock_moves"`         // 触底后可移动次数
	PreviewSize      int `yaml:"preview_size"`       // 预览方块数
	BaseFallInterval int `yaml:"base_fall_interval"` // 初始下落间隔（毫秒）
	MinFallInterval  int `yaml:"min_fall_interval"`  // 最快下落间隔（毫秒）
	SpeedRamp        int `yaml:"speed_ramp"`         // 加速到最快所需时间（秒），负数表示不加速
	TargetInterval   int `yaml:"target_interval"`    // 攻击目标轮换间隔（毫秒）
	Countdown        int `yaml:"countdown"`          // 开局倒计时（秒），负数表示不倒计时
}

// RedisConfig Redis 配置（只有主机使用）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SpectatorConfig 观战与排行榜 HTTP 服务配置
type SpectatorConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	MaxSpectators int    `yaml:"max_spectators"`
}

// Addr 主机监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr 观战服务监听地址
func (c *SpectatorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HeartbeatIntervalDuration 返回心跳间隔
func (c *NetworkConfig) HeartbeatIntervalDuration() time.Duration {
	return time.Duration(c.HeartbeatInterval) * time.Millisecond
}

// ConnectionTimeoutDuration 返回静默超时
func (c *NetworkConfig) ConnectionTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectionTimeout) * time.Millisecond
}

// DialTimeoutDuration 返回连接超时
func (c *NetworkConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Millisecond
}

// TransportOptions 转换为连接选项
func (c *NetworkConfig) TransportOptions() transport.Options {
	return transport.Options{
		SocketBuffer: c.SocketBuffer,
		KeepAlive:    time.Duration(c.KeepAlive) * time.Second,
		DialTimeout:  c.DialTimeoutDuration(),
	}
}

// TickInterval 返回 tick 间隔
func (c *GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// TargetIntervalDuration 返回攻击目标轮换间隔
func (c *GameConfig) TargetIntervalDuration() time.Duration {
	return time.Duration(c.TargetInterval) * time.Millisecond
}

// CountdownDuration 返回开局倒计时，负数表示不倒计时
func (c *GameConfig) CountdownDuration() time.Duration {
	if c.Countdown < 0 {
		return -1
	}
	return time.Duration(c.Countdown) * time.Second
}

// EngineConfig 转换为引擎参数
func (c *GameConfig) EngineConfig() engine.Config {
	ramp := time.Duration(c.SpeedRamp) * time.Second
	if c.SpeedRamp < 0 {
		ramp = 0
	}
	return engine.Config{
		Width:       c.BoardWidth,
		Height:      c.BoardHeight,
		LockDelay:   time.Duration(c.LockDelay) * time.Millisecond,
		LockMoves:   c.LockMoves,
		PreviewSize: c.PreviewSize,
		BaseFall:    time.Duration(c.BaseFallInterval) * time.Millisecond,
		MinFall:     time.Duration(c.MinFallInterval) * time.Millisecond,
		SpeedRamp:   ramp,
	}
}

// Load 加载配置文件并填充默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault 配置文件不存在时返回默认配置
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default 返回默认配置
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults 零值字段使用默认值
func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, defaultHost)
	setDefault(&c.Server.Port, defaultPort)
	setDefault(&c.Server.MaxClients, defaultMaxClients)

	setDefault(&c.Network.HeartbeatInterval, defaultHeartbeatInterval)
	setDefault(&c.Network.ConnectionTimeout, defaultConnectionTimeout)
	setDefault(&c.Network.DialTimeout, defaultDialTimeout)
	setDefault(&c.Network.SocketBuffer, defaultSocketBuffer)
	setDefault(&c.Network.KeepAlive, defaultKeepAlive)

	setDefault(&c.Game.BoardWidth, defaultBoardWidth)
	setDefault(&c.Game.BoardHeight, defaultBoardHeight)
	setDefault(&c.Game.TickRate, defaultTickRate)
	setDefault(&c.Game.LockDelay, defaultLockDelay)
	setDefault(&c.Game.LockMoves, defaultLockMoves)
	setDefault(&c.Game.PreviewSize, defaultPreviewSize)
	setDefault(&c.Game.BaseFallInterval, defaultBaseFallInterval)
	setDefault(&c.Game.MinFallInterval, defaultMinFallInterval)
	setDefault(&c.Game.SpeedRamp, defaultSpeedRamp)
	setDefault(&c.Game.TargetInterval, defaultTargetInterval)
	setDefault(&c.Game.Countdown, defaultCountdown)

	setDefault(&c.Redis.Addr, defaultRedisAddr)

	setDefault(&c.Spectator.Host, defaultSpectatorHost)
	setDefault(&c.Spectator.Port, defaultSpectatorPort)
	setDefault(&c.Spectator.MaxSpectators, defaultMaxSpectators)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Validate 检查不可能的取值
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(validPort(c.Server.Port), "server.port 超出范围: %d", c.Server.Port)
	check(c.Server.MaxClients >= 1 && c.Server.MaxClients <= 3, "server.max_clients 必须在 1-3 之间: %d", c.Server.MaxClients)

	check(c.Network.HeartbeatInterval > 0, "network.heartbeat_interval 必须为正数")
	check(c.Network.ConnectionTimeout > c.Network.HeartbeatInterval,
		"network.connection_timeout (%d) 必须大于 heartbeat_interval (%d)", c.Network.ConnectionTimeout, c.Network.HeartbeatInterval)
	check(c.Network.SocketBuffer > 0, "network.socket_buffer 必须为正数")

	check(c.Game.BoardWidth >= 4 && c.Game.BoardWidth <= 64, "game.board_width 必须在 4-64 之间: %d", c.Game.BoardWidth)
	check(c.Game.BoardHeight >= 4 && c.Game.BoardHeight <= 64, "game.board_height 必须在 4-64 之间: %d", c.Game.BoardHeight)
	check(c.Game.TickRate > 0 && c.Game.TickRate <= 1000, "game.tick_rate 必须在 1-1000 之间: %d", c.Game.TickRate)
	check(c.Game.LockDelay > 0, "game.lock_delay 必须为正数")
	check(c.Game.LockMoves > 0, "game.lock_moves 必须为正数")
	check(c.Game.PreviewSize > 0, "game.preview_size 必须为正数")
	check(c.Game.MinFallInterval > 0 && c.Game.MinFallInterval <= c.Game.BaseFallInterval,
		"game.min_fall_interval (%d) 必须在 0 与 base_fall_interval (%d) 之间", c.Game.MinFallInterval, c.Game.BaseFallInterval)
	check(c.Game.TargetInterval > 0, "game.target_interval 必须为正数")

	if c.Spectator.Enabled {
		check(validPort(c.Spectator.Port), "spectator.port 超出范围: %d", c.Spectator.Port)
		check(c.Spectator.Port != c.Server.Port || c.Spectator.Host != c.Server.Host, "spectator 与 server 使用了同一个地址")
		check(c.Spectator.MaxSpectators > 0, "spectator.max_spectators 必须为正数")
	}

	return errors.Join(errs...)
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
