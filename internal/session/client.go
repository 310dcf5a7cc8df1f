package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palemoky/tetris-battle/internal/apperrors"
	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/codec"
	"github.com/palemoky/tetris-battle/internal/transport"
)

// ClientConfig 客户端参数
type ClientConfig struct {
	Addr              string
	Transport         transport.Options
	HeartbeatInterval time.Duration
	Timeout           time.Duration
	Now               func() time.Time
}

// Client 客户端协调器：发送本机状态，接收主机的全局快照
type Client struct {
	conn    *transport.Conn
	id      int
	monitor *Monitor

	lobby Latest[*protocol.LobbyControlPayload]
	world Latest[*protocol.BroadcastPayload]

	started atomic.Bool
	lost    atomic.Bool
	wg      sync.WaitGroup

	errMu   sync.Mutex
	lastErr error
}

// Dial 连接主机并等待分配玩家 ID
// 房间已满或已开局时主机直接断开，返回 apperrors.ErrRoomFull
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	conn, err := transport.Dial(ctx, cfg.Addr, cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Addr, err)
	}

	hs, err := handshake(ctx, conn, cfg.Timeout)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := &Client{
		conn:    conn,
		id:      hs.id,
		monitor: NewMonitor(cfg.HeartbeatInterval, cfg.Timeout, cfg.Now),
	}
	if hs.lobby != nil {
		c.lobby.Store(hs.lobby)
	}
	c.monitor.Touch(HostID)
	c.wg.Go(c.readLoop)
	log.Printf("✅ 已加入主机 %s，玩家编号 %d", cfg.Addr, hs.id)
	return c, nil
}

// handshakeResult 握手结果；lobby 是编号之前到达的最近一条大厅消息
type handshakeResult struct {
	id    int
	lobby *protocol.LobbyControlPayload
	err   error
}

// handshake 读取第一条 PlayerAssigned 消息，期间到达的大厅消息保留下来交给 PollLobby
func handshake(ctx context.Context, conn *transport.Conn, timeout time.Duration) (handshakeResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	done := make(chan handshakeResult, 1)
	go func() {
		var lobby *protocol.LobbyControlPayload
		for {
			msg, err := conn.Receive()
			if err != nil {
				if errors.Is(err, io.EOF) || transport.IsClosed(err) {
					err = apperrors.ErrRoomFull
				}
				done <- handshakeResult{err: err}
				return
			}
			if msg.Type != protocol.MsgPlayerAssigned {
				if msg.Type == protocol.MsgLobbyControl {
					if p, err := codec.ParsePayload[protocol.LobbyControlPayload](msg); err == nil {
						lobby = p
					}
				}
				codec.PutMessage(msg)
				continue
			}
			p, err := codec.ParsePayload[protocol.PlayerAssignedPayload](msg)
			codec.PutMessage(msg)
			if err != nil {
				done <- handshakeResult{err: fmt.Errorf("%w: %v", apperrors.ErrHandshake, err)}
				return
			}
			done <- handshakeResult{id: p.PlayerID, lobby: lobby}
			return
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		return r, r.err
	case <-timer.C:
		_ = conn.Close()
		return handshakeResult{}, apperrors.ErrHandshake
	case <-ctx.Done():
		_ = conn.Close()
		return handshakeResult{}, ctx.Err()
	}
}

// readLoop 只把消息写入各自的槽位
func (c *Client) readLoop() {
	err := c.conn.ReadPump(func(msg *protocol.Message) {
		defer codec.PutMessage(msg)
		c.monitor.Touch(HostID)

		switch msg.Type {
		case protocol.MsgLobbyControl:
			if p, err := codec.ParsePayload[protocol.LobbyControlPayload](msg); err == nil {
				c.lobby.Store(p)
			}
		case protocol.MsgBroadcast:
			if p, err := codec.ParsePayload[protocol.BroadcastPayload](msg); err == nil {
				c.world.Store(p)
			}
		}
	})
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
	log.Printf("🔌 与主机的连接结束: %v", err)
	c.lost.Store(true)
}

// PlayerID 主机分配的玩家 ID
func (c *Client) PlayerID() int { return c.id }

// PollLobby 取走大厅状态，发送心跳并检测主机超时
// 开始信号被取走后 Started 为 true，之后不再变化
func (c *Client) PollLobby() (LobbyStatus, bool) {
	c.maintain()

	p, ok := c.lobby.Take()
	if !ok {
		return LobbyStatus{}, false
	}
	status := LobbyStatus{PlayerCount: p.PlayerCount, PlayerIDs: p.PlayerIDs, Started: p.Start}
	if p.Start {
		c.started.Store(true)
	}
	return status, true
}

// Receive 取走最近一次的全局快照
func (c *Client) Receive() (*protocol.BroadcastPayload, bool) {
	return c.world.Take()
}

// Publish 发送本机状态；发送失败只标记连接，由超时检测统一处理
func (c *Client) Publish(state *protocol.GameStatePayload) {
	state.PlayerID = c.id
	if err := c.sendMsg(protocol.MsgGameState, state); err != nil && !dropped(err) {
		log.Printf("⚠️ 发送状态失败: %v", err)
	}
	c.maintain()
}

// maintain 到期发送心跳；主机静默超时则判定为断线
func (c *Client) maintain() {
	if c.lost.Load() {
		return
	}
	if c.monitor.HeartbeatDue() {
		hb := protocol.HeartbeatPayload{Timestamp: c.monitor.Now().UnixMilli()}
		if err := c.sendMsg(protocol.MsgHeartbeat, hb); err != nil && !dropped(err) {
			log.Printf("⚠️ 发送心跳失败: %v", err)
		}
	}
	if len(c.monitor.Expired()) > 0 {
		log.Printf("⏱️ 主机超时未响应，判定为断线")
		c.lost.Store(true)
		_ = c.conn.Close()
	}
}

func (c *Client) sendMsg(msgType protocol.MessageType, payload any) error {
	msg, err := codec.NewMessage(msgType, c.id, payload)
	if err != nil {
		return err
	}
	defer codec.PutMessage(msg)
	return c.conn.Send(msg)
}

// dropped 帧被丢弃或连接已不可写，交给超时检测处理，不必逐帧记录
func dropped(err error) bool {
	return errors.Is(err, transport.ErrSendQueueFull) || errors.Is(err, transport.ErrUnhealthy)
}

// Lost 连接已断开
func (c *Client) Lost() bool {
	return c.lost.Load()
}

// Err 接收循环结束的原因
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

// Started 是否已收到开始信号
func (c *Client) Started() bool {
	return c.started.Load()
}

// Close 断开连接并等待接收循环退出
func (c *Client) Close() error {
	err := c.conn.Close()
	c.wg.Wait()
	return err
}
