package session

import (
	"fmt"
	"log"
	"maps"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/palemoky/tetris-battle/internal/apperrors"
	"github.com/palemoky/tetris-battle/internal/protocol"
	"github.com/palemoky/tetris-battle/internal/protocol/codec"
	"github.com/palemoky/tetris-battle/internal/transport"
)

const (
	// DefaultMaxClients 主机之外最多接受的连接数
	DefaultMaxClients = 3
	// lobbyInterval 大厅人数广播间隔
	lobbyInterval = 200 * time.Millisecond
)

// HostConfig 主机参数
type HostConfig struct {
	Addr              string
	MaxClients        int
	Transport         transport.Options
	HeartbeatInterval time.Duration
	Timeout           time.Duration
	Now               func() time.Time // 测试注入时钟
}

// peer 一个已连接的客户端
type peer struct {
	id    int
	conn  *transport.Conn
	state Latest[*protocol.GameStatePayload]

	last    *protocol.GameStatePayload // 最近一次取走的状态，tick 协程独占
	dropped bool                       // 开局后因超时被移出广播
}

// Host 主机端协调器：接受连接、分配 ID、汇总并广播全局快照
type Host struct {
	cfg     HostConfig
	ln      *transport.Listener
	monitor *Monitor

	mu      sync.Mutex
	peers   map[int]*peer
	started bool
	closed  bool

	own         *protocol.GameStatePayload
	lastLobby   time.Time
	onBroadcast func(*protocol.BroadcastPayload)

	wg sync.WaitGroup
}

// Listen 开始监听并在后台接受连接
func Listen(cfg HostConfig) (*Host, error) {
	if cfg.MaxClients <= 0 || cfg.MaxClients > DefaultMaxClients {
		cfg.MaxClients = DefaultMaxClients
	}
	ln, err := transport.Listen(cfg.Addr, cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	h := &Host{
		cfg:     cfg,
		ln:      ln,
		monitor: NewMonitor(cfg.HeartbeatInterval, cfg.Timeout, cfg.Now),
		peers:   make(map[int]*peer),
	}
	h.wg.Go(h.acceptLoop)
	log.Printf("🎮 主机已启动，监听 %s", ln.Addr())
	return h, nil
}

// Addr 实际监听地址
func (h *Host) Addr() string {
	return h.ln.Addr().String()
}

// OnBroadcast 每次广播后回调（观战推送），必须在开局前设置
func (h *Host) OnBroadcast(fn func(*protocol.BroadcastPayload)) {
	h.onBroadcast = fn
}

// PlayerID 主机玩家 ID
func (h *Host) PlayerID() int { return HostID }

// Lost 主机不会失去连接
func (h *Host) Lost() bool { return false }

// Started 是否已开局
func (h *Host) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *Host) acceptLoop() {
	for {
		conn, err := h.ln.Accept()
		if err != nil {
			if transport.IsClosed(err) {
				return
			}
			log.Printf("⚠️ 接受连接失败: %v", err)
			continue
		}
		h.admit(conn)
	}
}

// admit 分配最小的空闲 ID；房间已满或已开局时直接关闭，不握手
func (h *Host) admit(conn *transport.Conn) {
	h.mu.Lock()
	if h.closed || h.started || len(h.peers) >= h.cfg.MaxClients {
		h.mu.Unlock()
		log.Printf("🚫 拒绝连接 %s: %v", conn.RemoteAddr(), apperrors.ErrRoomFull)
		_ = conn.Close()
		return
	}
	id := 1
	for ; id <= h.cfg.MaxClients; id++ {
		if _, taken := h.peers[id]; !taken {
			break
		}
	}
	p := &peer{id: id, conn: conn}
	// 编号先于任何广播入队，客户端握手一定先收到 PlayerAssigned
	if err := h.send(p, protocol.MsgPlayerAssigned, protocol.PlayerAssignedPayload{PlayerID: id}); err != nil {
		h.mu.Unlock()
		log.Printf("⚠️ 向玩家 %d 发送编号失败: %v", id, err)
		_ = conn.Close()
		return
	}
	h.peers[id] = p
	h.mu.Unlock()

	h.monitor.Touch(id)
	log.Printf("✅ 玩家 %d 已连接 (%s)", id, conn.RemoteAddr())

	h.wg.Go(func() { h.readLoop(p) })
}

// readLoop 只把消息写入槽位并刷新存活时间
func (h *Host) readLoop(p *peer) {
	err := p.conn.ReadPump(func(msg *protocol.Message) {
		defer codec.PutMessage(msg)
		h.monitor.Touch(p.id)

		if msg.Type != protocol.MsgGameState {
			return
		}
		state, err := codec.ParsePayload[protocol.GameStatePayload](msg)
		if err != nil {
			log.Printf("⚠️ 玩家 %d 状态解析失败: %v", p.id, err)
			return
		}
		state.PlayerID = p.id
		p.state.Store(state)
	})
	log.Printf("🔌 玩家 %d 接收循环结束: %v", p.id, err)

	// 大厅阶段直接移除；开局后交给超时检测处理
	h.mu.Lock()
	if !h.started && h.peers[p.id] == p {
		delete(h.peers, p.id)
		h.monitor.Forget(p.id)
	}
	h.mu.Unlock()
}

// PollLobby 大厅阶段由 tick 协程调用：广播人数、发送心跳、移除超时连接
func (h *Host) PollLobby() LobbyStatus {
	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if started {
		return LobbyStatus{PlayerCount: h.PlayerCount(), PlayerIDs: h.PlayerIDs(), Started: true}
	}

	for _, id := range h.monitor.Expired() {
		h.mu.Lock()
		p, ok := h.peers[id]
		if ok {
			delete(h.peers, id)
		}
		h.mu.Unlock()
		h.monitor.Forget(id)
		if ok {
			log.Printf("⏱️ 玩家 %d 大厅中超时，已移除", id)
			_ = p.conn.Close()
		}
	}

	status := LobbyStatus{PlayerCount: h.PlayerCount(), PlayerIDs: h.PlayerIDs()}
	now := h.monitor.Now()
	if now.Sub(h.lastLobby) >= lobbyInterval {
		h.lastLobby = now
		h.sendAll(protocol.MsgLobbyControl, protocol.LobbyControlPayload{PlayerCount: status.PlayerCount})
	}
	if h.monitor.HeartbeatDue() {
		h.sendAll(protocol.MsgHeartbeat, protocol.HeartbeatPayload{Timestamp: now.UnixMilli()})
	}
	return status
}

// PlayerCount 含主机在内的玩家数
func (h *Host) PlayerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return 1 + len(h.peers)
}

// PlayerIDs 含主机在内的全部玩家 ID（升序）
func (h *Host) PlayerIDs() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := append([]int{HostID}, slices.Sorted(maps.Keys(h.peers))...)
	return ids
}

// Start 至少 2 名玩家时开局，并向所有客户端发送一次开始信号
func (h *Host) Start() ([]int, error) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return nil, apperrors.ErrAlreadyStarted
	}
	if len(h.peers)+1 < 2 {
		h.mu.Unlock()
		return nil, apperrors.ErrNotEnoughPlayers
	}
	h.started = true
	h.mu.Unlock()

	ids := h.PlayerIDs()
	h.sendAll(protocol.MsgLobbyControl, protocol.LobbyControlPayload{
		PlayerCount: len(ids),
		Start:       true,
		PlayerIDs:   ids,
	})
	log.Printf("🚀 游戏开始，玩家: %v", ids)
	return ids, nil
}

// Receive 取走各客户端的最新状态，汇总为全局快照
func (h *Host) Receive() (*protocol.BroadcastPayload, bool) {
	fresh := false
	for _, p := range h.livePeers() {
		if state, ok := p.state.Take(); ok {
			p.last = state
			fresh = true
		}
	}
	if !fresh && !h.anyDropped() {
		return nil, false
	}
	return h.snapshot(false), true
}

// Publish 记录主机自己的状态，处理超时，并向所有客户端广播
func (h *Host) Publish(state *protocol.GameStatePayload) {
	state.PlayerID = HostID
	h.own = state

	h.dropExpired()

	b := h.snapshot(true)
	h.sendAll(protocol.MsgBroadcast, b)
	if h.monitor.HeartbeatDue() {
		h.sendAll(protocol.MsgHeartbeat, protocol.HeartbeatPayload{Timestamp: h.monitor.Now().UnixMilli()})
	}
	if h.onBroadcast != nil {
		h.onBroadcast(b)
	}
}

// dropExpired 开局后静默超时的连接移出广播，并在快照中标记为断线淘汰
func (h *Host) dropExpired() {
	for _, id := range h.monitor.Expired() {
		h.mu.Lock()
		p, ok := h.peers[id]
		h.mu.Unlock()
		h.monitor.Forget(id)
		if !ok || p.dropped {
			continue
		}
		h.mu.Lock()
		p.dropped = true
		h.mu.Unlock()
		_ = p.conn.Close()
		log.Printf("⏱️ 玩家 %d 超时未响应，判定为断线", id)
	}
}

// snapshot 汇总所有玩家状态（按 ID 升序）；断线玩家标记为淘汰
func (h *Host) snapshot(includeOwn bool) *protocol.BroadcastPayload {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for _, id := range slices.Sorted(maps.Keys(h.peers)) {
		peers = append(peers, h.peers[id])
	}
	h.mu.Unlock()

	b := &protocol.BroadcastPayload{PlayerCount: 1 + len(peers)}
	if includeOwn && h.own != nil {
		b.States = append(b.States, *h.own)
	}
	for _, p := range peers {
		switch {
		case p.dropped:
			b.States = append(b.States, disconnectedState(p))
		case p.last != nil:
			b.States = append(b.States, *p.last)
		}
	}
	return b
}

func disconnectedState(p *peer) protocol.GameStatePayload {
	s := protocol.GameStatePayload{PlayerID: p.id, Combo: -1, AttackTarget: -1, Target: -1}
	if p.last != nil {
		s = *p.last
	}
	s.GameOver = true
	s.Disconnected = true
	s.Piece = nil
	return s
}

func (h *Host) livePeers() []*peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		if !p.dropped {
			out = append(out, p)
		}
	}
	return out
}

func (h *Host) anyDropped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.peers {
		if p.dropped {
			return true
		}
	}
	return false
}

// sendAll 逐个发送；写出失败过的连接直接跳过，由超时检测统一处理，队列满的帧直接丢弃
func (h *Host) sendAll(msgType protocol.MessageType, payload any) {
	msg, err := codec.NewMessage(msgType, HostID, payload)
	if err != nil {
		log.Printf("⚠️ 编码 %s 失败: %v", msgType, err)
		return
	}
	defer codec.PutMessage(msg)

	for _, p := range h.sendablePeers() {
		err := p.conn.Send(msg)
		if err != nil && !dropped(err) {
			log.Printf("⚠️ 向玩家 %d 发送 %s 失败: %v", p.id, msgType, err)
		}
	}
}

// sendablePeers 未被移出且连接仍健康的客户端
func (h *Host) sendablePeers() []*peer {
	peers := h.livePeers()
	return slices.DeleteFunc(peers, func(p *peer) bool { return !p.conn.Healthy() })
}

func (h *Host) send(p *peer, msgType protocol.MessageType, payload any) error {
	msg, err := codec.NewMessage(msgType, HostID, payload)
	if err != nil {
		return err
	}
	defer codec.PutMessage(msg)
	return p.conn.Send(msg)
}

// Close 停止监听并关闭所有连接
func (h *Host) Close() error {
	err := h.ln.Close()
	h.mu.Lock()
	h.closed = true
	for _, p := range h.peers {
		_ = p.conn.Close()
	}
	h.mu.Unlock()
	h.wg.Wait()
	return err
}

// LANAddress 本机的局域网 IPv4 地址，用于大厅展示
func LANAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}
