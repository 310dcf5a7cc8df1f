package protocol

// SchemaVersion 线上消息格式版本，不一致的消息直接拒绝
const SchemaVersion = 1

// Message 基础消息结构，Payload 为已编码的载荷
type Message struct {
	Type    MessageType `json:"type"`
	Sender  int         `json:"sender"` // 发送者玩家 ID（主机为 0）
	Payload []byte      `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType uint8

const (
	MsgUnknown        MessageType = iota
	MsgPlayerAssigned             // 主机 → 客户端：分配玩家 ID
	MsgHeartbeat                  // 双向：心跳
	MsgGameState                  // 客户端 → 主机：本地玩家快照
	MsgBroadcast                  // 主机 → 客户端：全部玩家快照
	MsgLobbyControl               // 主机 → 客户端：大厅人数 / 开始信号
)

// messageTypeNames 消息类型名称映射表
var messageTypeNames = map[MessageType]string{
	MsgPlayerAssigned: "player_assigned",
	MsgHeartbeat:      "heartbeat",
	MsgGameState:      "game_state",
	MsgBroadcast:      "broadcast",
	MsgLobbyControl:   "lobby_control",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid 是否为已知消息类型
func (t MessageType) Valid() bool {
	_, ok := messageTypeNames[t]
	return ok
}
