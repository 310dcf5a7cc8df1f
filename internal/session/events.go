package session

// EventKind 对局事件类型，供界面和音效使用
type EventKind uint8

const (
	EventLineClear EventKind = iota + 1 // 本机消行
	EventTetris                         // 本机一次消 4 行
	EventGarbageIn                      // 收到攻击
	EventAttack                         // 发出攻击
	EventKO                             // 有玩家被淘汰
	EventMatchOver                      // 对局结束
)

var eventNames = map[EventKind]string{
	EventLineClear: "line clear",
	EventTetris:    "tetris",
	EventGarbageIn: "garbage in",
	EventAttack:    "attack",
	EventKO:        "ko",
	EventMatchOver: "match over",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event 一个对局事件
// Player 为相关玩家（攻击时为目标），Amount 为行数、垃圾行数或名次
type Event struct {
	Kind   EventKind
	Player int
	Amount int
}
