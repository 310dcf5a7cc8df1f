package convert

import (
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

// 各载荷的字段号，只能追加，不能复用。零值字段不写出。
// 等价的 .proto 描述（信封见 codec 包）：
//
//	message Envelope {          // codec
//	  uint64 version = 1;
//	  uint64 type    = 2;
//	  uint64 sender  = 3;
//	  bytes  payload = 4;
//	}
//	message PlayerAssigned { int64 player_id = 1; }
//	message Heartbeat      { int64 timestamp = 1; }   // Unix 毫秒
//	message Piece {
//	  uint32 kind = 1;
//	  sint64 x    = 2;
//	  sint64 y    = 3;
//	  repeated bytes shape = 4;  // 每行一个元素，每格一字节 0/1
//	}
//	message AttackTotal { sint64 target = 1; int64 amount = 2; }
//	message GameState {
//	  int64  player_id       = 1;
//	  string name            = 2;
//	  repeated bytes grid    = 3;  // 自顶向下每行一个元素，每格一字节
//	  int64  score           = 4;
//	  int64  lines           = 5;
//	  sint64 combo           = 6;  // -1 表示无连击
//	  bool   game_over       = 7;
//	  int64  attack_amount   = 8;
//	  sint64 attack_target   = 9;
//	  Piece  piece           = 10;
//	  repeated AttackTotal attack_totals = 11;  // 按 target 升序
//	  int64  rank            = 12;
//	  bool   disconnected    = 13;
//	  bool   b2b             = 14;
//	  int64  pending_garbage = 15;
//	  uint32 hold            = 16;
//	  sint64 target          = 17;
//	  uint64 seq             = 18;
//	}
//	message Broadcast {
//	  repeated GameState states = 1;  // 按 player_id 升序
//	  int64 player_count        = 2;
//	}
//	message LobbyControl {
//	  int64 player_count         = 1;
//	  bool  start                = 2;
//	  repeated int64 player_ids  = 3;  // 写出时不打包，读取兼容打包格式
//	}
const (
	fieldAssignedPlayerID protowire.Number = 1

	fieldHeartbeatTimestamp protowire.Number = 1

	fieldPieceKind  protowire.Number = 1
	fieldPieceX     protowire.Number = 2
	fieldPieceY     protowire.Number = 3
	fieldPieceShape protowire.Number = 4

	fieldTotalTarget protowire.Number = 1
	fieldTotalAmount protowire.Number = 2

	fieldStatePlayerID       protowire.Number = 1
	fieldStateName           protowire.Number = 2
	fieldStateGrid           protowire.Number = 3
	fieldStateScore          protowire.Number = 4
	fieldStateLines          protowire.Number = 5
	fieldStateCombo          protowire.Number = 6
	fieldStateGameOver       protowire.Number = 7
	fieldStateAttackAmount   protowire.Number = 8
	fieldStateAttackTarget   protowire.Number = 9
	fieldStatePiece          protowire.Number = 10
	fieldStateAttackTotals   protowire.Number = 11
	fieldStateRank           protowire.Number = 12
	fieldStateDisconnected   protowire.Number = 13
	fieldStateB2B            protowire.Number = 14
	fieldStatePendingGarbage protowire.Number = 15
	fieldStateHold           protowire.Number = 16
	fieldStateTarget         protowire.Number = 17
	fieldStateSeq            protowire.Number = 18

	fieldBroadcastStates      protowire.Number = 1
	fieldBroadcastPlayerCount protowire.Number = 2

	fieldLobbyPlayerCount protowire.Number = 1
	fieldLobbyStart       protowire.Number = 2
	fieldLobbyPlayerIDs   protowire.Number = 3
)

func encodePlayerAssigned(p *protocol.PlayerAssignedPayload) []byte {
	return appendInt(nil, fieldAssignedPlayerID, p.PlayerID)
}

func encodeHeartbeat(p *protocol.HeartbeatPayload) []byte {
	return appendUint(nil, fieldHeartbeatTimestamp, uint64(p.Timestamp))
}

func encodePiece(p *protocol.PieceInfo) []byte {
	var b []byte
	b = appendUint(b, fieldPieceKind, uint64(p.Kind))
	b = appendSint(b, fieldPieceX, p.X)
	b = appendSint(b, fieldPieceY, p.Y)
	for _, row := range p.Shape {
		cells := make([]byte, len(row))
		for i, filled := range row {
			if filled {
				cells[i] = 1
			}
		}
		b = appendBytes(b, fieldPieceShape, cells)
	}
	return b
}

func encodeGameState(s *protocol.GameStatePayload) []byte {
	var b []byte
	b = appendInt(b, fieldStatePlayerID, s.PlayerID)
	b = appendString(b, fieldStateName, s.Name)
	for _, row := range s.Grid {
		b = appendBytes(b, fieldStateGrid, row)
	}
	b = appendInt(b, fieldStateScore, s.Score)
	b = appendInt(b, fieldStateLines, s.Lines)
	b = appendSint(b, fieldStateCombo, s.Combo)
	b = appendBool(b, fieldStateGameOver, s.GameOver)
	b = appendInt(b, fieldStateAttackAmount, s.AttackAmount)
	b = appendSint(b, fieldStateAttackTarget, s.AttackTarget)
	if s.Piece != nil {
		b = appendBytes(b, fieldStatePiece, encodePiece(s.Piece))
	}

	targets := make([]int, 0, len(s.AttackTotals))
	for id := range s.AttackTotals {
		targets = append(targets, id)
	}
	slices.Sort(targets)
	for _, id := range targets {
		var entry []byte
		entry = appendSint(entry, fieldTotalTarget, id)
		entry = appendInt(entry, fieldTotalAmount, s.AttackTotals[id])
		b = appendBytes(b, fieldStateAttackTotals, entry)
	}

	b = appendInt(b, fieldStateRank, s.Rank)
	b = appendBool(b, fieldStateDisconnected, s.Disconnected)
	b = appendBool(b, fieldStateB2B, s.B2B)
	b = appendInt(b, fieldStatePendingGarbage, s.PendingGarbage)
	b = appendUint(b, fieldStateHold, uint64(s.Hold))
	b = appendSint(b, fieldStateTarget, s.Target)
	b = appendUint(b, fieldStateSeq, s.Seq)
	return b
}

func encodeBroadcast(p *protocol.BroadcastPayload) []byte {
	var b []byte
	for i := range p.States {
		b = appendBytes(b, fieldBroadcastStates, encodeGameState(&p.States[i]))
	}
	return appendInt(b, fieldBroadcastPlayerCount, p.PlayerCount)
}

func encodeLobbyControl(p *protocol.LobbyControlPayload) []byte {
	var b []byte
	b = appendInt(b, fieldLobbyPlayerCount, p.PlayerCount)
	b = appendBool(b, fieldLobbyStart, p.Start)
	for _, id := range p.PlayerIDs {
		b = protowire.AppendTag(b, fieldLobbyPlayerIDs, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(id)))
	}
	return b
}
