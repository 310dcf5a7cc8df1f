package convert

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

func decodePlayerAssigned(data []byte) (*protocol.PlayerAssignedPayload, error) {
	p := &protocol.PlayerAssignedPayload{}
	err := walk(data, func(f field) (err error) {
		if f.num == fieldAssignedPlayerID {
			p.PlayerID, err = f.asInt()
		}
		return err
	})
	return p, err
}

func decodeHeartbeat(data []byte) (*protocol.HeartbeatPayload, error) {
	p := &protocol.HeartbeatPayload{}
	err := walk(data, func(f field) error {
		if f.num != fieldHeartbeatTimestamp {
			return nil
		}
		v, err := f.asUint()
		p.Timestamp = int64(v)
		return err
	})
	return p, err
}

func decodePiece(data []byte) (*protocol.PieceInfo, error) {
	p := &protocol.PieceInfo{}
	err := walk(data, func(f field) (err error) {
		switch f.num {
		case fieldPieceKind:
			var v uint64
			v, err = f.asUint()
			p.Kind = uint8(v)
		case fieldPieceX:
			p.X, err = f.asSint()
		case fieldPieceY:
			p.Y, err = f.asSint()
		case fieldPieceShape:
			var cells []byte
			if cells, err = f.asBytes(); err == nil {
				row := make([]bool, len(cells))
				for i, c := range cells {
					row[i] = c != 0
				}
				p.Shape = append(p.Shape, row)
			}
		}
		return err
	})
	return p, err
}

func decodeAttackTotal(data []byte) (target, amount int, err error) {
	err = walk(data, func(f field) (err error) {
		switch f.num {
		case fieldTotalTarget:
			target, err = f.asSint()
		case fieldTotalAmount:
			amount, err = f.asInt()
		}
		return err
	})
	return target, amount, err
}

func decodeGameState(data []byte) (*protocol.GameStatePayload, error) {
	s := &protocol.GameStatePayload{}
	err := walk(data, func(f field) (err error) {
		switch f.num {
		case fieldStatePlayerID:
			s.PlayerID, err = f.asInt()
		case fieldStateName:
			s.Name, err = f.asString()
		case fieldStateGrid:
			var row []byte
			if row, err = f.asBytes(); err == nil {
				s.Grid = append(s.Grid, append([]uint8(nil), row...))
			}
		case fieldStateScore:
			s.Score, err = f.asInt()
		case fieldStateLines:
			s.Lines, err = f.asInt()
		case fieldStateCombo:
			s.Combo, err = f.asSint()
		case fieldStateGameOver:
			s.GameOver, err = f.asBool()
		case fieldStateAttackAmount:
			s.AttackAmount, err = f.asInt()
		case fieldStateAttackTarget:
			s.AttackTarget, err = f.asSint()
		case fieldStatePiece:
			var raw []byte
			if raw, err = f.asBytes(); err == nil {
				s.Piece, err = decodePiece(raw)
			}
		case fieldStateAttackTotals:
			var raw []byte
			if raw, err = f.asBytes(); err != nil {
				return err
			}
			target, amount, err := decodeAttackTotal(raw)
			if err != nil {
				return err
			}
			if s.AttackTotals == nil {
				s.AttackTotals = make(map[int]int)
			}
			s.AttackTotals[target] = amount
		case fieldStateRank:
			s.Rank, err = f.asInt()
		case fieldStateDisconnected:
			s.Disconnected, err = f.asBool()
		case fieldStateB2B:
			s.B2B, err = f.asBool()
		case fieldStatePendingGarbage:
			s.PendingGarbage, err = f.asInt()
		case fieldStateHold:
			var v uint64
			v, err = f.asUint()
			s.Hold = uint8(v)
		case fieldStateTarget:
			s.Target, err = f.asSint()
		case fieldStateSeq:
			s.Seq, err = f.asUint()
		}
		return err
	})
	return s, err
}

func decodeBroadcast(data []byte) (*protocol.BroadcastPayload, error) {
	p := &protocol.BroadcastPayload{}
	err := walk(data, func(f field) (err error) {
		switch f.num {
		case fieldBroadcastStates:
			var raw []byte
			if raw, err = f.asBytes(); err != nil {
				return err
			}
			s, err := decodeGameState(raw)
			if err != nil {
				return err
			}
			p.States = append(p.States, *s)
		case fieldBroadcastPlayerCount:
			p.PlayerCount, err = f.asInt()
		}
		return err
	})
	return p, err
}

func decodeLobbyControl(data []byte) (*protocol.LobbyControlPayload, error) {
	p := &protocol.LobbyControlPayload{}
	err := walk(data, func(f field) (err error) {
		switch f.num {
		case fieldLobbyPlayerCount:
			p.PlayerCount, err = f.asInt()
		case fieldLobbyStart:
			p.Start, err = f.asBool()
		case fieldLobbyPlayerIDs:
			p.PlayerIDs, err = appendRepeatedInt(p.PlayerIDs, f)
		}
		return err
	})
	return p, err
}

// appendRepeatedInt 同时接受逐个编码和 packed 编码的重复整数字段
func appendRepeatedInt(dst []int, f field) ([]int, error) {
	if f.typ == protowire.VarintType {
		v, err := f.asInt()
		return append(dst, v), err
	}
	packed, err := f.asBytes()
	if err != nil {
		return dst, err
	}
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return dst, fmt.Errorf("%w: %v", protocol.ErrMalformedField, protowire.ParseError(n))
		}
		dst = append(dst, int(int64(v)))
		packed = packed[n:]
	}
	return dst, nil
}
