package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/tetris-battle/internal/game/piece"
	"github.com/palemoky/tetris-battle/internal/protocol"
)

func sampleState(id int) protocol.GameStatePayload {
	grid := make([][]uint8, 20)
	for y := range grid {
		grid[y] = make([]uint8, 10)
	}
	grid[19] = []uint8{8, 8, 8, 0, 8, 8, 8, 8, 8, 8}
	grid[18][2] = 3

	return protocol.GameStatePayload{
		PlayerID:     id,
		Name:         "alice",
		Grid:         grid,
		Score:        1200,
		Lines:        8,
		Combo:        -1,
		B2B:          true,
		AttackAmount: 2,
		AttackTarget: -1,
		Piece: &protocol.PieceInfo{
			Kind:  uint8(piece.KindT),
			X:     4,
			Y:     -1,
			Shape: [][]bool{{false, true, false}, {true, true, true}},
		},
		AttackTotals:   map[int]int{0: 3, 2: 5},
		PendingGarbage: 1,
		Hold:           uint8(piece.KindI),
		Target:         2,
		Seq:            42,
	}
}

func TestGameStateRoundTrip(t *testing.T) {
	t.Parallel()

	original := sampleState(1)
	data, err := EncodePayload(protocol.MsgGameState, original)
	require.NoError(t, err)

	decoded, err := DecodePayload(protocol.MsgGameState, data)
	require.NoError(t, err)
	assert.Equal(t, &original, decoded)
}

func TestGameStateZeroValues(t *testing.T) {
	t.Parallel()

	// 玩家 0、无攻击目标以外的零值字段都被省略
	original := protocol.GameStatePayload{Combo: 0, Target: -1, AttackTarget: -1, GameOver: true, Rank: 3, Disconnected: true}
	data, err := EncodePayload(protocol.MsgGameState, &original)
	require.NoError(t, err)

	decoded, err := DecodePayload(protocol.MsgGameState, data)
	require.NoError(t, err)
	assert.Equal(t, &original, decoded)
}

func TestBroadcastRoundTrip(t *testing.T) {
	t.Parallel()

	original := protocol.BroadcastPayload{
		States:      []protocol.GameStatePayload{sampleState(0), sampleState(1), sampleState(3)},
		PlayerCount: 3,
	}
	data, err := EncodePayload(protocol.MsgBroadcast, &original)
	require.NoError(t, err)

	decoded, err := DecodePayload(protocol.MsgBroadcast, data)
	require.NoError(t, err)
	b := decoded.(*protocol.BroadcastPayload)
	assert.Equal(t, original, *b)

	s, ok := b.State(3)
	require.True(t, ok)
	assert.Equal(t, 3, s.PlayerID)
	_, ok = b.State(2)
	assert.False(t, ok)
}

func TestLobbyControlRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []protocol.LobbyControlPayload{
		{PlayerCount: 2},
		{PlayerCount: 3, Start: true, PlayerIDs: []int{0, 1, 3}},
	}
	for _, original := range tests {
		data, err := EncodePayload(protocol.MsgLobbyControl, original)
		require.NoError(t, err)
		decoded, err := DecodePayload(protocol.MsgLobbyControl, data)
		require.NoError(t, err)
		assert.Equal(t, &original, decoded)
	}
}

func TestLobbyControl_PackedPlayerIDs(t *testing.T) {
	t.Parallel()

	var packed []byte
	for _, id := range []int{0, 2, 3} {
		packed = protowire.AppendVarint(packed, uint64(id))
	}
	data := protowire.AppendTag(nil, fieldLobbyPlayerIDs, protowire.BytesType)
	data = protowire.AppendBytes(data, packed)

	decoded, err := DecodePayload(protocol.MsgLobbyControl, data)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, decoded.(*protocol.LobbyControlPayload).PlayerIDs)
}

func TestSmallPayloadsRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := EncodePayload(protocol.MsgPlayerAssigned, protocol.PlayerAssignedPayload{PlayerID: 3})
	require.NoError(t, err)
	decoded, err := DecodePayload(protocol.MsgPlayerAssigned, data)
	require.NoError(t, err)
	assert.Equal(t, &protocol.PlayerAssignedPayload{PlayerID: 3}, decoded)

	data, err = EncodePayload(protocol.MsgHeartbeat, &protocol.HeartbeatPayload{Timestamp: 1700000000123})
	require.NoError(t, err)
	decoded, err = DecodePayload(protocol.MsgHeartbeat, data)
	require.NoError(t, err)
	assert.Equal(t, &protocol.HeartbeatPayload{Timestamp: 1700000000123}, decoded)
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	t.Parallel()

	data := encodePlayerAssigned(&protocol.PlayerAssignedPayload{PlayerID: 2})
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "from a newer peer")
	data = protowire.AppendTag(data, 100, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 7)

	decoded, err := DecodePayload(protocol.MsgPlayerAssigned, data)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.(*protocol.PlayerAssignedPayload).PlayerID)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated varint", []byte{0x08, 0x80}},
		{"truncated bytes", []byte{0x1a, 0x05, 0x01}},
		{"wrong wire type", protowire.AppendString(protowire.AppendTag(nil, fieldStateScore, protowire.BytesType), "x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodePayload(protocol.MsgGameState, tt.data)
			assert.ErrorIs(t, err, protocol.ErrMalformedField)
		})
	}
}

func TestEncodePayload_Errors(t *testing.T) {
	t.Parallel()

	_, err := EncodePayload(protocol.MsgGameState, protocol.HeartbeatPayload{})
	assert.ErrorIs(t, err, protocol.ErrPayloadType)

	_, err = EncodePayload(protocol.MessageType(200), protocol.HeartbeatPayload{})
	assert.ErrorIs(t, err, protocol.ErrUnknownType)

	_, err = DecodePayload(protocol.MsgUnknown, nil)
	assert.ErrorIs(t, err, protocol.ErrUnknownType)

	data, err := EncodePayload(protocol.MsgHeartbeat, nil)
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestPieceConversion(t *testing.T) {
	t.Parallel()

	p := piece.New(piece.KindL, 10, 2)
	p.RotateCW()
	p.Y = 5

	info := PieceToInfo(p)
	back := InfoToPiece(info, 2)
	assert.Equal(t, p, back)

	info.Shape[0][0] = !info.Shape[0][0]
	assert.NotEqual(t, p.Shape, info.Shape, "PieceToInfo copies the shape")

	assert.Nil(t, PieceToInfo(nil))
	assert.Nil(t, InfoToPiece(&protocol.PieceInfo{Kind: 0}, 0))
	assert.Nil(t, InfoToPiece(nil, 0))
}

func TestCloneGrid(t *testing.T) {
	t.Parallel()

	grid := [][]uint8{{1, 0}, {0, 2}}
	c := CloneGrid(grid)
	c[0][0] = 9
	assert.Equal(t, uint8(1), grid[0][0])
	assert.Nil(t, CloneGrid(nil))
}

// 编码结果与字段号表一致：字段号、线上类型和 zigzag 编码的负数
func TestGameStateFieldTable(t *testing.T) {
	t.Parallel()

	st := sampleState(1)
	st.Rank = 2
	st.Disconnected = true
	st.GameOver = true
	data := encodeGameState(&st)

	seen := make(map[protowire.Number]protowire.Type)
	var combo, attackTarget uint64
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		require.Positive(t, n)
		data = data[n:]
		seen[num] = typ

		n = protowire.ConsumeFieldValue(num, typ, data)
		require.Positive(t, n)
		switch num {
		case 6:
			combo, _ = protowire.ConsumeVarint(data)
		case 9:
			attackTarget, _ = protowire.ConsumeVarint(data)
		}
		data = data[n:]
	}

	want := map[protowire.Number]protowire.Type{
		1: protowire.VarintType, 2: protowire.BytesType, 3: protowire.BytesType,
		4: protowire.VarintType, 5: protowire.VarintType, 6: protowire.VarintType,
		7: protowire.VarintType, 8: protowire.VarintType, 9: protowire.VarintType,
		10: protowire.BytesType, 11: protowire.BytesType, 12: protowire.VarintType,
		13: protowire.VarintType, 14: protowire.VarintType, 15: protowire.VarintType,
		16: protowire.VarintType, 17: protowire.VarintType, 18: protowire.VarintType,
	}
	assert.Equal(t, want, seen)
	assert.Equal(t, int64(-1), protowire.DecodeZigZag(combo))
	assert.Equal(t, int64(-1), protowire.DecodeZigZag(attackTarget))
}
