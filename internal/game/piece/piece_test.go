package piece

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SpawnsCentered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind  Kind
		wantX int
	}{
		{KindI, 3},
		{KindO, 4},
		{KindT, 4},
		{KindL, 4},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			p := New(tt.kind, 10, 2)
			assert.Equal(t, tt.wantX, p.X)
			assert.Equal(t, 0, p.Y)
			assert.Equal(t, 2, p.Owner)
			assert.Len(t, p.Cells(), 4)
		})
	}
}

func TestRotateCW(t *testing.T) {
	t.Parallel()

	p := New(KindT, 10, 0)
	p.RotateCW()
	assert.Equal(t, [][]bool{
		{true, false},
		{true, true},
		{true, false},
	}, p.Shape)

	i := New(KindI, 10, 0)
	i.RotateCW()
	assert.Equal(t, 1, i.Width())
	assert.Equal(t, 4, i.Height())
}

func TestRotate_FullTurnRestoresShape(t *testing.T) {
	t.Parallel()

	for _, k := range AllKinds {
		p := New(k, 10, 0)
		orig := cloneShape(p.Shape)

		for range 4 {
			p.RotateCW()
		}
		assert.Equal(t, orig, p.Shape, "cw x4 %s", k)

		p.RotateCCW()
		p.RotateCW()
		assert.Equal(t, orig, p.Shape, "ccw+cw %s", k)

		p.Rotate180()
		p.Rotate180()
		assert.Equal(t, orig, p.Shape, "180 x2 %s", k)
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	p := New(KindS, 10, 1)
	c := p.Clone()
	c.Shape[0][0] = true
	c.X = 7
	assert.False(t, p.Shape[0][0])
	assert.Equal(t, 4, p.X)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, ok := ParseKind("Z")
	assert.True(t, ok)
	assert.Equal(t, KindZ, k)

	_, ok = ParseKind("X")
	assert.False(t, ok)
	assert.False(t, KindNone.Valid())
	assert.Equal(t, uint8(3), KindT.Color())
}
