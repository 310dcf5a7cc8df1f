package transport

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingWriter 记录 Write 调用次数
type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestWriteFrame_SingleWrite(t *testing.T) {
	t.Parallel()

	var w countingWriter
	require.NoError(t, WriteFrame(&w, []byte("hello")))
	assert.Equal(t, 1, w.writes)
	assert.Equal(t, []byte{0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'}, w.Bytes())
}

func TestReadFrame_Sequence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	payloads := [][]byte{[]byte("a"), {}, bytes.Repeat([]byte{7}, 70000), []byte("last")}
	for _, p := range payloads {
		require.NoError(t, WriteFrame(&buf, p))
	}

	// 逐字节读取模拟流式 socket 的分片到达
	r := iotest.OneByteReader(&buf)
	for _, want := range payloads {
		got, err := ReadFrame(r)
		require.NoError(t, err)
		assert.Equal(t, len(want), len(got))
		assert.True(t, bytes.Equal(want, got))
	}

	_, err := ReadFrame(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame_Truncated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("payload")))
	data := buf.Bytes()

	_, err := ReadFrame(bytes.NewReader(data[:len(data)-2]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadFrame(bytes.NewReader(data[:2]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrame_TooLarge(t *testing.T) {
	t.Parallel()

	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header, MaxFrameSize+1)
	_, err := ReadFrame(bytes.NewReader(header))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	err = WriteFrame(io.Discard, make([]byte, MaxFrameSize+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}
