package rendezvous

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamBufferReadsAcrossUnderflow(t *testing.T) {
	q := New[Buffer]()
	ctx := context.Background()
	sb := NewStreamBuffer(q, 1)

	go func() {
		_ = q.Put(ctx, Buffer("ab"))
		_ = q.Put(ctx, Buffer("cd"))
		_ = q.Put(ctx, nil)
	}()

	var got []byte
	for {
		b, err := sb.ReadByteCtx(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, "abcd", string(got))
}

func TestStreamBufferSeekWithinBufferOnly(t *testing.T) {
	sb := NewStreamBuffer(New[Buffer](), 1)
	sb.cur = Buffer("hello")
	require.NoError(t, sb.Seek(3))
	assert.Equal(t, 3, sb.Pos())
	assert.ErrorIs(t, sb.Seek(10), ErrInvalidPosition)
}

func TestStreamBufferRejectsMisalignment(t *testing.T) {
	q := New[Buffer]()
	ctx := context.Background()
	sb := NewStreamBuffer(q, 2)
	go func() { _ = q.Put(ctx, Buffer{0x00, 0x41, 0x00}) }()
	err := sb.Underflow(ctx)
	assert.ErrorIs(t, err, ErrMisalignedBuffer)
}
