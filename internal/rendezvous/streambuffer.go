package rendezvous

import (
	"context"
	"errors"
	"io"
)

// Buffer is a contiguous immutable byte range handed from a producer to a
// consumer through a Queue. Buffers are conceptually shared-ownership:
// the reader's Commit (via the underlying stream) drops the consumer's
// reference.
type Buffer []byte

// ErrInvalidPosition is returned by Seek when asked to move outside the
// currently-held buffer: Seek only allows repositioning within the
// buffer currently underflowed, never across a buffer boundary.
var ErrInvalidPosition = errors.New("rendezvous: invalid position")

// ErrMisalignedBuffer is returned when a buffer's length is not a
// multiple of the stream's code-unit width.
var ErrMisalignedBuffer = errors.New("rendezvous: misaligned buffer")

// StreamBuffer adapts a Queue[Buffer] into a sequential byte reader: a
// producer goroutine Puts successive Buffers; StreamBuffer's ReadByte
// calls Underflow to fetch the next one once the current window is
// exhausted.
type StreamBuffer struct {
	q         *Queue[Buffer]
	unitWidth int // 1, 2, or 4; enforces alignment on each underflowed buffer

	cur   Buffer
	token *Token
	pos   int // read cursor within cur

	closed bool
}

// NewStreamBuffer returns a StreamBuffer reading Buffers off q. unitWidth
// is the code-unit size of the encoding the caller will interpret the
// bytes as (1 for UTF-8, 2 for UTF-16, 4 for UTF-32); pass 1 if unknown.
func NewStreamBuffer(q *Queue[Buffer], unitWidth int) *StreamBuffer {
	if unitWidth <= 0 {
		unitWidth = 1
	}
	return &StreamBuffer{q: q, unitWidth: unitWidth}
}

// Underflow blocks until the next buffer arrives (or ctx is done),
// releasing the previous buffer's rendezvous token first. It returns
// io.EOF once the producer has sent a nil buffer, or after Close.
func (s *StreamBuffer) Underflow(ctx context.Context) error {
	if s.token != nil {
		s.token.Commit()
		s.token = nil
	}
	if s.closed {
		return io.EOF
	}
	buf, tok, res := s.q.Acquire(ctx)
	if res != OK {
		return errTimeout(res)
	}
	if len(buf)%s.unitWidth != 0 {
		tok.Commit()
		return ErrMisalignedBuffer
	}
	if buf == nil {
		// A nil buffer is the producer's end-of-stream signal.
		tok.Commit()
		s.closed = true
		return io.EOF
	}
	s.cur = buf
	s.token = tok
	s.pos = 0
	return nil
}

// ReadByte implements io.ByteReader over the current window, underflowing
// automatically. Use ReadByteCtx when a context is needed for the
// underlying Underflow call; ReadByte uses context.Background().
func (s *StreamBuffer) ReadByte() (byte, error) {
	return s.ReadByteCtx(context.Background())
}

func (s *StreamBuffer) ReadByteCtx(ctx context.Context) (byte, error) {
	for s.pos >= len(s.cur) {
		if err := s.Underflow(ctx); err != nil {
			return 0, err
		}
	}
	b := s.cur[s.pos]
	s.pos++
	return b, nil
}

// Pos returns the read cursor within the buffer currently held.
func (s *StreamBuffer) Pos() int { return s.pos }

// Len returns the length of the buffer currently held.
func (s *StreamBuffer) Len() int { return len(s.cur) }

// Seek repositions within the currently-held buffer only; crossing a
// buffer boundary is rejected.
func (s *StreamBuffer) Seek(pos int) error {
	if pos < 0 || pos > len(s.cur) {
		return ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

// Close releases any held rendezvous token without waiting for a further
// underflow; subsequent reads observe io.EOF.
func (s *StreamBuffer) Close() {
	if s.token != nil {
		s.token.Commit()
		s.token = nil
	}
	s.closed = true
}

func errTimeout(r Result) error {
	return context.DeadlineExceeded
}
