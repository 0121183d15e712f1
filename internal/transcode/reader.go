package transcode

import (
	"errors"
	"io"
)

// Reader decodes a stream of code units in a fixed Encoding into Unicode
// scalar values, one ReadRune call at a time, applying the same strict
// validation as ConvertOne. It is the primitive the grammar state machine
// (package json's parser) reads from; correctness-critical decoding stays
// in this hand-rolled, fail-fast path rather than delegating to a
// best-effort transform (see xtext.go for the non-strict alternative
// wired to golang.org/x/text, used by the CLI preview path).
type Reader struct {
	src    io.Reader
	enc    Encoding
	buf    []byte
	start  int
	eof    bool
	offset int64
}

// NewReader returns a Reader over src, interpreting its bytes as enc.
func NewReader(src io.Reader, enc Encoding) *Reader {
	return &Reader{src: src, enc: enc, buf: make([]byte, 0, 4096)}
}

// Offset returns the number of bytes consumed from src so far.
func (r *Reader) Offset() int64 { return r.offset }

func (r *Reader) fill(min int) error {
	for len(r.buf)-r.start < min && !r.eof {
		if r.start > 0 {
			copy(r.buf, r.buf[r.start:])
			r.buf = r.buf[:len(r.buf)-r.start]
			r.start = 0
		}
		if len(r.buf) == cap(r.buf) {
			grown := make([]byte, len(r.buf), cap(r.buf)*2+64)
			copy(grown, r.buf)
			r.buf = grown
		}
		n, err := r.src.Read(r.buf[len(r.buf):cap(r.buf)])
		r.buf = r.buf[:len(r.buf)+n]
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.eof = true
				break
			}
			return err
		}
		if n == 0 {
			r.eof = true
			break
		}
	}
	return nil
}

// ReadRune returns the next scalar value, the number of source bytes it
// occupied, and an error. At end of input it returns io.EOF.
func (r *Reader) ReadRune() (cp rune, size int, err error) {
	maxUnit := r.enc.UnitWidth() * 4
	if maxUnit < 4 {
		maxUnit = 4
	}
	if err := r.fill(maxUnit); err != nil {
		return 0, 0, err
	}
	avail := r.buf[r.start:]
	if len(avail) == 0 {
		return 0, 0, io.EOF
	}
	cp, n, cerr := ConvertOne(avail, r.enc)
	if cerr != nil {
		// Could be a genuine malformed sequence, or just a short read at
		// true EOF; ConvertOne already distinguishes those by length
		// checks against len(avail), and we've already filled as much as
		// is available, so a short-sequence error here is final.
		return 0, 0, cerr
	}
	r.start += n
	r.offset += int64(n)
	return cp, n, nil
}
