package render

import (
	"encoding/binary"
	"math"
)

// Reader renders whole blocks on demand and hands them out as interleaved
// little-endian float32 bytes, however the caller slices its reads. It's meant
// to be pulled by an audio output running on its own goroutine.
type Reader struct {
	program Program
	c       *Context
	pending []byte
	off     int
}

// NewReader returns a Reader rendering p into c. p must already be set up.
func NewReader(p Program, c *Context) *Reader {
	pending := make([]byte, len(c.AudioOut)*4)

	return &Reader{
		program: p,
		c:       c,
		pending: pending,
		off:     len(pending),
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.off == len(r.pending) {
			r.program.Render(r.c)
			for i, v := range r.c.AudioOut {
				binary.LittleEndian.PutUint32(r.pending[i*4:], math.Float32bits(v))
			}
			r.off = 0
		}

		m := copy(p[n:], r.pending[r.off:])
		n += m
		r.off += m
	}

	return n, nil
}
