package zipstream

import "io"

// pushbackReader wraps a raw io.Reader with the ability to return bytes
// that were already read from it, so the reader can recover from reading
// past an entry boundary without requiring the underlying source to seek.
//
// Unread bytes are served back out before any further bytes are pulled from
// the wrapped reader. There is no fixed capacity: callers are expected to
// unread at most a working-buffer's worth of bytes at a time, per §5 of the
// design this package follows, but pushbackReader itself will accept any
// amount.
type pushbackReader struct {
	r       io.Reader
	pending []byte
}

func newPushbackReader(r io.Reader) *pushbackReader {
	return &pushbackReader{r: r}
}

func (p *pushbackReader) Read(b []byte) (n int, err error) {
	if len(p.pending) > 0 {
		n = copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}

	return p.r.Read(b)
}

// unread pushes data back so that the next Read calls return it before any
// fresh bytes from the wrapped reader. data is copied; the caller's backing
// array may be reused immediately after this call returns.
func (p *pushbackReader) unread(data []byte) {
	if len(data) == 0 {
		return
	}

	buf := make([]byte, len(data)+len(p.pending))
	n := copy(buf, data)
	copy(buf[n:], p.pending)
	p.pending = buf
}

// close releases the pushback buffer and closes the wrapped reader if it
// implements io.Closer.
func (p *pushbackReader) close() error {
	p.pending = nil

	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
