package util

import (
	"context"
	"fmt"
	"io"
)

// CopyBufferWithContext is a custom implementation of io.CopyBuffer that is
// cancellable via context.
//
// Similar to io.CopyBuffer, if buf is nil a new 32 KiB buffer is created.
// Unlike io.CopyBuffer, it ignores io.WriterTo/io.ReaderFrom on src/dst
// because those interfaces don't support a context.
//
// The context is checked for done status after every write. A small buffer
// means more frequent checks at the cost of overhead; a large buffer delays
// how quickly cancellation takes effect.
func CopyBufferWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (written int64, err error) {
	if buf == nil {
		buf = make([]byte, 32*1024)
	}

	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			switch {
			case werr != nil:
				return written, werr
			case nr != nw:
				return written, fmt.Errorf("invalid write: expected to write %d bytes, wrote %d bytes instead", nr, nw)
			}

			select {
			case <-ctx.Done():
				return written, ctx.Err()
			default:
			}
		}

		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
