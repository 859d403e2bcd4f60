package zipstream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateEngine adapts github.com/klauspost/compress/flate to the opaque
// decompressor contract this package's body-read path is written against:
// feed it compressed bytes, pull uncompressed bytes out, and learn exactly
// how much compressed input it actually consumed once the stream ends.
//
// klauspost/compress/flate is used instead of the standard library's
// compress/flate for the same reason github.com/zhyee/zipstream prefers it:
// it never reads past the end of a raw DEFLATE stream, which this package
// depends on to recover the overshoot bytes precisely.
//
// The adapter hands flate.NewReader a *bufio.Reader it owns exclusively
// (rather than the pushback source directly). flate.NewReader only wraps
// its argument in an internal bufio.Reader when the argument does not
// already implement io.ByteReader; by always supplying one ourselves, the
// bufio.Reader's Buffered()/Peek() after the stream ends tell us exactly
// which bytes flate pulled from the source but never consumed — the
// overshoot the entry state machine must push back.
type deflateEngine struct {
	br       *bufio.Reader
	fr       io.ReadCloser
	finished bool
}

const deflateBufferSize = 4096

func newDeflateEngine() *deflateEngine {
	br := bufio.NewReaderSize(bytes.NewReader(nil), deflateBufferSize)
	return &deflateEngine{
		br: br,
		fr: flate.NewReader(br),
	}
}

// reset prepares the engine to decode a new entry's DEFLATE stream, reading
// compressed bytes from source.
func (d *deflateEngine) reset(source io.Reader) error {
	d.finished = false
	d.br.Reset(source)

	resetter, ok := d.fr.(flate.Resetter)
	if !ok {
		// klauspost/compress/flate.NewReader always returns a Resetter; this
		// branch only guards against a future library change.
		d.fr = flate.NewReader(d.br)
		return nil
	}

	return resetter.Reset(d.br, nil)
}

// read pulls up to len(p) uncompressed bytes. It reports finished=true once
// the DEFLATE stream's final block has been consumed; a truncated stream
// (source ran out mid-block) is reported as err, distinct from a clean
// finish.
func (d *deflateEngine) read(p []byte) (n int, finished bool, err error) {
	n, err = d.fr.Read(p)
	switch err {
	case nil:
		return n, false, nil
	case io.EOF:
		d.finished = true
		return n, true, nil
	default:
		return n, false, err
	}
}
