package zipstream

import (
	"fmt"
	"hash/crc32"
	"io"
)

// defaultBufferSize is the reader's working buffer size, used for the
// scavenger's scan window, raw byte skipping, Skip, and draining a DEFLATE
// body on close.
const defaultBufferSize = 32 * 1024

// Options configures a Reader. The zero value is usable: it assumes
// filenames without the UTF-8 bit are already valid strings, does not
// consult Unicode-path extra records, and rejects STORED entries with a
// deferred data descriptor rather than paying for the scavenger scan.
type Options struct {
	// Encoding decodes a raw file-name byte slice when the entry's
	// general-purpose UTF-8 bit is clear. If nil, the raw bytes are used
	// as-is (equivalent to treating them as already being valid text).
	Encoding func([]byte) (string, error)

	// UseUnicodeExtraFields enables overriding a non-UTF-8 name with an
	// Info-ZIP Unicode Path extra record, when that record's CRC-32 matches
	// the original name bytes.
	UseUnicodeExtraFields bool

	// AllowStoredEntriesWithDataDescriptor opts into the scavenger scan
	// (§4.5) required to read a STORED entry whose size was deferred to a
	// trailing data descriptor. Without it, such entries report
	// UnsupportedFeatureError and the reader cannot advance past them.
	AllowStoredEntriesWithDataDescriptor bool

	// BufferSize overrides the working buffer size. Defaults to 32 KiB.
	BufferSize int
}

// Reader streams entries out of a ZIP archive given only a forward-only
// io.Reader: no seeking, no reading the central directory, no requirement
// that the whole archive be buffered or even have a known length.
//
// A Reader is single-owner: exactly one Entry is current at a time, and
// starting the next implicitly closes the previous one. It is not safe for
// concurrent use.
type Reader struct {
	source *pushbackReader
	opts   Options
	buf    []byte

	deflate        *deflateEngine
	deflateStarted bool
	crc            uint32 // running crc32 accumulator, updated by Read

	current             *Entry
	closed              bool
	hitCentralDirectory bool

	entryBytesProduced uint64

	lastStoredCache []byte
	lastStoredOff   int
}

// NewReader returns a Reader that pulls compressed bytes from r.
func NewReader(r io.Reader, optFns ...func(*Options)) *Reader {
	opts := Options{BufferSize: defaultBufferSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}

	return &Reader{
		source:  newPushbackReader(r),
		opts:    opts,
		buf:     make([]byte, opts.BufferSize),
		deflate: newDeflateEngine(),
	}
}

// CanReadEntryData reports whether Read can produce body bytes for e: its
// method must be implemented (Store or Deflate), it must not be encrypted,
// and a STORED entry with a deferred data descriptor additionally requires
// AllowStoredEntriesWithDataDescriptor.
func (z *Reader) CanReadEntryData(e *Entry) bool {
	return canReadEntryData(e, z.opts.AllowStoredEntriesWithDataDescriptor)
}

var errMissingZIP64Extra = shortFieldError("local file header declares zip64 sizes but carries no zip64 extra record")

// Next closes the current entry, if any, and parses the next Local File
// Header from the stream. It returns io.EOF once the central directory (or
// anything else that isn't a Local File Header) is encountered; that is the
// normal, non-error way an archive ends.
func (z *Reader) Next() (*Entry, error) {
	if z.closed {
		return nil, ErrClosed
	}
	if z.hitCentralDirectory {
		return nil, io.EOF
	}

	if z.current != nil {
		if err := z.closeCurrentEntry(); err != nil {
			return nil, err
		}
	}

	// A short read that still yields a full 4-byte signature is not
	// necessarily truncation: an archive often ends with a record shorter
	// than the 30-byte fixed header (e.g. the 22-byte EOCD with no central
	// directory entries), and that's a benign end, not an error. Only a
	// genuine Local File Header match obligates us to have the rest.
	head := make([]byte, fileHeaderLen)
	n, err := io.ReadAtLeast(z.source, head, 4)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, io.EOF
	}
	if n < 4 {
		return nil, truncatedf("local file header", err)
	}

	buf := readBuf(head)
	switch sig := buf.uint32(); sig {
	case sigCentralDir:
		z.hitCentralDirectory = true
		return nil, io.EOF
	case sigLocalFile:
		if n < fileHeaderLen {
			if _, ferr := io.ReadFull(z.source, head[n:]); ferr != nil {
				return nil, truncatedf("local file header", ferr)
			}
		}
	default:
		z.hitCentralDirectory = true
		return nil, io.EOF
	}

	versionNeeded := buf.uint16()
	gpFlags := buf.uint16()
	method := buf.uint16()
	modTime := buf.uint16()
	modDate := buf.uint16()
	crc := buf.uint32()
	csize := uint64(buf.uint32())
	usize := uint64(buf.uint32())
	nameLen := int(buf.uint16())
	extraLen := int(buf.uint16())

	e := &Entry{
		Method:            method,
		Flags:             gpFlags,
		CRC32:             crc,
		CompressedSize:    csize,
		UncompressedSize:  usize,
		Modified:          msDosTimeToTime(modDate, modTime),
		hasDataDescriptor: gpFlags&flagDataDescriptor != 0,
		usesZIP64:         versionNeeded&0xff >= zip64MinVersion,
	}
	if e.hasDataDescriptor {
		// The header's CRC and size fields are ignored; the descriptor
		// supplies them.
		e.CRC32, e.CompressedSize, e.UncompressedSize = 0, 0, 0
	}

	nameBytes := make([]byte, nameLen)
	if _, err = io.ReadFull(z.source, nameBytes); err != nil {
		return nil, truncatedf("file name", err)
	}
	e.RawName = nameBytes

	extraBytes := make([]byte, extraLen)
	if _, err = io.ReadFull(z.source, extraBytes); err != nil {
		return nil, truncatedf("extra field", err)
	}
	e.Extra = parseExtraFields(extraBytes)

	if e.UsesUTF8() {
		e.Name = string(nameBytes)
	} else {
		e.Name = z.decodeName(nameBytes)

		if z.opts.UseUnicodeExtraFields {
			if data, ok := findExtraField(e.Extra, extraUnicodePath); ok {
				if up, ok2 := parseUnicodePathExtra(data); ok2 && up.nameCRC == crc32.ChecksumIEEE(nameBytes) {
					e.Name = up.nameUTF8
				}
			}
		}
	}

	if !e.hasDataDescriptor && e.usesZIP64 && (e.CompressedSize == zip64Magic || e.UncompressedSize == zip64Magic) {
		data, ok := findExtraField(e.Extra, extraZIP64)
		if !ok {
			return nil, malformedf("local file header", errMissingZIP64Extra)
		}

		u, c, zerr := parseZIP64Extra(data, e.UncompressedSize == zip64Magic, e.CompressedSize == zip64Magic)
		if zerr != nil {
			return nil, zerr
		}
		if e.UncompressedSize == zip64Magic {
			e.UncompressedSize = u
		}
		if e.CompressedSize == zip64Magic {
			e.CompressedSize = c
		}
	}

	z.current = e
	z.entryBytesProduced = 0
	z.deflateStarted = false
	z.lastStoredCache = nil
	z.lastStoredOff = 0
	z.crc = 0

	if e.Method == Store && e.hasDataDescriptor && z.opts.AllowStoredEntriesWithDataDescriptor {
		payload, dcrc, dcsize, dusize, serr := scavengeStored(z.source, e.usesZIP64, z.buf)
		if serr != nil {
			return nil, serr
		}
		e.CRC32 = dcrc
		e.CompressedSize = dcsize
		e.UncompressedSize = dusize
		z.lastStoredCache = payload
	}

	return e, nil
}

func (z *Reader) decodeName(b []byte) string {
	if z.opts.Encoding != nil {
		if s, err := z.opts.Encoding(b); err == nil {
			return s
		}
	}
	return string(b)
}

// Read produces the current entry's decompressed body. It returns io.EOF
// (with n possibly > 0 on the final call) once the entry is exhausted; call
// Next to advance.
func (z *Reader) Read(p []byte) (n int, err error) {
	if z.closed {
		return 0, ErrClosed
	}
	e := z.current
	if e == nil {
		return 0, io.EOF
	}
	if !z.CanReadEntryData(e) {
		return 0, &UnsupportedFeatureError{Feature: fmt.Sprintf("read method %d", e.Method)}
	}

	switch {
	case z.lastStoredCache != nil:
		if z.lastStoredOff >= len(z.lastStoredCache) {
			return 0, io.EOF
		}
		n = copy(p, z.lastStoredCache[z.lastStoredOff:])
		z.lastStoredOff += n

	case e.Method == Store:
		remaining := e.UncompressedSize - z.entryBytesProduced
		if remaining == 0 {
			return 0, io.EOF
		}

		want := int64(len(p))
		if want > int64(remaining) {
			want = int64(remaining)
		}
		if want == 0 {
			return 0, nil
		}

		n, err = z.source.Read(p[:want])
		if n == 0 {
			if err != nil && err != io.EOF {
				return 0, err
			}
			return 0, truncatedf("entry body (stored)", io.ErrUnexpectedEOF)
		}
		err = nil

	case e.Method == Deflate:
		if !z.deflateStarted {
			if err = z.deflate.reset(z.source); err != nil {
				return 0, malformedf("deflate reset", err)
			}
			z.deflateStarted = true
		}

		var finished bool
		n, finished, err = z.deflate.read(p)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				return n, truncatedf("entry body (deflate)", err)
			}
			return n, malformedf("entry body (deflate)", err)
		}
		if n == 0 {
			if finished {
				return 0, io.EOF
			}
			return 0, nil
		}
	}

	z.entryBytesProduced += uint64(n)
	z.crc = crc32.Update(z.crc, crc32.IEEETable, p[:n])
	return n, nil
}

// Skip discards up to n bytes of the current entry's body, implemented in
// terms of Read. It may return fewer than n bytes at end of entry.
func (z *Reader) Skip(n int64) (int64, error) {
	if z.closed {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, ErrInvalidArgument
	}

	var total int64
	for total < n {
		want := int64(len(z.buf))
		if remaining := n - total; want > remaining {
			want = remaining
		}

		r, err := z.Read(z.buf[:want])
		total += int64(r)
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if r == 0 {
			return total, nil
		}
	}
	return total, nil
}

// Close releases the underlying source. It is idempotent; any operation
// attempted after Close returns ErrClosed.
func (z *Reader) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	z.current = nil
	return z.source.close()
}

// closeCurrentEntry finalizes z.current and positions the source at the
// first byte after the entry (and its data descriptor, if any), per §4.6.
func (z *Reader) closeCurrentEntry() error {
	e := z.current
	if e == nil {
		return nil
	}

	err := z.positionAfterEntry(e)

	if err == nil && z.entryBytesProduced > 0 && z.entryBytesProduced == e.UncompressedSize && z.crc != e.CRC32 {
		err = malformedf("crc-32 mismatch", nil)
	}

	z.current = nil
	z.lastStoredCache = nil
	z.lastStoredOff = 0
	z.deflateStarted = false
	z.entryBytesProduced = 0
	z.crc = 0

	return err
}

func (z *Reader) positionAfterEntry(e *Entry) error {
	switch e.Method {
	case Store:
		if e.hasDataDescriptor {
			if !z.opts.AllowStoredEntriesWithDataDescriptor {
				return &UnsupportedFeatureError{Feature: "stored entry with deferred data descriptor"}
			}
			// Next already scavenged the payload and consumed the
			// descriptor; the source is positioned correctly whether or
			// not the caller drained lastStoredCache.
			return nil
		}

		remaining := e.CompressedSize - z.entryBytesProduced
		if remaining > 0 {
			return z.skipFromSource(remaining)
		}
		return nil

	case Deflate:
		if !z.deflateStarted {
			if !e.hasDataDescriptor {
				// Fast path: the compressed length is known and nothing
				// has touched the decompressor yet, so skip the raw bytes
				// directly.
				return z.skipFromSource(e.CompressedSize)
			}

			if err := z.deflate.reset(z.source); err != nil {
				return malformedf("deflate reset", err)
			}
			z.deflateStarted = true
		}

		if err := z.drainDeflate(); err != nil {
			return err
		}

		if overshoot := z.deflate.br.Buffered(); overshoot > 0 {
			peeked, _ := z.deflate.br.Peek(overshoot)
			unread := make([]byte, len(peeked))
			copy(unread, peeked)
			z.source.unread(unread)
		}

		if e.hasDataDescriptor {
			crc, csize, usize, err := readDataDescriptor(z.source, e.usesZIP64)
			if err != nil {
				return err
			}
			e.CRC32 = crc
			e.CompressedSize = csize
			e.UncompressedSize = usize
		}
		return nil

	default:
		if e.hasDataDescriptor {
			return &UnsupportedFeatureError{Feature: fmt.Sprintf("compression method %d with deferred data descriptor", e.Method)}
		}
		return z.skipFromSource(e.CompressedSize)
	}
}

func (z *Reader) drainDeflate() error {
	if z.deflate.finished {
		return nil
	}

	for {
		_, finished, err := z.deflate.read(z.buf)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				return truncatedf("entry body (deflate)", err)
			}
			return malformedf("entry body (deflate)", err)
		}
		if finished {
			return nil
		}
	}
}

func (z *Reader) skipFromSource(n uint64) error {
	for n > 0 {
		chunk := uint64(len(z.buf))
		if chunk > n {
			chunk = n
		}

		r, err := z.source.Read(z.buf[:chunk])
		if r <= 0 {
			if err != nil {
				return truncatedf("entry body (skip)", err)
			}
			return truncatedf("entry body (skip)", io.ErrUnexpectedEOF)
		}
		n -= uint64(r)
	}
	return nil
}
