// Package zipstream implements a forward-only, non-seeking reader for the ZIP
// archive format.
//
// Unlike archive/zip, which requires an io.ReaderAt to locate and parse the
// central directory at the end of the file, this package never seeks. It
// walks local file headers one at a time, streaming entry bodies as they are
// found. This makes it suitable for reading a ZIP as it arrives over the
// network (an S3 GetObject response body, a pipe, a non-seekable socket)
// without buffering the whole archive first.
//
// The trade-off for not reading the central directory is that some metadata
// central-directory-only readers rely on (external file attributes, exact
// per-entry offsets) isn't available; see Entry for what is and isn't
// populated in streaming mode.
package zipstream

import "encoding/binary"

// Signatures for the record types this package recognizes.
const (
	sigLocalFile  = 0x04034b50 // LFH_SIG
	sigCentralDir = 0x02014b50 // CFH_SIG
	sigEndOfDir   = 0x06054b50 // EOCD_SIG
	sigDataDesc   = 0x08074b50 // DD_SIG
)

// zip64Magic is the sentinel value stored in a 32-bit LFH size field when the
// real value lives in the ZIP64 extra record instead.
const zip64Magic = 0xffffffff

// zip64MinVersion is the "version needed to extract" threshold at or above
// which the entry is understood to use the ZIP64 extension.
const zip64MinVersion = 45

// Compression methods this reader can produce bytes for. Other method codes
// are recognized in the header but CanReadEntryData reports false for them.
const (
	Store   = 0
	Deflate = 8
)

// General-purpose bit flag bits relevant to streaming.
const (
	flagDataDescriptor = 1 << 3
	flagUTF8           = 1 << 11
	flagEncrypted      = 1 << 0
)

// Extra field header IDs this package understands.
const (
	extraZIP64       = 0x0001
	extraUnicodePath = 0x7075
)

// fileHeaderLen is the length in bytes of the fixed portion of a Local File
// Header, signature included.
const fileHeaderLen = 30

// readBuf is a little-endian cursor over a byte slice, advancing as each
// field is consumed. Grounded on the identical helper used throughout the
// standard library's own archive/zip implementation and its derivatives.
type readBuf []byte

func (b *readBuf) uint8() uint8 {
	v := (*b)[0]
	*b = (*b)[1:]
	return v
}

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) uint64() uint64 {
	v := binary.LittleEndian.Uint64(*b)
	*b = (*b)[8:]
	return v
}

func (b *readBuf) sub(n int) readBuf {
	b2 := (*b)[:n]
	*b = (*b)[n:]
	return b2
}

func (b *readBuf) skip(n int) *readBuf {
	*b = (*b)[n:]
	return b
}

// Matches reports whether sig is the start of a Local File Header or an End
// Of Central Directory record, the two signatures a caller might probe for
// before deciding whether a stream even contains a ZIP archive. sig must
// have at least 4 bytes; shorter slices always return false.
func Matches(sig []byte) bool {
	if len(sig) < 4 {
		return false
	}
	v := binary.LittleEndian.Uint32(sig[:4])
	return v == sigLocalFile || v == sigEndOfDir
}
