package zipstream

import (
	"strings"
	"time"
)

// Entry describes one archive member as parsed from its Local File Header.
// Reader.Next returns a pointer to the reader's current entry. For an entry
// with a data descriptor, the reader writes the descriptor's CRC32,
// CompressedSize and UncompressedSize into this same Entry when it closes
// it (on the following call to Next); apart from that, its fields do not
// change after Next returns it.
//
// Some fields that only a central-directory reader can populate (exact
// platform, POSIX mode bits) are deliberately left zero-valued here; see
// Platform.
type Entry struct {
	// Name is the entry's file name, decoded as UTF-8 when the
	// general-purpose UTF-8 bit is set, overridden by an Info-ZIP Unicode
	// Path extra record when configured to do so, or else decoded with the
	// reader's fallback encoding.
	Name string

	// RawName is the undecoded file name bytes as they appeared in the
	// Local File Header, retained so a Unicode-extra override can be
	// verified against its recorded CRC-32.
	RawName []byte

	// Method is the compression method code: Store (0), Deflate (8), or
	// another registered method this reader cannot produce bytes for.
	Method uint16

	// CRC32 is the expected CRC-32 of the uncompressed data. When the entry
	// uses a data descriptor, this is populated only once the descriptor
	// (or the scavenger, for STORED entries) has been read.
	CRC32 uint32

	// CompressedSize and UncompressedSize are 64-bit even for non-ZIP64
	// entries. Like CRC32, they read as zero for an entry with a data
	// descriptor until that descriptor has been consumed.
	CompressedSize   uint64
	UncompressedSize uint64

	// Modified is the Local File Header's MS-DOS date/time, converted to
	// UTC. MS-DOS timestamps have no timezone of their own, so this is the
	// same convention archive/zip uses.
	Modified time.Time

	// Platform is the upper nibble of "version made by". The Local File
	// Header doesn't carry "version made by" at all (that's a
	// central-directory-only field); a streaming reader has no way to
	// learn it, so Platform is always zero here. HasPlatform is always
	// false; it exists so callers don't mistake the zero value for "host
	// system: MS-DOS".
	Platform    byte
	HasPlatform bool

	// Flags is the raw general-purpose bit flag word.
	Flags uint16

	// Extra holds every extra-field record parsed from the header, in the
	// order they appeared.
	Extra []ExtraField

	hasDataDescriptor bool
	usesZIP64         bool
}

// UsesUTF8 reports whether the name and comment were declared UTF-8 by the
// general-purpose flag word (bit 11).
func (e *Entry) UsesUTF8() bool { return e.Flags&flagUTF8 != 0 }

// Encrypted reports whether the general-purpose flag word's encryption bit
// (bit 0) is set. This reader cannot produce bytes for encrypted entries.
func (e *Entry) Encrypted() bool { return e.Flags&flagEncrypted != 0 }

// HasDataDescriptor reports whether the entry's CRC-32 and sizes are
// deferred to a trailing data descriptor rather than recorded in the Local
// File Header (general-purpose bit 3).
func (e *Entry) HasDataDescriptor() bool { return e.hasDataDescriptor }

// IsDir reports whether the entry name ends in "/", the ZIP convention for
// directory entries.
func (e *Entry) IsDir() bool { return strings.HasSuffix(e.Name, "/") }

// canReadEntryData reports whether the reader can produce body bytes for e.
// The method must be one this reader implements, the entry must not be
// encrypted, and a deferred-size STORED entry additionally requires that the
// scavenger be enabled (DEFLATE entries don't need it: end-of-stream is
// detected by the decompressor itself, not by a declared size).
func canReadEntryData(e *Entry, allowStoredWithDataDescriptor bool) bool {
	if e.Encrypted() {
		return false
	}

	switch e.Method {
	case Store:
		return !e.hasDataDescriptor || allowStoredWithDataDescriptor
	case Deflate:
		return true
	default:
		return false
	}
}

// msDosTimeToTime converts the packed MS-DOS date and time fields from a
// Local File Header into a UTC time.Time. MS-DOS timestamps carry no
// timezone; archive/zip makes the same assumption.
func msDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9)+1980,
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.UTC,
	)
}
