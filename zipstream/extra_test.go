package zipstream

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraFields(t *testing.T) {
	var raw []byte
	put16 := func(v uint16) { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); raw = append(raw, b...) }

	put16(0x0001)
	put16(4)
	raw = append(raw, 1, 2, 3, 4)

	put16(0x7075)
	put16(2)
	raw = append(raw, 9, 9)

	fields := parseExtraFields(raw)
	require.Len(t, fields, 2)
	assert.Equal(t, uint16(0x0001), fields[0].ID)
	assert.Equal(t, []byte{1, 2, 3, 4}, fields[0].Data)
	assert.Equal(t, uint16(0x7075), fields[1].ID)
}

func TestParseExtraFields_TruncatedTrailerDropped(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xFF, 0x00, 1, 2} // claims 255 bytes of payload but only 2 remain
	fields := parseExtraFields(raw)
	assert.Empty(t, fields)
}

func TestParseZIP64Extra(t *testing.T) {
	data := buildZIP64Extra(5_000_000_000, 4_999_999_999)
	// buildZIP64Extra includes the 4-byte id+size header; strip it like
	// findExtraField would.
	usize, csize, err := parseZIP64Extra(data[4:], true, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000), usize)
	assert.Equal(t, uint64(4_999_999_999), csize)
}

func TestParseZIP64Extra_OnlyCompressedSizeNeeded(t *testing.T) {
	data := buildZIP64Extra(0, 0)[4:]
	// When only csize is the sentinel, the record carries just the 8-byte
	// compressed size (no leading uncompressed size field).
	only := data[8:]
	usize, csize, err := parseZIP64Extra(only, false, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), usize)
	assert.Equal(t, uint64(0), csize)
}

func TestParseUnicodePathExtra(t *testing.T) {
	name := []byte("café.txt")
	raw := []byte{1}
	crcBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcBytes, crc32.ChecksumIEEE([]byte("raw-name")))
	raw = append(raw, crcBytes...)
	raw = append(raw, name...)

	up, ok := parseUnicodePathExtra(raw)
	require.True(t, ok)
	assert.Equal(t, byte(1), up.version)
	assert.Equal(t, "café.txt", up.nameUTF8)
}

func TestParseUnicodePathExtra_TooShort(t *testing.T) {
	_, ok := parseUnicodePathExtra([]byte{1, 2})
	assert.False(t, ok)
}
