package zipstream

import (
	"bytes"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScavengeStored_FindsExplicitDataDescriptor(t *testing.T) {
	payload := []byte("xyz123")
	crc := crc32.ChecksumIEEE(payload)

	var stream bytes.Buffer
	stream.Write(payload)
	stream.Write(buildDD(true, crc, uint32(len(payload)), uint32(len(payload))))
	stream.Write(buildEOCD())

	pb := newPushbackReader(&stream)
	buf := make([]byte, 16)

	got, gotCRC, csize, usize, err := scavengeStored(pb, false, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, crc, gotCRC)
	assert.Equal(t, uint64(len(payload)), csize)
	assert.Equal(t, uint64(len(payload)), usize)

	rest, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, buildEOCD(), rest)
}

func TestScavengeStored_FindsUnmarkedDescriptorBeforeNextHeader(t *testing.T) {
	payload := []byte("payload-before-next-entry")
	crc := crc32.ChecksumIEEE(payload)

	var stream bytes.Buffer
	stream.Write(payload)
	stream.Write(buildDD(false, crc, uint32(len(payload)), uint32(len(payload))))
	nextHeader := buildLFH(lfhSpec{name: "next", method: Store})
	stream.Write(nextHeader)

	pb := newPushbackReader(&stream)
	buf := make([]byte, 16)

	got, gotCRC, _, _, err := scavengeStored(pb, false, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, crc, gotCRC)

	rest, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, nextHeader, rest)
}

func TestScavengeStored_SpansMultipleRefills(t *testing.T) {
	payload := bytes.Repeat([]byte("ab"), 20) // 40 bytes, bigger than the tiny scan window below
	crc := crc32.ChecksumIEEE(payload)

	var stream bytes.Buffer
	stream.Write(payload)
	stream.Write(buildDD(true, crc, uint32(len(payload)), uint32(len(payload))))
	stream.Write(buildEOCD())

	pb := newPushbackReader(&stream)
	buf := make([]byte, 8) // forces several refills before a signature is seen

	got, gotCRC, _, _, err := scavengeStored(pb, false, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, crc, gotCRC)
}

func TestScavengeStored_TruncatedBeforeDescriptor(t *testing.T) {
	pb := newPushbackReader(bytes.NewReader([]byte("no descriptor here")))
	buf := make([]byte, 8)

	_, _, _, _, err := scavengeStored(pb, false, buf)
	require.Error(t, err)
	var te *TruncatedArchiveError
	assert.ErrorAs(t, err, &te)
}

func TestFindSignature(t *testing.T) {
	// findSignature deliberately stops 5 bytes short of the buffer's end
	// (matching the scavenger's own scan bound), so the match needs a
	// trailing pad byte to fall inside the scanned window.
	buf := append([]byte{0xAA, 0xBB}, le32(sigLocalFile)...)
	buf = append(buf, 0x00)
	pos, isDD, matched := findSignature(buf)
	assert.True(t, matched)
	assert.False(t, isDD)
	assert.Equal(t, 2, pos)

	_, _, matched = findSignature([]byte{0x50, 0x4b, 0, 0})
	assert.False(t, matched)
}
