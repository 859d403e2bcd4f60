package zipstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushbackReader_UnreadServedBeforeSource(t *testing.T) {
	pb := newPushbackReader(bytes.NewReader([]byte("world")))

	pb.unread([]byte("hello "))

	got, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestPushbackReader_MultipleUnreadsPreserveOrder(t *testing.T) {
	pb := newPushbackReader(bytes.NewReader([]byte("C")))

	pb.unread([]byte("B"))
	pb.unread([]byte("A"))

	got, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(got))
}

func TestPushbackReader_UnreadEmptyIsNoop(t *testing.T) {
	pb := newPushbackReader(bytes.NewReader([]byte("x")))
	pb.unread(nil)

	got, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestPushbackReader_PartialReadFromPendingThenSource(t *testing.T) {
	pb := newPushbackReader(bytes.NewReader([]byte("67")))
	pb.unread([]byte("12345"))

	buf := make([]byte, 3)
	n, err := pb.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "123", string(buf))

	rest, err := io.ReadAll(pb)
	require.NoError(t, err)
	assert.Equal(t, "4567", string(rest))
}
