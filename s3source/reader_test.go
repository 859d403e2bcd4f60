package s3source

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	stdhttp "net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
)

// testReaderClient implements ReaderClient by slicing into its in-memory
// data, the same way the teacher's s3reader tests stub GetObject.
type testReaderClient struct {
	data []byte

	mu    sync.Mutex
	calls []s3.GetObjectInput
}

func randomTestReaderClient(n int) *testReaderClient {
	data := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		panic(err)
	}

	return &testReaderClient{data: data}
}

func (c *testReaderClient) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *testReaderClient) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.mu.Lock()
	c.calls = append(c.calls, *input)
	c.mu.Unlock()

	rangeHeader := aws.ToString(input.Range)
	values := strings.SplitN(strings.TrimPrefix(rangeHeader, "bytes="), "-", 2)
	if len(values) != 2 {
		return nil, fmt.Errorf("invalid range: %s", rangeHeader)
	}

	start, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start byte in range `%s`: %w", rangeHeader, err)
	}
	if start >= int64(len(c.data)) {
		return nil, &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &stdhttp.Response{StatusCode: 416}},
			},
		}
	}

	end, err := strconv.ParseInt(values[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end byte in range `%s`: %w", rangeHeader, err)
	}
	if end >= int64(len(c.data)) {
		end = int64(len(c.data)) - 1
	}

	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(c.data[start : end+1])),
	}, nil
}

func TestReader_Read(t *testing.T) {
	tc := randomTestReaderClient(1024)
	r := NewReader(tc, "bucket", "key")

	buf := make([]byte, 100)
	n, err := r.Read(buf)
	assert.NoErrorf(t, err, "Read(buf) error = %v", err)
	assert.Equalf(t, 100, n, "Read(buf) returned %d bytes; expected 100", n)
	assert.Equal(t, tc.data[:100], buf)

	n, err = r.Read(buf)
	assert.NoErrorf(t, err, "Read(buf) error = %v", err)
	assert.Equal(t, tc.data[100:200], buf[:n])
}

func TestReader_ReadToEOF(t *testing.T) {
	tc := randomTestReaderClient(128)
	r := NewReader(tc, "bucket", "key")

	got, err := io.ReadAll(r)
	assert.NoErrorf(t, err, "ReadAll error = %v", err)
	assert.Equal(t, tc.data, got)
}

func TestReader_RangeNotSatisfiableIsEOF(t *testing.T) {
	tc := randomTestReaderClient(16)
	r := NewReader(tc, "bucket", "key")

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	assert.NoErrorf(t, err, "Read(buf) error = %v", err)
	assert.Equal(t, 16, n)

	tc.clear()
	n, err = r.Read(buf)
	assert.Equalf(t, io.EOF, err, "Read(buf) past end of object should be io.EOF; got %v", err)
	assert.Equal(t, 0, n)
}

func TestReader_ModifyGetObjectInput(t *testing.T) {
	tc := randomTestReaderClient(32)
	var seen *s3.GetObjectInput
	r := NewReader(tc, "bucket", "key", func(o *Options) {
		o.ModifyGetObjectInput = func(in *s3.GetObjectInput) *s3.GetObjectInput {
			in.ExpectedBucketOwner = aws.String("111122223333")
			seen = in
			return in
		}
	})

	buf := make([]byte, 8)
	_, err := r.Read(buf)
	assert.NoErrorf(t, err, "Read(buf) error = %v", err)
	assert.NotNil(t, seen)
	assert.Equal(t, "111122223333", aws.ToString(seen.ExpectedBucketOwner))
}
