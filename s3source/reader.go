// Package s3source adapts an S3 object into the forward-only io.Reader that
// zipstream.Reader expects, fetching the object in windowed ranged GetObject
// calls rather than requiring the whole body up front.
package s3source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Reader is a sequential, forward-only view of an S3 object's bytes.
//
// Unlike the teacher's original ReaderAt-capable variant, this Reader
// deliberately does not implement io.ReaderAt: zipstream.Reader never seeks,
// so there is nothing in this repository that would ever call ReadAt, and
// exposing it would invite random access into exactly the component this
// module argues shouldn't need it.
type Reader interface {
	io.Reader
}

// ReaderClient abstracts the API that is needed to implement Reader.
type ReaderClient interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options customises NewReader.
type Options struct {
	// CtxFn returns a context.Context to be used with every GetObject call.
	//
	// By default, context.Background is used.
	CtxFn func() context.Context

	// ModifyGetObjectInput can be used to modify the GetObject input parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the GetObject call.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput
}

// NewReader returns a Reader streaming the given bucket and key from the
// first byte onward.
func NewReader(client ReaderClient, bucket, key string, optFns ...func(*Options)) Reader {
	opts := &Options{
		CtxFn: context.Background,
		ModifyGetObjectInput: func(input *s3.GetObjectInput) *s3.GetObjectInput {
			return input
		},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return &reader{
		client:               client,
		bucket:               bucket,
		key:                  key,
		ctxFn:                opts.CtxFn,
		modifyGetObjectInput: opts.ModifyGetObjectInput,
	}
}

// bufferSize is the minimum window fetched per GetObject call, so small
// reads (zipstream's header reads are a handful of bytes at a time) don't
// turn into a GetObject round trip each.
const bufferSize = 64 * 1024

type reader struct {
	client               ReaderClient
	bucket, key          string
	ctxFn                func() context.Context
	modifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput
	off                  int64
	buf                  bytes.Buffer
}

func (o *reader) Read(p []byte) (n int, err error) {
	m := len(p)
	if m == 0 {
		return 0, nil
	}

	if o.buf.Len() > 0 {
		n, _ = o.buf.Read(p)
		o.off += int64(n)
		return n, nil
	}

	rangeStart := o.off
	rangeEnd := o.off + max(int64(m), bufferSize) - 1
	out, err := o.client.GetObject(o.ctxFn(), o.modifyGetObjectInput(&s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", rangeStart, rangeEnd)),
	}))
	if err != nil {
		// a range starting past the object's last byte comes back as 416
		// Range Not Satisfiable: that's just end of stream, not a failure.
		var re *awshttp.ResponseError
		if errors.As(err, &re) && re.HTTPStatusCode() == 416 {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("get object range error: %w", err)
	}

	_, err = o.buf.ReadFrom(out.Body)
	_ = out.Body.Close()
	if err != nil {
		return 0, fmt.Errorf("read object range error: %w", err)
	}

	if o.buf.Len() == 0 {
		return 0, io.EOF
	}

	n, _ = o.buf.Read(p)
	o.off += int64(n)
	return n, nil
}
