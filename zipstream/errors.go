package zipstream

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any operation attempted on a Reader after Close.
var ErrClosed = errors.New("zipstream: reader closed")

// ErrInvalidArgument is returned by Skip for a negative count.
var ErrInvalidArgument = errors.New("zipstream: invalid argument")

// TruncatedArchiveError reports that the underlying source ran out of bytes
// in the middle of a record the reader was still parsing or scanning.
type TruncatedArchiveError struct {
	// Op names the operation in progress, e.g. "local file header", "data
	// descriptor", "scavenger scan".
	Op  string
	Err error
}

func (e *TruncatedArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zipstream: truncated archive reading %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("zipstream: truncated archive reading %s", e.Op)
}

func (e *TruncatedArchiveError) Unwrap() error {
	return e.Err
}

// MalformedArchiveError reports a record whose bytes violate the format,
// such as a declared ZIP64 size with no corresponding extra record, or a
// corrupt DEFLATE stream.
type MalformedArchiveError struct {
	Op  string
	Err error
}

func (e *MalformedArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zipstream: malformed archive in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("zipstream: malformed archive in %s", e.Op)
}

func (e *MalformedArchiveError) Unwrap() error {
	return e.Err
}

// UnsupportedFeatureError reports an entry the reader recognizes but
// declines to produce bytes for: encryption, a compression method other
// than Store or Deflate, or a STORED entry with a deferred data descriptor
// when the scavenger is not enabled.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("zipstream: unsupported feature: %s", e.Feature)
}

func truncatedf(op string, err error) error {
	return &TruncatedArchiveError{Op: op, Err: err}
}

func malformedf(op string, err error) error {
	return &MalformedArchiveError{Op: op, Err: err}
}
