package archive

import (
	"io"
	"iter"
	"os"
)

// Archiver can read archives such as zip files, forward-only where the format
// allows it.
//
// All archiver implementations are not thread-safe by default.
type Archiver interface {
	// Open produces an iterator returning the files from the archive opened by the given io.Reader.
	//
	// The src io.Reader will be consumed by the end of the iterator.
	Open(src io.Reader) (iter.Seq2[File, error], error)

	// ArchiveExt returns the file name extension of archives this Archiver reads.
	ArchiveExt() string

	// ContentType returns the content type of archives this Archiver reads.
	ContentType() string
}

// File represents a file in an archive.
//
// The interface intentionally matches that of zip.File for simplicity.
type File interface {
	// Name returns the full name of the file in the archive.
	Name() string
	// FileInfo returns description about the file.
	FileInfo() os.FileInfo
	// Mode returns the file's mode.
	Mode() os.FileMode
	// Open opens the file for reading.
	Open() (io.ReadCloser, error)
}
