package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/nguyengg/zcat/zipstream"
)

// Zip implements Archiver for ZIP files.
//
// A *os.File source is opened with the stdlib archive/zip reader since its
// Size is known up front and random access is cheap; every other io.Reader
// (a network stream, an S3 object body, stdin) is opened with this module's
// own zipstream.Reader, which never seeks.
type Zip struct {
}

var _ Archiver = Zip{}

func (z Zip) Open(src io.Reader) (iter.Seq2[File, error], error) {
	if f, ok := src.(*os.File); ok {
		return fromZipFile(f)
	}

	return fromZipStream(src), nil
}

func (z Zip) ArchiveExt() string {
	return "zip"
}

func (z Zip) ContentType() string {
	return "application/zip"
}

// fromZipStream adapts a zipstream.Reader into the File iterator. The
// iterator never looks ahead: each yielded File's Open reads from the same
// underlying zipstream.Reader, so the caller must fully consume (or Skip)
// one File's body before asking the iterator for the next one.
func fromZipStream(src io.Reader) iter.Seq2[File, error] {
	zr := zipstream.NewReader(src)

	return func(yield func(File, error) bool) {
		for {
			e, err := zr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(&zipStreamFile{Entry: e, zr: zr}, nil) {
				return
			}
		}
	}
}

func fromZipFile(src *os.File) (iter.Seq2[File, error], error) {
	fi, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf(`stat file "%s" error: %w`, src.Name(), err)
	}

	zr, err := zip.NewReader(src, fi.Size())
	if err != nil {
		return nil, fmt.Errorf(`open zip file "%s" error: %w`, src.Name(), err)
	}

	return func(yield func(File, error) bool) {
		for _, zf := range zr.File {
			if !yield(&zipFile{FileHeader: &zf.FileHeader, open: zf.Open}, nil) {
				return
			}
		}
	}, nil
}

// zipFile wraps a stdlib archive/zip.File (the seekable, local-file path).
type zipFile struct {
	*zip.FileHeader
	open func() (io.ReadCloser, error)
}

var _ File = &zipFile{}

func (f *zipFile) Name() string {
	return f.FileHeader.Name
}

func (f *zipFile) Open() (io.ReadCloser, error) {
	return f.open()
}

// zipStreamFile wraps a zipstream.Entry (the forward-only, streamed path).
type zipStreamFile struct {
	*zipstream.Entry
	zr *zipstream.Reader
}

var _ File = &zipStreamFile{}

func (f *zipStreamFile) Name() string {
	return f.Entry.Name
}

func (f *zipStreamFile) FileInfo() os.FileInfo {
	return zipStreamFileInfo{f.Entry}
}

func (f *zipStreamFile) Mode() os.FileMode {
	return zipStreamFileInfo{f.Entry}.Mode()
}

// Open returns the current entry's body. Because the underlying
// zipstream.Reader only ever exposes one entry's body at a time, Open must
// be called (and its result fully drained or closed) before the archive
// iterator is advanced to the next entry.
func (f *zipStreamFile) Open() (io.ReadCloser, error) {
	if !f.zr.CanReadEntryData(f.Entry) {
		return nil, &zipstream.UnsupportedFeatureError{Feature: "entry " + f.Entry.Name}
	}
	return io.NopCloser(f.zr), nil
}

// zipStreamFileInfo adapts an Entry to os.FileInfo. The Local File Header
// never carries POSIX mode bits (those live only in the central directory,
// which a streaming reader never parses), so Mode reports a plain 0644/0755
// rather than guessing; callers that want to display this should render it
// as all dashes, the way cmd/zcat's list command does.
type zipStreamFileInfo struct {
	e *zipstream.Entry
}

func (i zipStreamFileInfo) Name() string       { return i.e.Name }
func (i zipStreamFileInfo) Size() int64        { return int64(i.e.UncompressedSize) }
func (i zipStreamFileInfo) ModTime() time.Time { return i.e.Modified }
func (i zipStreamFileInfo) IsDir() bool        { return i.e.IsDir() }
func (i zipStreamFileInfo) Sys() any           { return i.e }

func (i zipStreamFileInfo) Mode() os.FileMode {
	if i.e.IsDir() {
		return os.ModeDir | 0755
	}
	return 0644
}
