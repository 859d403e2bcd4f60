package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nguyengg/zcat/internal"
	"github.com/nguyengg/zcat/util"
	"github.com/nguyengg/zcat/zipstream"
)

// ExtractCommand streams a zip archive's entries to a directory, creating
// parent directories as needed. Unlike z.Extract in the teacher, which reads
// the whole central directory up front and can therefore unwrap a common
// root directory perfectly, this streams entries one at a time: the root
// directory is detected incrementally (see internal.ZipRootDirFinder) and,
// once broken, stays broken for the remainder of the archive.
type ExtractCommand struct {
	Args struct {
		Archive   string `positional-arg-name:"archive" description:"path to a local zip file, or an s3://bucket/key URI" required:"yes"`
		Directory string `positional-arg-name:"dir" description:"destination directory, created if it doesn't exist" default:"."`
	} `positional-args:"yes"`

	NoUnwrapRoot                         bool `long:"no-unwrap-root" description:"keep the archive's common top-level directory in extracted paths"`
	NoProgress                           bool `long:"no-progress" description:"disable the progress bar"`
	AllowStoredEntriesWithDataDescriptor bool `long:"allow-stored-with-data-descriptor" description:"opt into the scavenger scan required to read STORED entries whose size is deferred to a trailing data descriptor"`
}

func (c *ExtractCommand) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	src, closer, err := openArchiveSource(ctx, c.Args.Archive)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(c.Args.Directory, 0755); err != nil {
		return fmt.Errorf("create destination directory error: %w", err)
	}

	zr := zipstream.NewReader(src, func(o *zipstream.Options) {
		o.AllowStoredEntriesWithDataDescriptor = c.AllowStoredEntriesWithDataDescriptor
	})

	var progress internal.Progress
	if c.NoProgress {
		progress = &util.WriteNoopCloser{Writer: io.Discard}
	} else {
		progress = internal.NewBarProgress(0)
	}

	// closer (the archive source), zr, and progress are all independent of
	// one another; chain them so a failure closing one doesn't skip the rest,
	// and the first error (closing the source itself) wins.
	defer util.ChainCloser(closer.Close, zr.Close, progress.Close)()

	var rootFinder *internal.ZipRootDirFinder
	if !c.NoUnwrapRoot {
		rootFinder = internal.NewZipRootDirFinder()
	}

	buf := make([]byte, 32*1024)
	sizer := &internal.Sizer{}
	count := 0

	for {
		e, nerr := zr.Next()
		if nerr == io.EOF {
			break
		}
		if nerr != nil {
			return fmt.Errorf("extract archive error: %w", nerr)
		}

		name := e.Name
		if rootFinder != nil {
			if root, ok := rootFinder.Next(name); ok {
				name = strings.TrimPrefix(name, string(root))
			}
		}
		if name == "" {
			continue
		}

		path := filepath.Join(c.Args.Directory, name)
		if rel, rerr := filepath.Rel(c.Args.Directory, path); rerr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("extract entry (name=%s) error: entry path escapes destination directory", e.Name)
		}

		if e.IsDir() {
			if err = os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("create directory (path=%s) error: %w", path, err)
			}
			continue
		}

		if !zr.CanReadEntryData(e) {
			// Unreadable (encrypted, unsupported method, or a STORED entry
			// with a deferred data descriptor and no scavenger allowance):
			// skip it. When its compressed size is in the header, the next
			// Next() call closes it via the fast path. A STORED entry or an
			// unsupported method with a deferred data descriptor cannot be
			// closed that way: the next Next() call returns an
			// UnsupportedFeatureError, which ends the extraction.
			continue
		}

		if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create parent directories (path=%s) error: %w", path, err)
		}

		dst, derr := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if derr != nil {
			return fmt.Errorf("create file (path=%s) error: %w", path, derr)
		}

		_, cerr := util.CopyBufferWithContext(ctx, io.MultiWriter(dst, sizer, progress), zr, buf)
		cerr = errors.Join(cerr, dst.Close())
		if cerr != nil {
			return fmt.Errorf("extract entry (name=%s) to file (path=%s) error: %w", e.Name, path, cerr)
		}

		count++
	}

	fmt.Printf("extracted %d entries (%s) to %s\n", count, humanize.IBytes(uint64(sizer.Size)), c.Args.Directory)
	return nil
}
