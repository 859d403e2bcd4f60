package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nguyengg/zcat/zipstream"
)

// ListCommand streams only the headers of a zip archive. An entry whose
// compressed size is in its header has its body skipped via the reader's
// fast path rather than decompressed; a DEFLATE entry with a data
// descriptor is inflated and discarded to find where it ends. The reader is
// opened without the scavenger, so a STORED entry with a data descriptor
// ends the listing with an UnsupportedFeatureError.
type ListCommand struct {
	Args struct {
		Archive string `positional-arg-name:"archive" description:"path to a local zip file, or an s3://bucket/key URI" required:"yes"`
	} `positional-args:"yes"`
}

func (c *ListCommand) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	src, closer, err := openArchiveSource(ctx, c.Args.Archive)
	if err != nil {
		return err
	}
	defer closer.Close()

	zr := zipstream.NewReader(src)
	defer zr.Close()

	fmt.Printf("%-10s  %10s  %10s  %-19s  %s\n", "mode", "compressed", "uncompressed", "modified", "name")

	// Next always finalizes the previously current entry (reading its data
	// descriptor, if any) before parsing the next header, so the
	// entry returned by one call is only safe to print once the following
	// call has returned: that's when its sizes and CRC are final.
	var pending *zipstream.Entry
	for {
		e, nerr := zr.Next()
		if pending != nil {
			printEntry(pending)
		}
		if nerr == io.EOF {
			return nil
		}
		if nerr != nil {
			return fmt.Errorf("list archive error: %w", nerr)
		}
		pending = e
	}
}

func printEntry(e *zipstream.Entry) {
	mode := "----------"
	if e.IsDir() {
		mode = "d---------"
	}

	fmt.Printf("%-10s  %10s  %10s  %-19s  %s\n",
		mode,
		humanize.IBytes(e.CompressedSize),
		humanize.IBytes(e.UncompressedSize),
		e.Modified.Format("2006-01-02 15:04:05"),
		e.Name)
}
