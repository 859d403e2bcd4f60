package internal

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// Progress reports bytes flowing through an extract or list operation. It is
// an io.Writer so it composes with io.MultiWriter/io.Copy: hand it an
// io.Writer sink alongside the real destination.
//
// Unlike the teacher's download-side progressLogger, Progress has no Seek:
// a streaming extraction never rewinds, so there is nothing to rewind here.
type Progress interface {
	Write(p []byte) (n int, err error)
	Close() error
}

// NewLogProgress periodically logs cumulative bytes processed, every
// interval, using logger. size may be 0 if the total is unknown (e.g. an
// S3 object read before its Content-Length is known); in that case only the
// running total is printed.
func NewLogProgress(logger *log.Logger, interval time.Duration, size int64) Progress {
	return &logProgress{logger: logger, rate: &rate.Sometimes{Interval: interval}, size: size}
}

// NewBarProgress returns a Progress backed by a schollz/progressbar bar.
// When size is 0 the bar renders as a spinner instead of a percentage.
func NewBarProgress(size int64, opts ...progressbar.Option) Progress {
	return &barProgress{size: size, opts: opts}
}

type logProgress struct {
	logger     *log.Logger
	rate       *rate.Sometimes
	offset, size int64
}

var _ Progress = (*logProgress)(nil)

func (l *logProgress) Write(p []byte) (int, error) {
	n := len(p)
	l.offset += int64(n)

	l.rate.Do(func() {
		if l.size > 0 {
			l.logger.Printf("processed %s / %s so far", humanize.IBytes(uint64(l.offset)), humanize.IBytes(uint64(l.size)))
		} else {
			l.logger.Printf("processed %s so far", humanize.IBytes(uint64(l.offset)))
		}
	})

	return n, nil
}

func (l *logProgress) Close() error {
	if l.size > 0 {
		l.logger.Printf("processed %s / %s in total", humanize.IBytes(uint64(l.offset)), humanize.IBytes(uint64(l.size)))
	} else {
		l.logger.Printf("processed %s in total", humanize.IBytes(uint64(l.offset)))
	}
	return nil
}

type barProgress struct {
	bar    *progressbar.ProgressBar
	opts   []progressbar.Option
	offset int64
	size   int64
}

var _ Progress = (*barProgress)(nil)

func (b *barProgress) Write(p []byte) (int, error) {
	if b.bar == nil {
		size := b.size
		if size <= 0 {
			size = -1
		}

		b.bar = progressbar.NewOptions64(size, append([]progressbar.Option{
			progressbar.OptionSetDescription("extracting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowTotalBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		}, b.opts...)...)
	}

	n := len(p)
	b.offset += int64(n)
	_, _ = b.bar.Write(p)
	return n, nil
}

func (b *barProgress) Close() error {
	if b.bar != nil {
		return b.bar.Close()
	}
	return nil
}
