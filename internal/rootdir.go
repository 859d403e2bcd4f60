package internal

import (
	"path/filepath"
	"regexp"
	"strings"
)

var pathSepRe = regexp.MustCompile(`[\\/]`)

// RootDir is the common top-level directory shared by every entry streamed
// out of an archive so far, used to unwrap that directory during extraction.
type RootDir string

// Join trims the root prefix from path, then joins it onto base.
func (r RootDir) Join(base, path string) string {
	return filepath.Join(base, strings.TrimPrefix(path, string(r)))
}

// ZipRootDirFinder incrementally tracks the common top-level directory of a
// stream of entry names.
//
// Unlike a seekable zip reader, which can inspect every entry name before
// deciding whether to unwrap a root directory, a streaming extractor only
// ever sees one name at a time. ZipRootDirFinder is therefore fed names
// one by one as they arrive: it reports the root candidate seen so far and
// whether it's still valid. Once an entry breaks the common prefix, every
// subsequent call reports no root, and any entries already extracted under
// the (now revoked) candidate keep the prefix they were given — this is an
// incremental approximation, not a retroactive fix.
type ZipRootDirFinder struct {
	root   string
	broken bool
}

// NewZipRootDirFinder returns a finder with no candidate root yet.
func NewZipRootDirFinder() *ZipRootDirFinder {
	return &ZipRootDirFinder{}
}

// Next feeds the next entry name to the finder and returns the current root
// candidate and whether it's still valid.
func (f *ZipRootDirFinder) Next(name string) (root RootDir, ok bool) {
	if f.broken {
		return "", false
	}

	parts := pathSepRe.Split(name, 2)
	if len(parts) == 1 {
		// a file at the top level means there's no common root.
		f.broken = true
		return "", false
	}

	switch f.root {
	case parts[0]:
	case "":
		f.root = parts[0]
	default:
		f.broken = true
		return "", false
	}

	return RootDir(f.root), true
}
