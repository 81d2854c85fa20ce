// Package fingerprint computes a per-file fingerprint: the filesystem's
// modification time when available, falling back to a 64-bit MetroHash of
// the file's contents when it isn't.
package fingerprint

import (
	"os"
	"time"

	"github.com/dgryski/go-metro"
	"github.com/pkg/errors"
)

// Kind tags which variant of Fingerprint a value holds. ModifiedTime and
// ContentHash never compare equal even if their underlying bit patterns
// happened to coincide.
type Kind int

const (
	// ModifiedTimeKind holds an opaque filesystem modification time.
	ModifiedTimeKind Kind = iota
	// ContentHashKind holds a 64-bit MetroHash of the file's contents.
	ContentHashKind
)

// Fingerprint is a tagged value identifying the state of a file at a point
// in time.
type Fingerprint struct {
	Kind    Kind
	ModTime time.Time
	Hash    uint64
}

// Equal reports structural, variant-aware equality: differing Kinds are
// never equal.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case ModifiedTimeKind:
		return f.ModTime.Equal(other.ModTime)
	case ContentHashKind:
		return f.Hash == other.Hash
	default:
		return false
	}
}

// DirectoryError reports that Of was called on a directory; callers are
// expected never to do this directly (directory traversal happens in
// internal/depstracker).
type DirectoryError struct {
	Path string
}

func (e *DirectoryError) Error() string {
	return "path " + e.Path + " is a directory"
}

// PathError reports that stat or read I/O failed for path.
type PathError struct {
	Path  string
	Cause error
}

func (e *PathError) Error() string {
	return "failed to fingerprint " + e.Path + ": " + e.Cause.Error()
}

func (e *PathError) Unwrap() error { return e.Cause }

// Of computes the Fingerprint for an existing regular file at path. It
// returns *DirectoryError if path is a directory, and *PathError if stat or
// read I/O fails.
func Of(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, &PathError{Path: path, Cause: err}
	}
	if info.IsDir() {
		return Fingerprint{}, &DirectoryError{Path: path}
	}

	// mtime is cheap and adequate for nearly all filesystems; hashing is a
	// correctness fallback reserved for ones that don't report it.
	if modTime := info.ModTime(); !modTime.IsZero() {
		return Fingerprint{Kind: ModifiedTimeKind, ModTime: modTime}, nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Fingerprint{}, &PathError{Path: path, Cause: errors.Wrap(err, "read")}
	}
	return Fingerprint{Kind: ContentHashKind, Hash: metro.Hash64(bytes, 0)}, nil
}
