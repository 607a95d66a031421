package archive

import (
	"errors"
	"fmt"
)

// Method is the compression method of one container entry.
type Method uint16

const (
	// Store writes entry data verbatim.
	Store Method = 0
	// Deflate compresses entry data.
	Deflate Method = 8
)

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// DefaultLevel lets the compressor pick its own level.
const DefaultLevel = -1

var (
	// ErrPasswordRequired is returned when an encrypted entry is opened
	// without a password.
	ErrPasswordRequired = errors.New("archive is encrypted, a password is required")

	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong password")

	// ErrCorrupt is returned when entry data fails its integrity check.
	ErrCorrupt = errors.New("archive data is corrupt")

	// ErrNotSingleEntry is returned when a part does not hold exactly one entry.
	ErrNotSingleEntry = errors.New("part must contain exactly one entry")

	// ErrDirectoryEntry is returned when a part's only entry is a directory.
	ErrDirectoryEntry = errors.New("part entry is a directory")

	// ErrUnsafePath is returned when an entry would extract outside the
	// destination directory.
	ErrUnsafePath = errors.New("entry path escapes the destination")

	// ErrNotContainer is returned when a file is not a zip container.
	ErrNotContainer = errors.New("not a zip container")
)
