package model

import (
	"fmt"
	"os"
)

// SplitRequest describes one split operation.
//
// Exactly one of Size and Count is meaningful, selected by Unit:
//
//	req := model.SplitRequest{
//	    InputPath: "/data/backup.tar",
//	    OutputDir: "/data/out",
//	    Unit:      model.SplitBySize,
//	    Size:      100 << 20,
//	    Strategy:  model.ZipThenSplit,
//	}
type SplitRequest struct {
	// InputPath is the file or directory to split.
	InputPath string

	// OutputDir receives the "<base>.parts" directory. Created if missing.
	OutputDir string

	// Unit selects between Size and Count.
	Unit SplitUnit

	// Size is the maximum size in bytes of each part (SplitBySize).
	Size uint64

	// Count is the number of parts to produce (SplitByCount).
	Count uint64

	// Strategy is the packaging strategy.
	Strategy Strategy

	// Password enables AES-256 entry encryption. Empty means no password.
	Password string

	// DirMode orders the compression passes for directory inputs under
	// SplitThenZip. Ignored otherwise.
	DirMode DirSplitMode

	// Overwrite replaces a non-empty parts directory left by an earlier run.
	Overwrite bool

	// CompressionLevel is a deflate level hint (-1..9). Nil keeps the
	// codec default. Only applies to deflated entries.
	CompressionLevel *int
}

// Value returns the size or count, whichever Unit selects.
func (r SplitRequest) Value() uint64 {
	if r.Unit == SplitByCount {
		return r.Count
	}
	return r.Size
}

// Validate checks the request without touching the output side. The
// input path must exist.
func (r SplitRequest) Validate() error {
	if r.InputPath == "" {
		return ErrMissingInput
	}
	if r.OutputDir == "" {
		return ErrMissingOutput
	}
	if _, err := os.Stat(r.InputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, r.InputPath)
		}
		return err
	}

	switch r.Unit {
	case SplitBySize:
		if r.Size == 0 {
			return ErrZeroSize
		}
	case SplitByCount:
		if r.Count == 0 {
			return ErrZeroCount
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSplitUnit, r.Unit)
	}

	switch r.Strategy {
	case SplitThenZip, ZipThenSplit:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, r.Strategy)
	}

	switch r.DirMode {
	case DirModeDefault, DirModeCompressSplitStore, DirModeStoreSplitCompress:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDirMode, r.DirMode)
	}

	if r.CompressionLevel != nil && (*r.CompressionLevel < -1 || *r.CompressionLevel > 9) {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, *r.CompressionLevel)
	}

	return nil
}

// RestoreRequest describes one restore operation.
type RestoreRequest struct {
	// InputPath is either one part file or a directory holding one part group.
	InputPath string

	// OutputDir receives the merged file and the extracted directory.
	OutputDir string

	// Strategy must match the strategy used at split time.
	Strategy Strategy

	// Password decrypts encrypted entries. Empty means no password.
	Password string

	// AutoExtract unpacks the merged file when it is itself a container.
	AutoExtract bool
}

// Validate checks the request. The input path must exist.
func (r RestoreRequest) Validate() error {
	if r.InputPath == "" {
		return ErrMissingInput
	}
	if r.OutputDir == "" {
		return ErrMissingOutput
	}
	if _, err := os.Stat(r.InputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, r.InputPath)
		}
		return err
	}

	switch r.Strategy {
	case SplitThenZip, ZipThenSplit:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, r.Strategy)
	}

	return nil
}
