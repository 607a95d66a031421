package model

import "errors"

// Input validation errors. They are reported before any file is touched.
var (
	ErrInputNotFound    = errors.New("input path does not exist")
	ErrMissingInput     = errors.New("input path is required")
	ErrMissingOutput    = errors.New("output directory is required")
	ErrEmptyInput       = errors.New("input is 0 bytes and cannot be split")
	ErrZeroSize         = errors.New("part size must be greater than 0")
	ErrZeroCount        = errors.New("part count must be greater than 0")
	ErrUnknownSplitUnit = errors.New("unknown split unit")
	ErrUnknownStrategy  = errors.New("unknown packaging strategy")
	ErrUnknownDirMode   = errors.New("unknown directory split mode")
	ErrInvalidLevel     = errors.New("compression level must be between -1 and 9")
	ErrUnsatisfiableCap = errors.New("a strict per-part size cap on a directory requires the compress-split-store mode")
	ErrPartsPathNotDir  = errors.New("parts output path exists and is not a directory")
	ErrPartsDirNotEmpty = errors.New("parts output directory already exists and is not empty; enable overwrite to replace it")
	ErrUnnamedInput     = errors.New("cannot derive a base name from the input path")
	ErrUnnamedPartGroup = errors.New("cannot derive an output name from the part prefix")
)
