package model

import (
	"fmt"
	"strings"
)

// SplitUnit selects how the size of each part is derived.
type SplitUnit int

const (
	// SplitBySize emits parts of a fixed maximum size.
	SplitBySize SplitUnit = iota

	// SplitByCount emits a fixed number of parts.
	SplitByCount
)

// String returns the wire name of the unit ("size" or "count").
func (u SplitUnit) String() string {
	switch u {
	case SplitBySize:
		return "size"
	case SplitByCount:
		return "count"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseSplitUnit parses "size" or "count" (case-insensitive).
func ParseSplitUnit(s string) (SplitUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "size", "by-size":
		return SplitBySize, nil
	case "count", "by-count":
		return SplitByCount, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSplitUnit, s)
	}
}

// Strategy is the packaging strategy used on the write side. The same
// strategy must be supplied on restore.
type Strategy int

const (
	// SplitThenZip slices the source first and archives every slice into
	// its own single-entry container.
	SplitThenZip Strategy = iota

	// ZipThenSplit archives the whole input once and slices the raw bytes
	// of the resulting container.
	ZipThenSplit
)

// String returns the wire name of the strategy.
func (s Strategy) String() string {
	switch s {
	case SplitThenZip:
		return "split-then-zip"
	case ZipThenSplit:
		return "zip-then-split"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses "split-then-zip" or "zip-then-split".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "split-then-zip":
		return SplitThenZip, nil
	case "zip-then-split":
		return ZipThenSplit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// DirSplitMode orders the two compression passes applied to a directory
// input under SplitThenZip.
type DirSplitMode int

const (
	// DirModeDefault behaves like DirModeCompressSplitStore.
	DirModeDefault DirSplitMode = iota

	// DirModeCompressSplitStore deflates the directory container, then
	// stores every slice without further compression.
	DirModeCompressSplitStore

	// DirModeStoreSplitCompress stores the directory container, then
	// deflates every slice.
	DirModeStoreSplitCompress
)

// String returns the wire name of the mode. The default mode has an empty name.
func (m DirSplitMode) String() string {
	switch m {
	case DirModeDefault:
		return ""
	case DirModeCompressSplitStore:
		return "compress-split-store"
	case DirModeStoreSplitCompress:
		return "store-split-compress"
	default:
		return fmt.Sprintf("dirmode(%d)", int(m))
	}
}

// ParseDirSplitMode parses a directory split mode. An empty string selects
// DirModeDefault.
func ParseDirSplitMode(s string) (DirSplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DirModeDefault, nil
	case "compress-split-store":
		return DirModeCompressSplitStore, nil
	case "store-split-compress":
		return DirModeStoreSplitCompress, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirMode, s)
	}
}
