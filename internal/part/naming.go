package part

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker precedes the index in every part name.
const Marker = "part-"

const (
	zipExt      = ".zip"
	partsDirExt = ".parts"
)

// Name is a parsed part file name: Prefix + "part-" + Index + Suffix.
type Name struct {
	Prefix string
	Index  int
	Suffix string
}

// FormatIndex left-pads index with zeros to width digits.
func FormatIndex(index, width int) string {
	return fmt.Sprintf("%0*d", width, index)
}

// Format builds "<prefix>part-<NNN><suffix>".
func Format(prefix string, index, width int, suffix string) string {
	return prefix + Marker + FormatIndex(index, width) + suffix
}

// EntryName is the single entry stored inside a split-then-zip part:
// "<base>.part-<NNN>".
func EntryName(base string, index, width int) string {
	return Format(base+".", index, width, "")
}

// ArchivedPartName is the file name of a split-then-zip part:
// "<base>.part-<NNN>.zip".
func ArchivedPartName(base string, index, width int) string {
	return Format(base+".", index, width, zipExt)
}

// RawPartName is the file name of a zip-then-split part:
// "<base>.zip.part-<NNN>".
func RawPartName(base string, index, width int) string {
	return Format(base+zipExt+".", index, width, "")
}

// DirName is the directory that holds every part of one run.
func DirName(base string) string {
	return base + partsDirExt
}

// Parse splits a file name at the last "part-" marker. The index is the
// maximal run of ASCII digits following the marker. Names without a
// marker, without digits after it, or whose index does not fit an int
// are not parts.
func Parse(name string) (Name, bool) {
	pos := strings.LastIndex(name, Marker)
	if pos < 0 {
		return Name{}, false
	}

	start := pos + len(Marker)
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == start {
		return Name{}, false
	}

	index, err := strconv.Atoi(name[start:end])
	if err != nil {
		return Name{}, false
	}

	return Name{
		Prefix: name[:pos],
		Index:  index,
		Suffix: name[end:],
	}, true
}
