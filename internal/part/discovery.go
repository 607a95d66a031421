package part

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotPart is returned when a file given explicitly does not carry a
	// part marker.
	ErrNotPart = errors.New("file name is not a recognizable part name")

	// ErrNoParts is returned when no part files are found.
	ErrNoParts = errors.New("no part files found")

	// ErrAmbiguousGroups is returned when a directory holds more than one
	// part group. Pass a single part file instead.
	ErrAmbiguousGroups = errors.New("multiple part groups found; select a specific part file")
)

// GapError reports the first index missing from a part sequence.
type GapError struct {
	Missing int
}

func (e *GapError) Error() string {
	return fmt.Sprintf("part sequence is not contiguous, part %d is missing", e.Missing)
}

// DuplicateError reports an index that appears more than once, for
// example "a.part-1.zip" next to "a.part-001.zip".
type DuplicateError struct {
	Index int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("part %d appears more than once", e.Index)
}

// Part is one discovered part file.
type Part struct {
	Index int
	Path  string
}

// Group is a validated set of parts sharing a prefix and suffix, sorted by
// index. Indices run 1..len(Parts) without gaps.
type Group struct {
	Prefix string
	Suffix string
	Parts  []Part
}

type groupKey struct {
	prefix string
	suffix string
}

// Discover resolves a part file or a directory into a validated Group.
//
// Given a file, its siblings with the same prefix and suffix form the
// group and files of other groups are ignored. Given a directory, it must
// contain exactly one group.
func Discover(path string) (*Group, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return discoverDir(path, nil)
	}

	name, ok := Parse(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotPart, filepath.Base(path))
	}
	return discoverDir(filepath.Dir(path), &groupKey{prefix: name.Prefix, suffix: name.Suffix})
}

func discoverDir(dir string, filter *groupKey) (*Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	groups := make(map[groupKey][]Part)
	for _, entry := range entries {
		if !isFile(dir, entry) {
			continue
		}
		name, ok := Parse(entry.Name())
		if !ok {
			continue
		}
		key := groupKey{prefix: name.Prefix, suffix: name.Suffix}
		if filter != nil && key != *filter {
			continue
		}
		groups[key] = append(groups[key], Part{
			Index: name.Index,
			Path:  filepath.Join(dir, entry.Name()),
		})
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoParts, dir)
	}
	if len(groups) > 1 {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousGroups, describeGroups(groups))
	}

	var group *Group
	for key, parts := range groups {
		group = &Group{Prefix: key.prefix, Suffix: key.suffix, Parts: parts}
	}

	sort.Slice(group.Parts, func(i, j int) bool {
		return group.Parts[i].Index < group.Parts[j].Index
	})
	if err := Validate(group.Parts); err != nil {
		return nil, err
	}
	return group, nil
}

// Validate requires sorted parts to be numbered exactly 1..len(parts).
func Validate(parts []Part) error {
	for i, p := range parts {
		expected := i + 1
		if p.Index == expected {
			continue
		}
		if i > 0 && p.Index == parts[i-1].Index {
			return &DuplicateError{Index: p.Index}
		}
		return &GapError{Missing: expected}
	}
	return nil
}

// Paths returns the part paths in index order.
func (g *Group) Paths() []string {
	paths := make([]string, len(g.Parts))
	for i, p := range g.Parts {
		paths[i] = p.Path
	}
	return paths
}

func isFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func describeGroups(groups map[groupKey][]Part) string {
	names := make([]string, 0, len(groups))
	for key := range groups {
		names = append(names, key.prefix+Marker+"*"+key.suffix)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
