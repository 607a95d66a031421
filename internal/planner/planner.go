package planner

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/havonz/file-split-packer/internal/model"
)

// MinWidth is the smallest zero-padding width used for part indices.
const MinWidth = 3

// MaxRounds bounds the overhead-aware fixed-point iteration.
const MaxRounds = 5

// MaxCount is the largest by-count value accepted for an input smaller
// than the count. Counts up to the input size are always accepted.
const MaxCount = 1 << 20

var (
	// ErrNoFixedPoint is returned when the overhead-aware part count did
	// not settle within MaxRounds iterations.
	ErrNoFixedPoint = errors.New("part count did not converge")

	// ErrEmptyTotal is returned when there is nothing to split.
	ErrEmptyTotal = errors.New("total size is 0")

	// ErrTooManyParts is returned for a by-count value above both the
	// input size and MaxCount.
	ErrTooManyParts = errors.New("part count too large")
)

// MinimumSizeError reports a per-part cap that cannot hold any payload
// once container overhead is added.
type MinimumSizeError struct {
	Requested uint64
	Minimum   uint64
}

func (e *MinimumSizeError) Error() string {
	return fmt.Sprintf("part size %d is too small, at least %d bytes are required", e.Requested, e.Minimum)
}

// Plan is the outcome of chunk planning.
type Plan struct {
	// ChunkSize is the number of source bytes placed in each part. The
	// last part holds the remainder.
	ChunkSize uint64

	// Parts is the number of parts to emit.
	Parts int

	// Width is the zero-padding width of part indices for this run.
	Width int
}

// PartSize returns the number of source bytes in part index (1-based).
// Trailing parts of a by-count plan over a tiny input may be empty.
func (p Plan) PartSize(total uint64, index int) uint64 {
	offset := p.Offset(total, index)
	remaining := total - offset
	if remaining < p.ChunkSize {
		return remaining
	}
	return p.ChunkSize
}

// Offset returns the source offset of part index (1-based), clamped to total.
func (p Plan) Offset(total uint64, index int) uint64 {
	if index <= 1 {
		return 0
	}
	steps := uint64(index - 1)
	if p.ChunkSize != 0 && steps > total/p.ChunkSize {
		return total
	}
	offset := steps * p.ChunkSize
	if offset > total {
		return total
	}
	return offset
}

// Compute plans a split of total bytes without accounting for container
// overhead.
//
// By size, every part holds value bytes and the count is ceil(total/value).
// By count, the chunk size is ceil(total/value) and exactly value parts
// are emitted, so a count larger than total leaves trailing parts empty.
// Such counts are capped at MaxCount.
func Compute(total uint64, unit model.SplitUnit, value uint64) (Plan, error) {
	if total == 0 {
		return Plan{}, ErrEmptyTotal
	}

	switch unit {
	case model.SplitBySize:
		if value == 0 {
			return Plan{}, model.ErrZeroSize
		}
		parts := int(divCeil(total, value))
		return Plan{ChunkSize: value, Parts: parts, Width: Width(parts)}, nil

	case model.SplitByCount:
		if value == 0 {
			return Plan{}, model.ErrZeroCount
		}
		if value > total && value > MaxCount {
			return Plan{}, fmt.Errorf("%w: %d parts for %d bytes", ErrTooManyParts, value, total)
		}
		chunk := max(1, divCeil(total, value))
		parts := int(value)
		return Plan{ChunkSize: chunk, Parts: parts, Width: Width(parts)}, nil

	default:
		return Plan{}, fmt.Errorf("%w: %s", model.ErrUnknownSplitUnit, unit)
	}
}

// ComputeStored plans a by-size split in which every part is written as a
// stored (uncompressed) single-entry container whose on-disk size must not
// exceed size.
//
// The entry name, and so the overhead, depends on the index width, which
// depends on the part count. The count is refined until it stops changing.
func ComputeStored(total, size uint64, baseName string, encrypted bool) (Plan, error) {
	if total == 0 {
		return Plan{}, ErrEmptyTotal
	}
	if size == 0 {
		return Plan{}, model.ErrZeroSize
	}

	parts := int(divCeil(total, size))
	for range MaxRounds {
		width := Width(parts)
		overhead := StoredOverhead(EntryNameLen(baseName, width), encrypted, size)
		if size <= overhead {
			return Plan{}, &MinimumSizeError{Requested: size, Minimum: overhead + 1}
		}

		payload := size - overhead
		next := int(divCeil(total, payload))
		if next == parts {
			return Plan{ChunkSize: payload, Parts: parts, Width: width}, nil
		}
		parts = next
	}

	return Plan{}, fmt.Errorf("%w after %d rounds (last estimate %d parts)", ErrNoFixedPoint, MaxRounds, parts)
}

// Width returns the zero-padding width for a run of parts.
func Width(parts int) int {
	return max(MinWidth, len(strconv.Itoa(parts)))
}

// EntryNameLen is the length of "<base>.part-<NNN>".
func EntryNameLen(baseName string, width int) int {
	return len(baseName) + len(".part-") + width
}

func divCeil(value, divisor uint64) uint64 {
	return value/divisor + min(1, value%divisor)
}
