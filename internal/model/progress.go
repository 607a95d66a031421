package model

// Phase tags the long-running step a ProgressEvent belongs to.
type Phase string

const (
	PhasePackDir  Phase = "pack-dir"  // archiving a directory before slicing
	PhaseZip      Phase = "zip"       // archiving the whole input (zip-then-split)
	PhaseSplitZip Phase = "split-zip" // archiving individual parts
	PhaseSplit    Phase = "split"     // slicing raw container bytes
	PhaseRestore  Phase = "restore"   // decrypting and merging archived parts
	PhaseMerge    Phase = "merge"     // concatenating raw parts
	PhaseUnzip    Phase = "unzip"     // extracting the merged container
)

// ProgressEvent is a point-in-time progress report. Events are passed by
// value and carry no reference back to the producer.
type ProgressEvent struct {
	Phase          Phase
	ProcessedBytes uint64
	TotalBytes     uint64
	PartIndex      int
	PartTotal      int
	Message        string
}

// Fraction returns processed/total clamped to [0, 1].
func (e ProgressEvent) Fraction() float64 {
	if e.TotalBytes == 0 {
		return 0
	}
	f := float64(e.ProcessedBytes) / float64(e.TotalBytes)
	if f > 1 {
		return 1
	}
	return f
}

// Done reports whether the phase has processed all of its bytes.
func (e ProgressEvent) Done() bool {
	return e.TotalBytes > 0 && e.ProcessedBytes >= e.TotalBytes
}
