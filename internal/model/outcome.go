package model

// SplitOutcome is the result of a successful split. OutputFiles holds
// exactly Parts paths, ordered by part index.
type SplitOutcome struct {
	Parts       int
	OutputFiles []string
	IsDir       bool
	BaseName    string
}

// RestoreOutcome is the result of a successful restore.
type RestoreOutcome struct {
	// MergedFile is the reconstructed file. Empty if nothing was merged.
	MergedFile string

	// ExtractedDir is set when auto-extraction ran.
	ExtractedDir string

	// OutputFiles lists every produced path: the merged file first, then
	// the extracted directory if any.
	OutputFiles []string
}
