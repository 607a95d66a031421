// Package planner decides how many parts a split produces and how many
// source bytes go into each.
//
// Compute is the plain planner used whenever parts may be compressed or
// are raw slices. ComputeStored is the overhead-aware planner used when
// every part is a stored container that must stay under a byte cap:
//
//	plan, err := planner.ComputeStored(total, 10<<20, "backup.tar", true)
//	var tooSmall *planner.MinimumSizeError
//	if errors.As(err, &tooSmall) {
//	    fmt.Println("need at least", tooSmall.Minimum, "bytes per part")
//	}
//
// Both are pure functions; no I/O happens here.
package planner
