// Package model defines the data structures shared by the split and
// restore pipelines.
//
// # Requests
//
// SplitRequest and RestoreRequest are the typed option structs handed in
// by a front end (CLI or TUI). Both carry a Validate method that performs
// the input-validation class of checks before any work starts:
//
//	req := model.SplitRequest{
//	    InputPath: "/data/photos",
//	    OutputDir: "/data/out",
//	    Unit:      model.SplitByCount,
//	    Count:     5,
//	    Strategy:  model.SplitThenZip,
//	    DirMode:   model.DirModeStoreSplitCompress,
//	}
//	if err := req.Validate(); err != nil {
//	    // report, nothing was written
//	}
//
// # Outcomes
//
// SplitOutcome and RestoreOutcome report what was written.
//
// # Progress
//
// ProgressEvent values flow one way, from the pipelines to a sink. The
// Phase vocabulary is fixed: pack-dir, zip, split-zip, split, restore,
// merge and unzip.
package model
