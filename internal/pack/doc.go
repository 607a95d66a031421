// Package pack turns a file or directory into a directory of parts.
//
// Two strategies are supported. SplitThenZip slices the source and wraps
// every slice in its own single-entry container, "<base>.part-NNN.zip".
// ZipThenSplit archives the whole input once and slices the container's
// raw bytes into "<base>.zip.part-NNN". Parts always land in
// "<output>/<base>.parts/".
//
// Basic usage:
//
//	p := pack.New(pack.Config{Logger: logger}, func(ev model.ProgressEvent) {
//	    fmt.Printf("%s %d/%d\n", ev.Phase, ev.ProcessedBytes, ev.TotalBytes)
//	})
//	out, err := p.Split(ctx, model.SplitRequest{
//	    InputPath: "/data/backup.tar",
//	    OutputDir: "/data/out",
//	    Unit:      model.SplitBySize,
//	    Size:      100 << 20,
//	    Strategy:  model.SplitThenZip,
//	})
//
// Under SplitThenZip with SplitBySize every part is stored and the
// overhead-aware planner keeps each part file at or below Size bytes.
package pack
