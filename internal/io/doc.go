// Package ioutils provides the file system helpers shared by packing and
// restoring.
//
// This package contains functions for:
//   - Block copies with cancellation and progress callbacks
//   - Parts directory preparation
//   - Atomic-ish replacement of a finished file
//   - Directory creation and emptiness checks
//
// # Block Copies
//
// CopyN and Copy move data in BlockSize chunks and check the context
// between blocks, so a cancelled run stops within one block:
//
//	n, err := ioutils.CopyN(ctx, dst, src, size, func(delta int64) {
//	    tracker.Add(delta)
//	})
//
// # Parts Directory
//
//	err := ioutils.PreparePartsDir("/out/movie.mkv.parts", overwrite)
package ioutils
