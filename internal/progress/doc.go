// Package progress carries ProgressEvent values from long-running work to
// an outside consumer without ever blocking the work.
//
// An Emitter owns a buffered channel drained by one goroutine that calls
// the Sink. When the buffer is full new events are dropped, so a slow or
// absent consumer cannot stall packing. A Tracker sits on top of an
// Emitter and aggregates byte counts from any number of goroutines,
// emitting at most once per Interval and always once on completion:
//
//	em := progress.NewEmitter(sink)
//	defer em.Close()
//
//	tr := em.Track(model.PhaseSplit, total, parts)
//	tr.Add(int64(n)) // from any goroutine
package progress
