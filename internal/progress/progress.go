package progress

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/havonz/file-split-packer/internal/model"
)

// Interval is the minimum spacing between throttled events.
const Interval = 120 * time.Millisecond

const bufferSize = 256

// Sink consumes events. It runs on the emitter's goroutine.
type Sink func(model.ProgressEvent)

// Emitter forwards events to a Sink asynchronously.
type Emitter struct {
	sink    Sink
	ch      chan model.ProgressEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewEmitter starts an emitter. A nil sink discards every event.
func NewEmitter(sink Sink) *Emitter {
	e := &Emitter{
		sink: sink,
		ch:   make(chan model.ProgressEvent, bufferSize),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Emitter) run() {
	defer close(e.done)
	for ev := range e.ch {
		if e.sink != nil {
			e.sink(ev)
		}
	}
}

// Emit queues ev without blocking and reports whether it was accepted.
func (e *Emitter) Emit(ev model.ProgressEvent) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	select {
	case e.ch <- ev:
		return true
	default:
		e.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Close stops accepting events and waits until queued ones are delivered.
func (e *Emitter) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
	e.mu.Unlock()
	<-e.done
}

// Tracker aggregates processed bytes for one phase.
type Tracker struct {
	emitter   *Emitter
	phase     model.Phase
	total     uint64
	partTotal int
	message   string

	processed atomic.Uint64
	part      atomic.Int64

	mu       sync.Mutex
	interval time.Duration
	lastEmit time.Time
	lastSent uint64
	sent     bool
	now      func() time.Time
}

// Track starts aggregating a phase of total bytes spread over partTotal
// parts. A nil emitter yields a tracker that only counts.
func (e *Emitter) Track(phase model.Phase, total uint64, partTotal int) *Tracker {
	return &Tracker{
		emitter:   e,
		phase:     phase,
		total:     total,
		partTotal: partTotal,
		interval:  Interval,
		now:       time.Now,
	}
}

// Unthrottled makes the tracker emit on every Add that moves the count.
// Single-reader loops use it to report after each copied block.
func (t *Tracker) Unthrottled() *Tracker {
	t.interval = 0
	return t
}

// SetMessage sets the status text carried by later events. Once a part is
// set, events carry the text followed by " part i/n".
func (t *Tracker) SetMessage(msg string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.message = msg
	t.mu.Unlock()
}

// SetPart records the part currently being processed.
func (t *Tracker) SetPart(index int) {
	if t == nil {
		return
	}
	t.part.Store(int64(index))
}

// Processed returns the bytes counted so far.
func (t *Tracker) Processed() uint64 {
	if t == nil {
		return 0
	}
	return t.processed.Load()
}

// Add counts delta processed bytes and emits if the interval has passed
// or the phase just completed.
func (t *Tracker) Add(delta int64) {
	if t == nil || delta <= 0 {
		return
	}
	n := t.processed.Add(uint64(delta))
	t.maybeEmit(n >= t.total, false)
}

// Start emits the event that opens a phase.
func (t *Tracker) Start() {
	t.maybeEmit(true, true)
}

// Finish emits the current count unless it was already the last one sent.
func (t *Tracker) Finish() {
	t.maybeEmit(true, false)
}

func (t *Tracker) maybeEmit(force, repeat bool) {
	if t == nil || t.emitter == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !force && t.sent && now.Sub(t.lastEmit) < t.interval {
		return
	}

	// Re-read under the lock so that events leave in non-decreasing order.
	cur := t.processed.Load()
	if t.sent && cur == t.lastSent && !repeat {
		return
	}

	t.lastEmit = now
	t.lastSent = cur
	t.sent = true
	part := int(t.part.Load())
	t.emitter.Emit(model.ProgressEvent{
		Phase:          t.phase,
		ProcessedBytes: cur,
		TotalBytes:     t.total,
		PartIndex:      part,
		PartTotal:      t.partTotal,
		Message:        t.status(part),
	})
}

func (t *Tracker) status(part int) string {
	if t.message == "" || part <= 0 || t.partTotal <= 0 {
		return t.message
	}
	return fmt.Sprintf("%s part %d/%d", t.message, part, t.partTotal)
}
