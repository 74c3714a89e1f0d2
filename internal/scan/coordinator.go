package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/mrlokans/bookscanner/internal/entities"
	"github.com/mrlokans/bookscanner/internal/metadata"
	"github.com/mrlokans/bookscanner/internal/records"
)

// Resolver turns an identifier into a summary. It returns metadata.ErrNotFound
// when nothing matches.
type Resolver interface {
	Resolve(ctx context.Context, isbn string) (metadata.Summary, error)
}

// RecordWriter persists confirmed summaries.
type RecordWriter interface {
	Insert(ctx context.Context, book *entities.Book) error
	InsertMany(ctx context.Context, books []entities.Book) error
}

// Recorder receives counters for detections, lookups and saves.
type Recorder interface {
	ScanDetected(outcome string)
	LookupCompleted(result string, elapsed time.Duration)
	RecordsSaved(mode string, n int)
}

// Lookup result labels passed to Recorder.LookupCompleted.
const (
	LookupFound     = "found"
	LookupNotFound  = "not_found"
	LookupFailed    = "error"
	LookupDiscarded = "discarded"
)

// Save mode labels passed to Recorder.RecordsSaved.
const (
	SaveModeSingle = "single"
	SaveModeBatch  = "batch"
)

type nopRecorder struct{}

func (nopRecorder) ScanDetected(string) {}
func (nopRecorder) LookupCompleted(string, time.Duration) {}
func (nopRecorder) RecordsSaved(string, int) {}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLookupTimeout bounds every lookup. Zero leaves lookups unbounded.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.lookupTimeout = d }
}

// WithRecorder sends metrics to r.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Coordinator is the scan state machine. All transitions happen under one
// mutex; lookups and store writes run without it.
type Coordinator struct {
	resolver      Resolver
	writer        RecordWriter
	recorder      Recorder
	lookupTimeout time.Duration

	baseCtx    context.Context
	baseCancel context.CancelFunc
	inflight   sync.WaitGroup
	watching   sync.WaitGroup

	mu     sync.Mutex
	state  State
	batch  bool
	buffer []metadata.Summary
	// generation changes whenever an in-flight lookup must be forgotten.
	generation uint64
	// bufferEpoch changes whenever the buffer is discarded.
	bufferEpoch  uint64
	cancelLookup context.CancelFunc
	saving       bool
	closed       bool

	watchers    map[int]chan Snapshot
	nextWatcher int
}

// NewCoordinator creates an idle coordinator in single mode.
func NewCoordinator(resolver Resolver, writer RecordWriter, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		resolver:   resolver,
		writer:     writer,
		recorder:   nopRecorder{},
		baseCtx:    ctx,
		baseCancel: cancel,
		state:      idleState(),
		watchers:   make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnScanDetected handles one decoded barcode. It never blocks on I/O: when
// the detection is accepted the lookup runs in its own goroutine.
func (c *Coordinator) OnScanDetected(isbn string) Outcome {
	c.mu.Lock()
	outcome := c.acceptLocked(isbn)
	c.mu.Unlock()

	c.recorder.ScanDetected(outcome.String())
	return outcome
}

func (c *Coordinator) acceptLocked(isbn string) Outcome {
	if c.closed {
		return OutcomeClosed
	}
	if c.state.Kind != Idle {
		return OutcomeBusy
	}
	if c.batch && c.bufferedLocked(isbn) {
		return OutcomeDuplicate
	}

	c.generation++
	gen := c.generation

	var ctx context.Context
	var cancel context.CancelFunc
	if c.lookupTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.baseCtx, c.lookupTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.baseCtx)
	}
	c.cancelLookup = cancel

	c.setStateLocked(loadingState())

	c.inflight.Add(1)
	go c.lookup(ctx, cancel, gen, isbn)

	return OutcomeAccepted
}

func (c *Coordinator) lookup(ctx context.Context, cancel context.CancelFunc, gen uint64, isbn string) {
	defer c.inflight.Done()
	defer cancel()

	start := time.Now()
	summary, err := c.resolveSafely(ctx, isbn)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state.Kind != Loading {
		log.Printf("[SCAN] Discarding stale lookup for %s", isbn)
		c.recorder.LookupCompleted(LookupDiscarded, elapsed)
		return
	}
	c.cancelLookup = nil

	switch {
	case err == nil:
		c.recorder.LookupCompleted(LookupFound, elapsed)
	case errors.Is(err, metadata.ErrNotFound):
		log.Printf("[SCAN] No book found for %s", isbn)
		c.recorder.LookupCompleted(LookupNotFound, elapsed)
	default:
		log.Printf("[SCAN] Lookup failed for %s: %v", isbn, err)
		c.recorder.LookupCompleted(LookupFailed, elapsed)
	}

	if c.batch {
		if err == nil && !c.bufferedLocked(summary.ISBN) {
			c.buffer = append(c.buffer, summary)
		}
		c.setStateLocked(idleState())
		return
	}

	if err != nil {
		c.setStateLocked(errorState(ReasonNotFound))
		return
	}
	c.setStateLocked(successState(summary))
}

// resolveSafely keeps a panicking resolver from taking the process down.
func (c *Coordinator) resolveSafely(ctx context.Context, isbn string) (summary metadata.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary, err = metadata.Summary{}, &metadata.LookupError{ISBN: isbn, Err: fmt.Errorf("resolver panic: %v", r)}
		}
	}()
	return c.resolver.Resolve(ctx, isbn)
}

// SetBatchMode switches modes. The state returns to Idle, any in-flight
// lookup is abandoned, and the buffer is discarded.
func (c *Coordinator) SetBatchMode(batch bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batch = batch
	c.abortLocked()
	c.buffer = nil
	c.bufferEpoch++
	c.setStateLocked(idleState())
}

// ResetState forces Idle, abandoning any in-flight lookup. The buffer is kept.
func (c *Coordinator) ResetState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortLocked()
	c.setStateLocked(idleState())
}

func (c *Coordinator) abortLocked() {
	c.generation++
	if c.cancelLookup != nil {
		c.cancelLookup()
		c.cancelLookup = nil
	}
}

// SaveCurrent persists the summary held in the Success state and returns to
// Idle. It reports false without touching the store when there is nothing to
// save or another save is running. On a store error the state is unchanged.
func (c *Coordinator) SaveCurrent(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state.Kind != Success || c.saving {
		c.mu.Unlock()
		return false, nil
	}
	summary := c.state.Book
	gen := c.generation
	c.saving = true
	c.mu.Unlock()

	book := records.FromSummary(summary)
	err := c.writer.Insert(ctx, &book)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false

	if err != nil {
		log.Printf("[SCAN] Failed to save %s: %v", summary.ISBN, err)
		return false, err
	}

	c.recorder.RecordsSaved(SaveModeSingle, 1)
	if gen == c.generation && c.state.Kind == Success {
		c.setStateLocked(idleState())
	}
	return true, nil
}

// SaveBuffered persists every buffered summary in one batch and removes the
// saved entries from the buffer. Entries appended while the save was running
// stay buffered. It returns the number of saved records.
func (c *Coordinator) SaveBuffered(ctx context.Context) (int, error) {
	c.mu.Lock()
	if len(c.buffer) == 0 || c.saving {
		c.mu.Unlock()
		return 0, nil
	}
	pending := slices.Clone(c.buffer)
	epoch := c.bufferEpoch
	c.saving = true
	c.mu.Unlock()

	books := make([]entities.Book, 0, len(pending))
	for _, s := range pending {
		books = append(books, records.FromSummary(s))
	}
	err := c.writer.InsertMany(ctx, books)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false

	if err != nil {
		log.Printf("[SCAN] Failed to save %d buffered books: %v", len(pending), err)
		return 0, err
	}

	c.recorder.RecordsSaved(SaveModeBatch, len(pending))
	if epoch == c.bufferEpoch {
		c.buffer = slices.Clone(c.buffer[len(pending):])
		c.publishLocked()
	}
	return len(pending), nil
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BatchMode reports whether batch mode is on.
func (c *Coordinator) BatchMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batch
}

// Buffer returns a copy of the batch buffer in scan order.
func (c *Coordinator) Buffer() []metadata.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.buffer)
}

// Snapshot returns state, mode and buffer read together.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		State:     c.state,
		BatchMode: c.batch,
		Buffer:    slices.Clone(c.buffer),
	}
}

// Watch streams snapshots, starting with the current one. A slow reader only
// sees the latest snapshot. The channel closes when ctx is done or the
// coordinator is closed.
func (c *Coordinator) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	if c.closed {
		close(ch)
		c.mu.Unlock()
		return ch
	}
	id := c.nextWatcher
	c.nextWatcher++
	c.watchers[id] = ch
	ch <- c.snapshotLocked()
	c.watching.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.watching.Done()
		select {
		case <-ctx.Done():
		case <-c.baseCtx.Done():
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if w, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(w)
		}
	}()

	return ch
}

// Wait blocks until every started lookup goroutine has returned.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// Close abandons any in-flight lookup, closes every watch channel and waits
// for lookup and watcher goroutines to return. Later detections report
// OutcomeClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.abortLocked()
		c.setStateLocked(idleState())
		for id, ch := range c.watchers {
			delete(c.watchers, id)
			close(ch)
		}
	}
	c.mu.Unlock()

	c.baseCancel()
	c.inflight.Wait()
	c.watching.Wait()
}

func (c *Coordinator) bufferedLocked(isbn string) bool {
	return slices.ContainsFunc(c.buffer, func(s metadata.Summary) bool {
		return s.ISBN == isbn
	})
}

func (c *Coordinator) setStateLocked(s State) {
	c.state = s
	c.publishLocked()
}

func (c *Coordinator) publishLocked() {
	if len(c.watchers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.watchers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
