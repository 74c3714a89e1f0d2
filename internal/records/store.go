// Package records is the facade over the persistent book store. It owns record
// identity, publishes complete snapshots to subscribers after every mutation,
// and carries no business rules of its own.
package records

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
)

// ErrNotFound is returned by a PersistentStore when no record has the given id.
var ErrNotFound = errors.New("record not found")

// PersistentStore is the durable id -> record mapping the facade depends on.
type PersistentStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	Upsert(ctx context.Context, book *entities.Book) error
	UpsertMany(ctx context.Context, books []entities.Book) error
	DeleteMany(ctx context.Context, books []entities.Book) error
}

// StoreError reports a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FromSummary converts a confirmed lookup result into a new record.
func FromSummary(s metadata.Summary) entities.Book {
	return entities.Book{
		ISBN:     s.ISBN,
		Title:    s.Title,
		Author:   s.Author,
		CoverURL: s.CoverURL,
	}
}

// Store exposes CRUD operations plus live snapshots of all records.
type Store struct {
	backend PersistentStore

	// writeMu serializes mutations so snapshots are published in mutation order.
	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[int]chan []entities.Book
	nextSub int
	current []entities.Book
	loaded  bool

	// retryDelay is the first backoff step when a subscriber's initial load fails.
	retryDelay time.Duration
}

const maxRetryDelay = 30 * time.Second

// NewStore creates a facade over the given backend.
func NewStore(backend PersistentStore) *Store {
	return &Store{
		backend:    backend,
		subs:       make(map[int]chan []entities.Book),
		retryDelay: time.Second,
	}
}

// Snapshot returns all records, newest first.
func (s *Store) Snapshot(ctx context.Context) ([]entities.Book, error) {
	s.mu.Lock()
	if s.loaded {
		out := slices.Clone(s.current)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	books, err := s.reload(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(books), nil
}

// GetByID returns the record with the given id, or nil when there is none.
func (s *Store) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.backend.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	return book, nil
}

// Insert upserts one record. A zero ID is assigned by the backend and written
// back into book.
func (s *Store) Insert(ctx context.Context, book *entities.Book) error {
	return s.mutate(ctx, "insert", func(ctx context.Context) error {
		return s.backend.Upsert(ctx, book)
	})
}

// InsertMany upserts all records as one batch.
func (s *Store) InsertMany(ctx context.Context, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return s.mutate(ctx, "insert many", func(ctx context.Context) error {
		return s.backend.UpsertMany(ctx, books)
	})
}

// Delete removes one record; its ID identifies it.
func (s *Store) Delete(ctx context.Context, book entities.Book) error {
	return s.DeleteMany(ctx, []entities.Book{book})
}

// DeleteMany removes all given records as one batch.
func (s *Store) DeleteMany(ctx context.Context, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return s.mutate(ctx, "delete", func(ctx context.Context) error {
		return s.backend.DeleteMany(ctx, books)
	})
}

func (s *Store) mutate(ctx context.Context, op string, fn func(context.Context) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := fn(ctx); err != nil {
		return &StoreError{Op: op, Err: err}
	}

	if _, err := s.reload(ctx); err != nil {
		// The write landed; subscribers catch up on the next successful reload.
		log.Printf("[STORE] Failed to refresh snapshot after %s: %v", op, err)
	}
	return nil
}

// reload reads the backend and publishes the result. Callers hold writeMu.
func (s *Store) reload(ctx context.Context) ([]entities.Book, error) {
	books, err := s.backend.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	sortNewestFirst(books)

	s.mu.Lock()
	s.current = books
	s.loaded = true
	for _, ch := range s.subs {
		offer(ch, slices.Clone(books))
	}
	s.mu.Unlock()

	return books, nil
}

// ObserveAll streams snapshots of all records, newest first. The current
// snapshot is delivered first; if it cannot be loaded yet, loading is retried
// in the background until it succeeds. A slow reader only ever sees the
// latest snapshot. The channel is closed when ctx is done.
func (s *Store) ObserveAll(ctx context.Context) <-chan []entities.Book {
	ch := make(chan []entities.Book, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	loaded := s.loaded
	if loaded {
		offer(ch, slices.Clone(s.current))
	}
	s.mu.Unlock()

	var initialErr error
	if !loaded {
		_, initialErr = s.Snapshot(ctx)
	}

	go func() {
		if initialErr != nil {
			s.retryInitialLoad(ctx, initialErr)
		}
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// retryInitialLoad keeps reloading with capped exponential backoff until a
// snapshot has been published or ctx is done.
func (s *Store) retryInitialLoad(ctx context.Context, err error) {
	delay := s.retryDelay
	for {
		log.Printf("[STORE] Initial snapshot failed, retrying in %v: %v", delay, err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		if _, err = s.Snapshot(ctx); err == nil {
			return
		}
		delay = min(2*delay, maxRetryDelay)
	}
}

// ObserveByID streams the record with the given id, emitting nil once it is
// deleted. Values are emitted only when the record changes.
func (s *Store) ObserveByID(ctx context.Context, id uint) <-chan *entities.Book {
	out := make(chan *entities.Book, 1)
	snapshots := s.ObserveAll(ctx)

	go func() {
		defer close(out)
		var last *entities.Book
		first := true
		for books := range snapshots {
			book := findByID(books, id)
			if !first && equalRecord(last, book) {
				continue
			}
			first = false
			last = book
			select {
			case out <- book:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// offer delivers v, replacing any value the reader has not consumed yet.
// Callers hold s.mu.
func offer(ch chan []entities.Book, v []entities.Book) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

func sortNewestFirst(books []entities.Book) {
	slices.SortStableFunc(books, func(a, b entities.Book) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
}

func findByID(books []entities.Book, id uint) *entities.Book {
	for i := range books {
		if books[i].ID == id {
			b := books[i]
			return &b
		}
	}
	return nil
}

func equalRecord(a, b *entities.Book) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
