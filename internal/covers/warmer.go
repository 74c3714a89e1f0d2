package covers

import (
	"context"
	"log"

	"github.com/mrlokans/bookscanner/internal/entities"
)

// Source streams complete snapshots of all records.
type Source interface {
	ObserveAll(ctx context.Context) <-chan []entities.Book
}

// Enqueuer schedules a cover download instead of running it inline.
type Enqueuer interface {
	EnqueueCover(ctx context.Context, recordID uint, coverURL string) error
}

// Warmer follows the record stream: covers of new records are downloaded and
// covers of removed or changed records are dropped.
type Warmer struct {
	cache    *Cache
	enqueuer Enqueuer
	known    map[uint]string
}

// NewWarmer creates a warmer. With a nil enqueuer downloads run inline.
func NewWarmer(cache *Cache, enqueuer Enqueuer) *Warmer {
	return &Warmer{
		cache:    cache,
		enqueuer: enqueuer,
		known:    make(map[uint]string),
	}
}

// Run consumes snapshots until ctx is done or the stream ends.
func (w *Warmer) Run(ctx context.Context, source Source) error {
	log.Println("[COVERS] Warmer started")
	for books := range source.ObserveAll(ctx) {
		w.apply(ctx, books)
	}
	log.Println("[COVERS] Warmer stopped")
	return nil
}

func (w *Warmer) apply(ctx context.Context, books []entities.Book) {
	seen := make(map[uint]struct{}, len(books))

	for _, book := range books {
		seen[book.ID] = struct{}{}

		prev, ok := w.known[book.ID]
		if ok && prev == book.CoverURL {
			continue
		}
		if ok {
			w.invalidate(book.ID)
		}
		w.known[book.ID] = book.CoverURL

		if book.CoverURL == "" || w.cache.Cached(book.ID, book.CoverURL) {
			continue
		}
		w.prefetch(ctx, book)
	}

	for id := range w.known {
		if _, ok := seen[id]; !ok {
			delete(w.known, id)
			w.invalidate(id)
		}
	}
}

func (w *Warmer) prefetch(ctx context.Context, book entities.Book) {
	var err error
	if w.enqueuer != nil {
		err = w.enqueuer.EnqueueCover(ctx, book.ID, book.CoverURL)
	} else {
		err = w.cache.Prefetch(ctx, book.ID, book.CoverURL)
	}
	if err != nil {
		log.Printf("[COVERS] Failed to prefetch cover for record %d: %v", book.ID, err)
	}
}

func (w *Warmer) invalidate(id uint) {
	if err := w.cache.InvalidateCover(id); err != nil {
		log.Printf("[COVERS] Failed to invalidate cover for record %d: %v", id, err)
	}
}
