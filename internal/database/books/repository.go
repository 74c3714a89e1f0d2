// Package books provides database operations for catalogued book records.
//
// This package implements the PersistentStore interface defined in
// internal/records/store.go.
//
// # Interface Implementation
//
//	var _ records.PersistentStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookscanner/internal/entities"
	"github.com/mrlokans/bookscanner/internal/records"
)

// Repository handles all book record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// replaceOnConflict turns an insert into a wholesale replace when the id exists.
var replaceOnConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("id DESC").Find(&books).Error
	return books, err
}

// GetByID retrieves a record by its ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Upsert inserts a record, or replaces the existing one with the same ID.
// A zero ID lets the database assign the next one.
func (r *Repository) Upsert(ctx context.Context, book *entities.Book) error {
	return upsert(r.db.WithContext(ctx), book)
}

// UpsertMany upserts all records in one transaction. Rows are written one by
// one so zero and non-zero IDs can be mixed in the same batch.
func (r *Repository) UpsertMany(ctx context.Context, books []entities.Book) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range books {
			if err := upsert(tx, &books[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMany hard deletes the given records by ID in one transaction.
func (r *Repository) DeleteMany(ctx context.Context, books []entities.Book) error {
	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&entities.Book{}).Error
	})
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&n).Error
	return n, err
}

func upsert(tx *gorm.DB, book *entities.Book) error {
	return tx.Clauses(replaceOnConflict).Create(book).Error
}
