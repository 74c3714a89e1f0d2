package http

import (
	"context"

	"github.com/mrlokans/bookscanner/internal/entities"
	"github.com/mrlokans/bookscanner/internal/sessions"
)

// Each controller depends on the narrow interface it needs. records.Store and
// sessions.Registry satisfy them in production.

// RecordReader provides read access to records.
type RecordReader interface {
	Snapshot(ctx context.Context) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
}

// RecordStore adds single-record deletion.
type RecordStore interface {
	RecordReader
	Delete(ctx context.Context, book entities.Book) error
}

// SessionStore opens, finds and closes scan sessions.
type SessionStore interface {
	Create() *sessions.Session
	Get(id string) (*sessions.Session, bool)
	Delete(id string) bool
}

// DeletionRecorder counts deleted records.
type DeletionRecorder interface {
	IncRecordsDeleted(n int)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecordCounter reports how many records are persisted.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
}
