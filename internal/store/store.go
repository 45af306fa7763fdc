package store

import (
	"context"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// Store defines the persistence interface for records and the global
// version counter. Not-found is reported as sql.ErrNoRows from every
// id-scoped operation.
type Store interface {
	// Record CRUD
	CreateRecord(ctx context.Context, rec *model.Record) error
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	ListRecords(ctx context.Context) ([]*model.Record, error)                        // ordered by (type asc, name asc)
	ListRecordsByType(ctx context.Context, recordType string) ([]*model.Record, error) // ordered by name asc
	ListTypes(ctx context.Context) ([]string, error)                                 // distinct types, ascending
	UpdateRecord(ctx context.Context, id int64, name *string, payload model.Payload) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error

	// RecordExists reports whether a record with the exact (type, id) pair
	// is visible to the current transaction.
	RecordExists(ctx context.Context, recordType string, id int64) (bool, error)

	// Version counter. Version lazily creates the singleton row at 0;
	// BumpVersion increments it atomically (upsert, never read-then-write).
	Version(ctx context.Context) (int64, error)
	BumpVersion(ctx context.Context) (int64, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
