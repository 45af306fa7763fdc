// Package client provides a transport-agnostic interface for the refdata
// service and an HTTP/JSON implementation that talks to the refdata REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// RegistryClient is the interface that all rd CLI commands use to communicate
// with the refdata server. It is implemented by HTTPClient (default) and can
// be backed by any transport.
type RegistryClient interface {
	// Record CRUD
	CreateRecord(ctx context.Context, recordType, name string, payload model.Payload) (model.View, error)
	GetRecord(ctx context.Context, id int64) (model.View, error)
	UpdateRecord(ctx context.Context, id int64, name *string, patch model.Payload) (model.View, error)
	DeleteRecord(ctx context.Context, id int64) error

	// Listings
	GetAll(ctx context.Context) (*Snapshot, error)
	ListByType(ctx context.Context, recordType string) ([]model.View, error)
	ListTypes(ctx context.Context) ([]string, error)

	// Version counter
	Version(ctx context.Context) (int64, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// Snapshot is the full registry state: the current version plus every
// record view grouped by type.
type Snapshot struct {
	Version     int64                   `json:"version"`
	ItemsByType map[string][]model.View `json:"itemsByType"`
}
