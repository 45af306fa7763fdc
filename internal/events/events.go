// Package events publishes record mutation notifications. Consumers use
// them to refresh caches without polling the version endpoint.
package events

import (
	"context"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// Event topic constants
const (
	TopicRecordCreated = "refdata.record.created"
	TopicRecordUpdated = "refdata.record.updated"
	TopicRecordDeleted = "refdata.record.deleted"

	// TopicAllRecords matches every record event (NATS wildcard).
	TopicAllRecords = "refdata.record.>"
)

// Publisher publishes mutation events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// RecordCreated is published after a create commits.
type RecordCreated struct {
	Item    model.View `json:"item"`
	Version int64      `json:"version"`
}

// RecordUpdated is published after an update commits. Changed lists the
// payload keys touched by the patch.
type RecordUpdated struct {
	Item    model.View `json:"item"`
	Changed []string   `json:"changed,omitempty"`
	Version int64      `json:"version"`
}

// RecordDeleted is published after a delete commits.
type RecordDeleted struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Version int64  `json:"version"`
}
