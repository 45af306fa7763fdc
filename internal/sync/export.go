// Package sync periodically exports the registry to backup destinations.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/refdata/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Counter     int64     `json:"counter"`
	RecordCount int       `json:"record_count"`
}

// line wraps a single JSONL line with a type discriminator.
type line struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes the registry version counter and every record from the
// store as JSONL to w. Records keep the store's (type asc, name asc) order so
// consecutive exports of an unchanged registry are byte-identical apart from
// the header timestamp.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	counter, err := s.Version(ctx)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	records, err := s.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		Counter:     counter,
		RecordCount: len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, rec := range records {
		if err := enc.Encode(line{Type: "record", Data: rec}); err != nil {
			return fmt.Errorf("encode record %d: %w", rec.ID, err)
		}
	}

	return nil
}
