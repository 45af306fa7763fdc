package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a model.Record.
// The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var r model.Record
	var payload []byte

	err := row.Scan(
		&r.ID,
		&r.Type,
		&r.Name,
		&payload,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			return nil, fmt.Errorf("decode payload for record %d: %w", r.ID, err)
		}
	}
	if r.Payload == nil {
		r.Payload = model.Payload{}
	}

	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*model.Record, error) {
	var records []*model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// payloadBytes encodes a payload for a JSONB column. A nil payload is
// stored as an empty object, never as SQL NULL.
func payloadBytes(p model.Payload) ([]byte, error) {
	if p == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(p)
}
