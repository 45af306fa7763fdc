package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// recordColumns is the column list used for SELECT statements on the records table.
const recordColumns = `id, type, name, payload, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateRecord(ctx context.Context, db executor, r *model.Record) error {
	payload, err := payloadBytes(r.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO records (type, name, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		strings.TrimSpace(r.Type),
		strings.TrimSpace(r.Name),
		payload,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func queryGetRecord(ctx context.Context, db executor, id int64) (*model.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	return scanRecord(row)
}

func queryListRecords(ctx context.Context, db executor) ([]*model.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		ORDER BY type ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func queryListRecordsByType(ctx context.Context, db executor, recordType string) ([]*model.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		WHERE type = $1
		ORDER BY name ASC`, recordType)
	if err != nil {
		return nil, fmt.Errorf("list records by type: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func queryListTypes(ctx context.Context, db executor) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT type FROM records
		ORDER BY type ASC`)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func queryUpdateRecord(ctx context.Context, db executor, id int64, name *string, payload model.Payload) (*model.Record, error) {
	data, err := payloadBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var trimmed *string
	if name != nil {
		t := strings.TrimSpace(*name)
		trimmed = &t
	}
	row := db.QueryRowContext(ctx, `
		UPDATE records SET
			name = COALESCE($2, name),
			payload = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns,
		id, trimmed, data,
	)
	return scanRecord(row)
}

func queryDeleteRecord(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryRecordExists(ctx context.Context, db executor, recordType string, id int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM records WHERE type = $1 AND id = $2)`,
		recordType, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("record exists: %w", err)
	}
	return exists, nil
}

// queryVersion reads the global version counter, lazily creating the
// singleton row at 0. The ON CONFLICT DO NOTHING insert makes concurrent
// first reads race-safe: exactly one row ever exists.
func queryVersion(ctx context.Context, db executor) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT version FROM registry_version WHERE id = 1`).Scan(&version)
	if err == nil {
		return version, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("read version: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO registry_version (id, version) VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return 0, fmt.Errorf("init version: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT version FROM registry_version WHERE id = 1`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return version, nil
}

// queryBumpVersion increments the counter by exactly 1 as a single upsert,
// creating the row at 1 if no read ever initialized it. The row-level lock
// taken by the upsert serializes concurrent bumps so no increment is lost.
func queryBumpVersion(ctx context.Context, db executor) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO registry_version (id, version) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET version = registry_version.version + 1
		RETURNING version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("bump version: %w", err)
	}
	return version, nil
}
