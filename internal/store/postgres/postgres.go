// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/alfredjeanlab/refdata/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateRecord(ctx context.Context, rec *model.Record) error {
	return queryCreateRecord(ctx, s.db, rec)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return queryGetRecord(ctx, s.db, id)
}

func (s *PostgresStore) ListRecords(ctx context.Context) ([]*model.Record, error) {
	return queryListRecords(ctx, s.db)
}

func (s *PostgresStore) ListRecordsByType(ctx context.Context, recordType string) ([]*model.Record, error) {
	return queryListRecordsByType(ctx, s.db, recordType)
}

func (s *PostgresStore) ListTypes(ctx context.Context) ([]string, error) {
	return queryListTypes(ctx, s.db)
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, id int64, name *string, payload model.Payload) (*model.Record, error) {
	return queryUpdateRecord(ctx, s.db, id, name, payload)
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, id int64) error {
	return queryDeleteRecord(ctx, s.db, id)
}

func (s *PostgresStore) RecordExists(ctx context.Context, recordType string, id int64) (bool, error) {
	return queryRecordExists(ctx, s.db, recordType, id)
}

func (s *PostgresStore) Version(ctx context.Context) (int64, error) {
	return queryVersion(ctx, s.db)
}

func (s *PostgresStore) BumpVersion(ctx context.Context) (int64, error) {
	return queryBumpVersion(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateRecord(ctx context.Context, rec *model.Record) error {
	return queryCreateRecord(ctx, s.tx, rec)
}

func (s *txStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return queryGetRecord(ctx, s.tx, id)
}

func (s *txStore) ListRecords(ctx context.Context) ([]*model.Record, error) {
	return queryListRecords(ctx, s.tx)
}

func (s *txStore) ListRecordsByType(ctx context.Context, recordType string) ([]*model.Record, error) {
	return queryListRecordsByType(ctx, s.tx, recordType)
}

func (s *txStore) ListTypes(ctx context.Context) ([]string, error) {
	return queryListTypes(ctx, s.tx)
}

func (s *txStore) UpdateRecord(ctx context.Context, id int64, name *string, payload model.Payload) (*model.Record, error) {
	return queryUpdateRecord(ctx, s.tx, id, name, payload)
}

func (s *txStore) DeleteRecord(ctx context.Context, id int64) error {
	return queryDeleteRecord(ctx, s.tx, id)
}

func (s *txStore) RecordExists(ctx context.Context, recordType string, id int64) (bool, error) {
	return queryRecordExists(ctx, s.tx, recordType, id)
}

func (s *txStore) Version(ctx context.Context) (int64, error) {
	return queryVersion(ctx, s.tx)
}

func (s *txStore) BumpVersion(ctx context.Context) (int64, error) {
	return queryBumpVersion(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
