package sync

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/alfredjeanlab/refdata/internal/store"
)

// mockStore is a minimal in-memory store.Store for sync tests.
type mockStore struct {
	records map[int64]*model.Record
	nextID  int64
	version int64
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[int64]*model.Record)}
}

func (m *mockStore) add(recordType, name string, payload model.Payload) *model.Record {
	m.nextID++
	now := time.Now().UTC()
	rec := &model.Record{
		ID: m.nextID, Type: recordType, Name: name, Payload: payload,
		CreatedAt: now, UpdatedAt: now,
	}
	m.records[rec.ID] = rec
	return rec
}

func (m *mockStore) CreateRecord(_ context.Context, rec *model.Record) error {
	m.nextID++
	rec.ID = m.nextID
	m.records[rec.ID] = rec
	return nil
}

func (m *mockStore) GetRecord(_ context.Context, id int64) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rec, nil
}

func (m *mockStore) ListRecords(_ context.Context) ([]*model.Record, error) {
	var result []*model.Record
	for _, rec := range m.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockStore) ListRecordsByType(_ context.Context, recordType string) ([]*model.Record, error) {
	var result []*model.Record
	for _, rec := range m.records {
		if rec.Type == recordType {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStore) ListTypes(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, rec := range m.records {
		seen[rec.Type] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func (m *mockStore) UpdateRecord(_ context.Context, id int64, name *string, payload model.Payload) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if name != nil {
		rec.Name = *name
	}
	rec.Payload = payload
	return rec, nil
}

func (m *mockStore) DeleteRecord(_ context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func (m *mockStore) RecordExists(_ context.Context, recordType string, id int64) (bool, error) {
	rec, ok := m.records[id]
	return ok && rec.Type == recordType, nil
}

func (m *mockStore) Version(_ context.Context) (int64, error) {
	return m.version, nil
}

func (m *mockStore) BumpVersion(_ context.Context) (int64, error) {
	m.version++
	return m.version, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
