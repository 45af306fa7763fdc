package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/alfredjeanlab/refdata/internal/events"
	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/alfredjeanlab/refdata/internal/schema"
	"github.com/alfredjeanlab/refdata/internal/store"
)

type mockStore struct {
	records map[int64]*model.Record
	nextID  int64
	version int64

	// bumpErr, when non-nil, is returned by BumpVersion (for testing rollback).
	bumpErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		records: make(map[int64]*model.Record),
	}
}

func (m *mockStore) CreateRecord(_ context.Context, rec *model.Record) error {
	m.nextID++
	now := time.Now().UTC()
	rec.ID = m.nextID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	clone := *rec
	m.records[rec.ID] = &clone
	return nil
}

func (m *mockStore) GetRecord(_ context.Context, id int64) (*model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *rec
	return &clone, nil
}

func (m *mockStore) ListRecords(_ context.Context) ([]*model.Record, error) {
	var result []*model.Record
	for _, rec := range m.records {
		clone := *rec
		result = append(result, &clone)
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
		if rec.Type != recordType {
			continue
		}
		clone := *rec
		result = append(result, &clone)
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
	rec.UpdatedAt = time.Now().UTC()
	clone := *rec
	return &clone, nil
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
	if m.bumpErr != nil {
		return 0, m.bumpErr
	}
	m.version++
	return m.version, nil
}

// RunInTransaction snapshots the store and restores it when fn fails, so
// rollback semantics hold in tests.
func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	savedRecords := make(map[int64]*model.Record, len(m.records))
	for id, rec := range m.records {
		clone := *rec
		savedRecords[id] = &clone
	}
	savedVersion, savedNextID := m.version, m.nextID

	if err := fn(m); err != nil {
		m.records = savedRecords
		m.version = savedVersion
		m.nextID = savedNextID
		return err
	}
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

// newTestServer returns a fresh server with no rule sets, its mock store,
// and an unauthenticated HTTP handler.
func newTestServer() (*RegistryServer, *mockStore, http.Handler) {
	return newTestServerWithRules(nil)
}

// newTestServerWithRules is newTestServer with a rule-set registry.
func newTestServerWithRules(rules map[string]*model.RuleSet) (*RegistryServer, *mockStore, http.Handler) {
	ms := newMockStore()
	s := NewRegistryServer(ms, schema.NewRegistry(rules), &events.NoopPublisher{})
	return s, ms, s.NewHTTPHandler("", "")
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// requireStatus asserts the recorder has the expected HTTP status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

// decodeJSON decodes the recorder's response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandleHTTPErrors(t *testing.T) {
	for _, tc := range []struct {
		name      string
		method    string
		path      string
		body      any
		code      int
		wantError string
	}{
		{"CreateRecord/MissingType", "POST", "/v1/records", map[string]any{"name": "x"}, 400, "Type is required"},
		{"CreateRecord/MissingName", "POST", "/v1/records", map[string]any{"type": "COST_TYPE"}, 400, "Name is required"},
		{"CreateRecord/BlankName", "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "  "}, 400, "Name is required"},
		{"CreateRecord/NonStringType", "POST", "/v1/records", map[string]any{"type": 7, "name": "x"}, 400, "Type is required"},
		{"GetRecord/NotFound", "GET", "/v1/records/999", nil, 404, "record not found"},
		{"GetRecord/BadID", "GET", "/v1/records/abc", nil, 400, "invalid record id"},
		{"UpdateRecord/NotFound", "PATCH", "/v1/records/999", map[string]any{"name": "x"}, 404, "record not found"},
		{"DeleteRecord/NotFound", "DELETE", "/v1/records/999", nil, 404, "record not found"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, h := newTestServer()
			rec := doJSON(t, h, tc.method, tc.path, tc.body)
			requireStatus(t, rec, tc.code)
			if tc.wantError != "" {
				var body map[string]string
				decodeJSON(t, rec, &body)
				if body["error"] != tc.wantError {
					t.Fatalf("expected error=%q, got %q", tc.wantError, body["error"])
				}
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/health", nil)
	requireStatus(t, rec, 200)
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %q", body["status"])
	}
}

func TestHandleCreateRecord(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/records", map[string]any{
		"type": "COST_TYPE", "name": "Fuel", "code": "FT-1", "active": true,
	})
	requireStatus(t, rec, 201)

	var result struct {
		Item map[string]any `json:"item"`
	}
	decodeJSON(t, rec, &result)
	if result.Item["id"] != float64(1) {
		t.Fatalf("expected id=1, got %v", result.Item["id"])
	}
	if result.Item["type"] != "COST_TYPE" || result.Item["name"] != "Fuel" {
		t.Fatalf("got type=%v name=%v", result.Item["type"], result.Item["name"])
	}
	// Payload fields are spliced into the top-level view.
	if result.Item["code"] != "FT-1" || result.Item["active"] != true {
		t.Fatalf("expected payload fields in view, got %v", result.Item)
	}
	if _, ok := result.Item["createdAt"]; !ok {
		t.Fatal("expected createdAt in view")
	}
}

func TestHandleCreateRecordTrimsInput(t *testing.T) {
	_, ms, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "  COST_TYPE  ", "name": " Fuel "})
	requireStatus(t, rec, 201)
	stored := ms.records[1]
	if stored.Type != "COST_TYPE" || stored.Name != "Fuel" {
		t.Fatalf("expected trimmed type/name, got %q/%q", stored.Type, stored.Name)
	}
}

func TestHandleGetAll(t *testing.T) {
	_, _, h := newTestServer()
	for _, body := range []map[string]any{
		{"type": "COST_TYPE", "name": "Fuel"},
		{"type": "COST_TYPE", "name": "Tolls"},
		{"type": "CURRENCY", "name": "EUR"},
	} {
		requireStatus(t, doJSON(t, h, "POST", "/v1/records", body), 201)
	}

	rec := doJSON(t, h, "GET", "/v1/records", nil)
	requireStatus(t, rec, 200)

	var result struct {
		Version     int64                       `json:"version"`
		ItemsByType map[string][]map[string]any `json:"itemsByType"`
	}
	decodeJSON(t, rec, &result)
	if result.Version != 3 {
		t.Fatalf("expected version=3, got %d", result.Version)
	}
	if len(result.ItemsByType) != 2 {
		t.Fatalf("expected 2 type groups, got %d", len(result.ItemsByType))
	}
	if got := len(result.ItemsByType["COST_TYPE"]); got != 2 {
		t.Fatalf("expected 2 COST_TYPE items, got %d", got)
	}
	if result.ItemsByType["COST_TYPE"][0]["name"] != "Fuel" {
		t.Fatalf("expected name-ordered items, got %v", result.ItemsByType["COST_TYPE"])
	}
}

func TestHandleGetByType(t *testing.T) {
	_, _, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "CURRENCY", "name": "USD"}), 201)
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "CURRENCY", "name": "EUR"}), 201)
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "Fuel"}), 201)

	rec := doJSON(t, h, "GET", "/v1/records/type/CURRENCY", nil)
	requireStatus(t, rec, 200)

	var result struct {
		Items []map[string]any `json:"items"`
	}
	decodeJSON(t, rec, &result)
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0]["name"] != "EUR" || result.Items[1]["name"] != "USD" {
		t.Fatalf("expected name-ordered items, got %v", result.Items)
	}
	// Views for a type-scoped listing carry no type key.
	if _, ok := result.Items[0]["type"]; ok {
		t.Fatalf("expected no type key in type-scoped view, got %v", result.Items[0])
	}
}

func TestHandleGetByTypeEmpty(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/records/type/NOTHING", nil)
	requireStatus(t, rec, 200)
	var result struct {
		Items []map[string]any `json:"items"`
	}
	decodeJSON(t, rec, &result)
	if result.Items == nil || len(result.Items) != 0 {
		t.Fatalf("expected empty (non-null) items, got %v", result.Items)
	}
}

func TestHandleListTypes(t *testing.T) {
	_, _, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "CURRENCY", "name": "USD"}), 201)
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "Fuel"}), 201)

	rec := doJSON(t, h, "GET", "/v1/records/types", nil)
	requireStatus(t, rec, 200)
	var result struct {
		Types []string `json:"types"`
	}
	decodeJSON(t, rec, &result)
	if len(result.Types) != 2 || result.Types[0] != "COST_TYPE" || result.Types[1] != "CURRENCY" {
		t.Fatalf("expected ascending distinct types, got %v", result.Types)
	}
}

func TestHandleGetVersion(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "GET", "/v1/records/version", nil)
	requireStatus(t, rec, 200)
	var result struct {
		Version int64 `json:"version"`
	}
	decodeJSON(t, rec, &result)
	if result.Version != 0 {
		t.Fatalf("expected version=0 on empty store, got %d", result.Version)
	}

	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "CURRENCY", "name": "USD"}), 201)

	rec = doJSON(t, h, "GET", "/v1/records/version", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)
	if result.Version != 1 {
		t.Fatalf("expected version=1 after one mutation, got %d", result.Version)
	}
}

func TestHandleUpdateRecord(t *testing.T) {
	_, ms, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{
		"type": "COST_TYPE", "name": "Fuel", "code": "FT-1", "active": true,
	}), 201)

	rec := doJSON(t, h, "PATCH", "/v1/records/1", map[string]any{"code": "FT-2"})
	requireStatus(t, rec, 200)

	var result struct {
		Item map[string]any `json:"item"`
	}
	decodeJSON(t, rec, &result)
	if result.Item["code"] != "FT-2" {
		t.Fatalf("expected patched code, got %v", result.Item["code"])
	}
	// Untouched keys survive the merge.
	if result.Item["active"] != true {
		t.Fatalf("expected untouched keys to survive, got %v", result.Item)
	}
	if result.Item["name"] != "Fuel" {
		t.Fatalf("expected name unchanged, got %v", result.Item["name"])
	}
	if ms.version != 2 {
		t.Fatalf("expected version=2 after create+update, got %d", ms.version)
	}
}

func TestHandleUpdateRecordRename(t *testing.T) {
	_, _, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "Fuel"}), 201)

	rec := doJSON(t, h, "PATCH", "/v1/records/1", map[string]any{"name": "Fuel & Oil"})
	requireStatus(t, rec, 200)
	var result struct {
		Item map[string]any `json:"item"`
	}
	decodeJSON(t, rec, &result)
	if result.Item["name"] != "Fuel & Oil" {
		t.Fatalf("expected renamed record, got %v", result.Item["name"])
	}
}

func TestHandleUpdateRecordBlankName(t *testing.T) {
	_, _, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "Fuel"}), 201)

	for _, name := range []any{"", "   ", 7, nil} {
		rec := doJSON(t, h, "PATCH", "/v1/records/1", map[string]any{"name": name})
		requireStatus(t, rec, 400)
		var body struct {
			Errors []string `json:"errors"`
		}
		decodeJSON(t, rec, &body)
		if len(body.Errors) != 1 || body.Errors[0] != "Name must be a non-empty string" {
			t.Fatalf("name=%v: expected name error, got %v", name, body.Errors)
		}
	}
}

func TestHandleDeleteRecord(t *testing.T) {
	_, ms, h := newTestServer()
	requireStatus(t, doJSON(t, h, "POST", "/v1/records", map[string]any{"type": "COST_TYPE", "name": "Fuel"}), 201)

	requireStatus(t, doJSON(t, h, "DELETE", "/v1/records/1", nil), 204)
	requireStatus(t, doJSON(t, h, "GET", "/v1/records/1", nil), 404)
	requireStatus(t, doJSON(t, h, "DELETE", "/v1/records/1", nil), 404)

	if ms.version != 2 {
		t.Fatalf("expected version=2 after create+delete, got %d", ms.version)
	}
}

func TestHandleCreateRecordValidationErrors(t *testing.T) {
	rules := map[string]*model.RuleSet{
		"INVOICE_CONCEPT": {Fields: []model.FieldRule{
			{Name: "description", Kind: model.KindString, Required: true},
			{Name: "amount", Kind: model.KindNumber},
		}},
	}
	_, _, h := newTestServerWithRules(rules)

	rec := doJSON(t, h, "POST", "/v1/records", map[string]any{
		"type": "INVOICE_CONCEPT", "name": "Freight", "amount": "not-a-number",
	})
	requireStatus(t, rec, 400)

	var body struct {
		Errors []string `json:"errors"`
	}
	decodeJSON(t, rec, &body)
	want := []string{"Field 'description' is required", "Field 'amount' must be a number"}
	if len(body.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), body.Errors)
	}
	for i := range want {
		if body.Errors[i] != want[i] {
			t.Fatalf("expected errors[%d]=%q, got %q", i, want[i], body.Errors[i])
		}
	}
}
