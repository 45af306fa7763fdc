package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alfredjeanlab/refdata/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.Counter != 0 || h.RecordCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithRecords(t *testing.T) {
	ms := newMockStore()
	ms.version = 5

	// Insert out of order to verify the (type, name) export ordering.
	ms.add("CURRENCY", "USD", model.Payload{"symbol": "$"})
	ms.add("COST_TYPE", "Tolls", nil)
	ms.add("COST_TYPE", "Fuel", model.Payload{"code": "FT-1"})

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	// 1 header + 3 records
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Counter != 5 || h.RecordCount != 3 {
		t.Fatalf("header counts: counter=%d records=%d", h.Counter, h.RecordCount)
	}

	var got []model.Record
	for i, raw := range lines[1:] {
		var l struct {
			Type string       `json:"type"`
			Data model.Record `json:"data"`
		}
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		if l.Type != "record" {
			t.Fatalf("expected record type, got %q", l.Type)
		}
		got = append(got, l.Data)
	}

	wantNames := []string{"Fuel", "Tolls", "USD"}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Fatalf("expected order %v, got %q at %d", wantNames, got[i].Name, i)
		}
	}
	if got[0].Payload["code"] != "FT-1" {
		t.Fatalf("expected payload preserved, got %v", got[0].Payload)
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
