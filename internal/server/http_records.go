package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleGetVersion handles GET /v1/records/version.
func (s *RegistryServer) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	version, err := s.getVersion(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": version})
}

// handleGetAll handles GET /v1/records.
func (s *RegistryServer) handleGetAll(w http.ResponseWriter, r *http.Request) {
	version, byType, err := s.getAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":     version,
		"itemsByType": byType,
	})
}

// handleListTypes handles GET /v1/records/types.
func (s *RegistryServer) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.listTypes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": types})
}

// handleGetByType handles GET /v1/records/type/{type}.
func (s *RegistryServer) handleGetByType(w http.ResponseWriter, r *http.Request) {
	items, err := s.getByType(r.Context(), r.PathValue("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleGetRecord handles GET /v1/records/{id}.
func (s *RegistryServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := s.getByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

// handleCreateRecord handles POST /v1/records. The body carries type and
// name alongside arbitrary payload fields; the reserved keys are stripped
// from the payload before persistence.
func (s *RegistryServer) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	recordType, _ := body["type"].(string)
	name, _ := body["name"].(string)

	rec, err := s.createRecord(r.Context(), createRecordInput{
		Type:    recordType,
		Name:    name,
		Payload: body,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"item": rec.ViewWithType()})
}

// handleUpdateRecord handles PATCH /v1/records/{id}. The body carries an
// optional name plus arbitrary payload fields to merge into the existing
// payload.
func (s *RegistryServer) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var name *string
	if raw, present := body["name"]; present {
		// A non-string name still fails the non-empty check downstream.
		str, _ := raw.(string)
		name = &str
	}

	rec, err := s.updateRecord(r.Context(), id, name, body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"item": rec.ViewWithType()})
}

// handleDeleteRecord handles DELETE /v1/records/{id}.
func (s *RegistryServer) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.deleteRecord(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return 0, false
	}
	return id, true
}
