package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header; when adminToken is non-empty,
// write endpoints additionally require the admin token.
func (s *RegistryServer) NewHTTPHandler(authToken, adminToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/records/version", s.handleGetVersion)
	mux.HandleFunc("GET /v1/records", s.handleGetAll)
	mux.HandleFunc("GET /v1/records/types", s.handleListTypes)
	mux.HandleFunc("GET /v1/records/type/{type}", s.handleGetByType)
	mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)
	mux.HandleFunc("POST /v1/records", s.handleCreateRecord)
	mux.HandleFunc("PATCH /v1/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /v1/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var handler http.Handler = mux
	handler = AuthMiddleware(authToken, adminToken, handler)
	handler = LogMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// handleHealth handles GET /v1/health.
func (s *RegistryServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps coordinator errors to HTTP responses: inputError to
// 400 {"error"}, validation failures to 400 {"errors": [...]}, missing rows
// to 404, everything else to a logged 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	var ie inputError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, ie.Error())
		return
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": ve.Errors})
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
