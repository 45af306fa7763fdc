package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// HTTPClient implements RegistryClient using the refdata HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// itemResponse wraps the single-record envelope used by the write and
// by-id endpoints.
type itemResponse struct {
	Item model.View `json:"item"`
}

// --- Record CRUD ---

func (c *HTTPClient) CreateRecord(ctx context.Context, recordType, name string, payload model.Payload) (model.View, error) {
	body := model.Payload{}
	for k, v := range payload {
		body[k] = v
	}
	body["type"] = recordType
	body["name"] = name

	var resp itemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/records", body, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id int64) (model.View, error) {
	var resp itemResponse
	if err := c.doJSON(ctx, http.MethodGet, recordPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, id int64, name *string, patch model.Payload) (model.View, error) {
	body := model.Payload{}
	for k, v := range patch {
		body[k] = v
	}
	if name != nil {
		body["name"] = *name
	}

	var resp itemResponse
	if err := c.doJSON(ctx, http.MethodPatch, recordPath(id), body, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

// --- Listings ---

func (c *HTTPClient) GetAll(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/v1/records", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) ListByType(ctx context.Context, recordType string) ([]model.View, error) {
	var resp struct {
		Items []model.View `json:"items"`
	}
	path := "/v1/records/type/" + url.PathEscape(recordType)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *HTTPClient) ListTypes(ctx context.Context) ([]string, error) {
	var resp struct {
		Types []string `json:"types"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/records/types", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Types, nil
}

// --- Version counter ---

func (c *HTTPClient) Version(ctx context.Context) (int64, error) {
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/records/version", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

func recordPath(id int64) string {
	return "/v1/records/" + strconv.FormatInt(id, 10)
}

// APIError represents an error response from the server. Validation
// failures carry the full field-level error list in Errors.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the error is a 404 from the server.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content carries no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string   `json:"error"`
			Errors []string `json:"errors"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && (errResp.Error != "" || len(errResp.Errors) > 0) {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Errors: errResp.Errors}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
