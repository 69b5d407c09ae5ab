// Package remoteclient implements the remote adapter against the
// qn-sync HTTP API. It owns the mapping from HTTP outcomes to the
// engine's error classes: transport failures and server errors are
// transient, a 404 on update means the record vanished.
package remoteclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/remote"
)

// ErrUnauthorized indicates a rejected auth key. It is not transient:
// retrying without a new key will never succeed.
var ErrUnauthorized = errors.New("unauthorized")

// Client talks to a qn-sync server. It implements remote.Adapter.
type Client struct {
	BaseURL  string
	AuthKey  string
	DeviceID string
	HTTP     *http.Client
}

var _ remote.Adapter = (*Client)(nil)

// New creates a client for the given server.
func New(baseURL, authKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		AuthKey:  authKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "GET", "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Insert stores a new record on the server. The server treats insert
// as an upsert by id, so a replayed drain after a crash converges
// instead of erroring.
func (c *Client) Insert(ctx context.Context, rec *models.NoteRecord) error {
	return c.do(ctx, "POST", "/v1/notes", rec, nil)
}

// Update replaces an existing record. Returns remote.ErrNotFound when
// the record no longer exists on the server.
func (c *Client) Update(ctx context.Context, rec *models.NoteRecord) error {
	return c.do(ctx, "PUT", "/v1/notes/"+rec.ID, rec, nil)
}

// Delete removes a record. Deleting an id the server has never seen is
// not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/notes/"+id, nil, nil)
}

// FetchAll returns the server's full record set.
func (c *Client) FetchAll(ctx context.Context) ([]models.NoteRecord, error) {
	var recs []models.NoteRecord
	if err := c.do(ctx, "GET", "/v1/notes", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Dial failures, timeouts, resets: all transient from the
		// engine's point of view.
		return fmt.Errorf("%w: %v", remote.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", remote.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		haveBody := json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != ""
		switch {
		case resp.StatusCode == http.StatusNotFound:
			if haveBody {
				return fmt.Errorf("%w: %s", remote.ErrNotFound, apiErr.Message)
			}
			return remote.ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			if haveBody {
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			}
			return ErrUnauthorized
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: HTTP %d", remote.ErrRemoteUnavailable, resp.StatusCode)
		case haveBody:
			return &apiErr
		default:
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
