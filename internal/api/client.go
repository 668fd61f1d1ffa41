package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tracker-makedarun/internal/config"
	"tracker-makedarun/internal/store"
	"tracker-makedarun/internal/track"
)

// Run is a run record as returned by the backend.
type Run struct {
	ID        string  `json:"_id"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
	Pace      float64 `json:"pace,omitempty"`
	Date      string  `json:"date"`
	Location  string  `json:"location,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Client is the thin HTTP boundary to the run backend. The bearer token is
// read from the durable store on every call.
type Client struct {
	baseURL string
	http    *http.Client
	kv      store.KV
}

func NewClient(cfg config.Config, kv store.KV) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		kv:      kv,
	}
}

// CreateRun validates locally, then submits the record. Error types:
// *ValidationError before any network traffic, *NetworkError on transport
// failure, *ServerError on a non-2xx response.
func (c *Client) CreateRun(ctx context.Context, rec track.RunRecord) (Run, error) {
	if err := ValidateRun(rec); err != nil {
		return Run{}, err
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return Run{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/runs", bytes.NewReader(body))
	if err != nil {
		return Run{}, err
	}
	c.setHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Run{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Run{}, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Run{}, &ServerError{Status: resp.StatusCode, Message: serverMessage(payload)}
	}

	var created Run
	if err := json.Unmarshal(payload, &created); err != nil {
		return Run{}, &ServerError{Status: resp.StatusCode, Message: fmt.Sprintf("invalid JSON response: %.100s", payload)}
	}
	return created, nil
}

// UserRuns fetches the caller's run history.
func (c *Client) UserRuns(ctx context.Context) ([]Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/runs/myruns", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{Status: resp.StatusCode, Message: serverMessage(payload)}
	}

	var runs []Run
	if err := json.Unmarshal(payload, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *Client) DeleteRun(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/runs/"+id, nil)
	if err != nil {
		return err
	}
	c.setHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return &ServerError{Status: resp.StatusCode, Message: serverMessage(payload)}
	}
	return nil
}

// TestConnection reports whether the backend is reachable. 4xx still counts
// as reachable; only transport failures and 5xx do not.
func (c *Client) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/test", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < 500
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if token := c.authToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func serverMessage(payload []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(payload)
}

var errNoStore = errors.New("api: no token store configured")
