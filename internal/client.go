package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BackendStatus is the tri-state connectivity indicator set by the health
// probe. It gates whether new submissions are allowed.
type BackendStatus int

const (
	StatusChecking BackendStatus = iota
	StatusConnected
	StatusError
)

func (s BackendStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "checking"
	}
}

// DefaultRequestTimeout bounds one backend round trip. The pipeline behind
// /query/advanced runs seven steps with LLM calls, so this is generous.
const DefaultRequestTimeout = 60 * time.Second

// QueryOptions are the recognized backend configuration knobs. Zero values
// are omitted from the request body so server-side defaults apply.
type QueryOptions struct {
	PerTermK        int
	WholeQueryK     int
	CallGemini      *bool
	MaxRetries      int
	ChartPreference string
}

func (o QueryOptions) payload() map[string]any {
	opts := map[string]any{}
	if o.PerTermK > 0 {
		opts["per_term_k"] = o.PerTermK
	}
	if o.WholeQueryK > 0 {
		opts["whole_query_k"] = o.WholeQueryK
	}
	if o.CallGemini != nil {
		opts["call_gemini"] = *o.CallGemini
	}
	if o.MaxRetries > 0 {
		opts["max_retries"] = o.MaxRetries
	}
	if o.ChartPreference != "" {
		opts["chart_preference"] = o.ChartPreference
	}
	return opts
}

// Client talks to the query-generation backend. It issues exactly one
// request per submission and never retries client-side; all retry and
// correction logic is server-side and already reflected in the payload.
type Client struct {
	baseURL string
	legacy  bool
	http    *http.Client
	norm    *Normalizer
}

// NewClient creates a backend client. A non-positive timeout falls back to
// the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		norm:    NewNormalizer(baseURL),
	}
}

// UseLegacy switches the client to the older /query endpoint and its flat
// request body.
func (c *Client) UseLegacy(legacy bool) {
	c.legacy = legacy
}

// Normalizer exposes the client's normalizer, mainly for UIs that need the
// same fallback strings.
func (c *Client) Normalizer() *Normalizer {
	return c.norm
}

// Ask submits one question and returns exactly one assistant message. It
// never returns an error: transport failures, non-JSON bodies and
// backend-reported failures all normalize to a message, so the user is
// never left without a reply.
func (c *Client) Ask(ctx context.Context, query string, opts QueryOptions) Message {
	body, url := c.buildRequest(query, opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		LogError("build query request: %v", err)
		return c.norm.TransportFailure()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		LogError("query backend: %v", err)
		return c.norm.TransportFailure()
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		LogError("read backend response: %v", err)
		return c.norm.TransportFailure()
	}

	// Both backend generations return their failure envelope as JSON on
	// non-2xx statuses; those normalize like any other turn. Only an
	// undecodable body is treated as a connectivity failure.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		LogWarn("backend returned %d for query", resp.StatusCode)
	}
	return c.norm.Normalize(data)
}

func (c *Client) buildRequest(query string, opts QueryOptions) ([]byte, string) {
	if c.legacy {
		payload := map[string]any{"query": query}
		for k, v := range opts.payload() {
			payload[k] = v
		}
		body, _ := json.Marshal(payload)
		return body, c.baseURL + "/query"
	}

	payload := map[string]any{"query": query}
	if opts := opts.payload(); len(opts) > 0 {
		payload["options"] = opts
	}
	body, _ := json.Marshal(payload)
	return body, c.baseURL + "/query/advanced"
}

// Health probes GET /health once. A 2xx maps to StatusConnected, anything
// else to StatusError.
func (c *Client) Health(ctx context.Context) (BackendStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return StatusError, &BackendError{URL: c.baseURL, Op: "health", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusError, &BackendError{URL: c.baseURL, Op: "health", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusError, &BackendError{
			URL: c.baseURL,
			Op:  "health",
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return StatusConnected, nil
}
