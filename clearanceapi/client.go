package clearanceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrTransport marks failures where no usable answer came back: the API was
// unreachable, timed out, or replied with something other than JSON.
var ErrTransport = errors.New("clearance API unavailable")

// APIError is a non-2xx reply carrying a structured error payload
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("clearance API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("clearance API returned status %d: %s", e.StatusCode, e.Message)
}

// Multipart is an encoded multipart/form-data body
type Multipart interface {
	Reader() io.Reader
	ContentType() string
}

const maxResponseBytes = 10 << 20

var apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clearance_api_requests_total",
	Help: "Calls made to the clearance REST API, by operation and outcome.",
}, []string{"op", "outcome"})

// Client talks to the clearance REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// call describes one request to the API
type call struct {
	op          string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonCall(op, method, path, token string, payload any) (call, error) {
	c := call{op: op, method: method, path: path, token: token}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return c, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		c.body = bytes.NewReader(data)
		c.contentType = "application/json"
	}
	return c, nil
}

// do performs the call and returns the raw 2xx body
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cl.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiRequests.WithLabelValues(cl.op, "transport").Inc()
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		apiRequests.WithLabelValues(cl.op, "transport").Inc()
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrTransport, cl.method, cl.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, ok := errorMessage(data)
		if !ok {
			apiRequests.WithLabelValues(cl.op, "transport").Inc()
			log.Printf("Clearance API %s %s returned status %d: %s", cl.method, cl.path, resp.StatusCode, truncate(data, 200))
			return nil, fmt.Errorf("%w: %s %s returned status %d", ErrTransport, cl.method, cl.path, resp.StatusCode)
		}
		apiRequests.WithLabelValues(cl.op, "error").Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	apiRequests.WithLabelValues(cl.op, "ok").Inc()
	return data, nil
}

// doJSON performs the call and decodes the reply into out when out is non-nil
func (c *Client) doJSON(ctx context.Context, cl call, out any) error {
	data, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrTransport, cl.method, cl.path, err)
	}
	return nil
}

// doList decodes either a bare JSON array or an object wrapping one under
// "results" or "data".
func (c *Client) doList(ctx context.Context, cl call, out any) error {
	data, err := c.do(ctx, cl)
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return fmt.Errorf("%w: decoding %s %s: %v", ErrTransport, cl.method, cl.path, err)
		}
		for _, key := range []string{"results", "data"} {
			if inner, ok := wrapper[key]; ok {
				trimmed = inner
				break
			}
		}
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("[]")
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrTransport, cl.method, cl.path, err)
	}
	return nil
}

// errorMessage extracts the user-facing text of an error payload. It
// reports false when the body is not JSON at all.
func errorMessage(data []byte) (string, bool) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", false
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return flatten(payload), true
	}

	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := obj[key]; ok {
			if msg := flatten(v); msg != "" {
				return msg, true
			}
		}
	}

	// Field errors such as {"email": ["Enter a valid email address."]}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := flatten(obj[k]); msg != "" {
			return fmt.Sprintf("%s: %s", k, msg), true
		}
	}

	return "", true
}

func flatten(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		msg, _ := errorMessage(mustJSON(val))
		return msg
	}
	return ""
}

func mustJSON(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
