package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTP talks to the analysis backend. All paths are resolved against base.
type HTTP struct {
	c       *http.Client
	base    string
	timeout time.Duration
}

// NewHTTP builds a client whose JSON calls are bounded by timeout. Uploads
// are not: streaming a large video may take far longer, so only the wait for
// the backend's response headers is bounded.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	return &HTTP{
		c:       &http.Client{Transport: tr},
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// BaseURL reports the backend root this client was built for.
func (h *HTTP) BaseURL() string { return h.base }

func (h *HTTP) url(path string) string { return h.base + path }

// errorBody is what the backend sends alongside a non-2xx status.
type errorBody struct {
	Error string `json:"error"`
}

// readFailure turns a non-2xx response into a short description, preferring
// the backend's own {"error": ...} message.
func readFailure(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		return fmt.Sprintf("%s: %s", resp.Status, eb.Error)
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return fmt.Sprintf("%s: %s", resp.Status, s)
	}
	return resp.Status
}

func ok(code int) bool { return code >= 200 && code < 300 }

// getJSON issues a GET and decodes a 2xx body into out. On a non-2xx reply it
// returns the status code and a description; transport failures return 0.
func (h *HTTP) getJSON(ctx context.Context, path string, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url(path), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return resp.StatusCode, errors.New(readFailure(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode: %w", err)
	}
	return resp.StatusCode, nil
}
