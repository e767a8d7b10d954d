// Package submit posts assembled reports to a collection endpoint.
//
// A Client allows one submission in flight at a time: starting a new
// submission cancels the previous one, which then fails with ErrSuperseded.
// The response is treated as an opaque ok/status/payload triple plus an
// optional countryCode field.
package submit

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"

	"github.com/gogpu/gpucaps/internal/logging"
)

// DefaultEndpoint is the collection path used when none is configured.
const DefaultEndpoint = "/api/report"

// DigestHeader carries the hex BLAKE3 digest of the uncompressed body.
const DigestHeader = "X-Report-Digest"

const maxResponseBody = 1 << 20

var (
	// ErrSuperseded is returned when a newer submission cancels this one.
	ErrSuperseded = errors.New("submit: superseded")

	// ErrNoBackend is matched by a StatusError for HTTP 404.
	ErrNoBackend = errors.New("submit: no backend")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("submit: HTTP %d", e.Code)
}

// Unwrap returns ErrNoBackend for 404 responses.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNoBackend
	}
	return nil
}

// Result is the outcome of one submission. Status is zero when no response
// was received. Payload is the decoded JSON body, or the body text when the
// response is not JSON.
type Result struct {
	OK          bool   `json:"ok"`
	Status      int    `json:"status,omitempty"`
	Payload     any    `json:"payload,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// ServerStatus returns the payload's status field, or "ok".
func (r Result) ServerStatus() string {
	if m, ok := r.Payload.(map[string]any); ok {
		if s, ok := m["status"]; ok && s != nil {
			return fmt.Sprint(s)
		}
	}
	return "ok"
}

// Describe returns a short human-readable outcome.
func (r Result) Describe() string {
	switch {
	case r.OK:
		return "Uploaded: " + r.ServerStatus()
	case r.Status == http.StatusNotFound:
		return "(No backend)"
	case r.Status != 0:
		return fmt.Sprintf("Upload failed (HTTP %d)", r.Status)
	default:
		return "Upload failed (network error)"
	}
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	gzip       bool
	timeout    time.Duration
}

func defaultOptions() options {
	return options{
		httpClient: http.DefaultClient,
		timeout:    30 * time.Second,
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithGzip compresses request bodies.
func WithGzip(enabled bool) Option {
	return func(o *options) { o.gzip = enabled }
}

// WithTimeout bounds each submission. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Client submits reports to one endpoint.
type Client struct {
	endpoint string
	opts     options

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// New returns a Client posting to endpoint.
func New(endpoint string, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, opts: o}
}

// Endpoint returns the target URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Submit serializes report as JSON and posts it. Any submission still in
// flight is cancelled first. A non-2xx response yields a *StatusError
// alongside the populated Result.
func (c *Client) Submit(ctx context.Context, report any) (Result, error) {
	ctx, id := c.begin(ctx)
	defer c.end(id)

	body, err := json.Marshal(report)
	if err != nil {
		return Result{}, fmt.Errorf("submit: encode report: %w", err)
	}
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, body)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) {
			logging.Logger().Info("submit: superseded", "endpoint", c.endpoint)
			return Result{Payload: ErrSuperseded.Error()}, ErrSuperseded
		}
		logging.Logger().Warn("submit: request failed", "endpoint", c.endpoint, "err", err)
		return Result{Payload: err.Error()}, fmt.Errorf("submit: post: %w", err)
	}
	defer resp.Body.Close()

	r := Result{OK: resp.StatusCode >= 200 && resp.StatusCode < 300, Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		logging.Logger().Warn("submit: read response", "err", err)
	}
	r.Payload = decodePayload(resp.Header.Get("Content-Type"), raw)
	if m, ok := r.Payload.(map[string]any); ok {
		if cc, ok := m["countryCode"].(string); ok {
			r.CountryCode = cc
		}
	}

	if !r.OK {
		logging.Logger().Warn("submit: rejected", "endpoint", c.endpoint, "status", r.Status)
		return r, &StatusError{Code: r.Status, Body: string(raw)}
	}
	logging.Logger().Info("submit: report submitted", "endpoint", c.endpoint,
		"status", r.Status, "bytes", len(body))
	return r, nil
}

func (c *Client) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	sum := blake3.Sum256(body)
	payload := body
	if c.opts.gzip {
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		if err != nil {
			return nil, fmt.Errorf("submit: gzip: %w", err)
		}
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("submit: gzip: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("submit: gzip: %w", err)
		}
		payload = buf.Bytes()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("submit: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DigestHeader, hex.EncodeToString(sum[:]))
	if c.opts.gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	return req, nil
}

// begin cancels the previous submission and registers a new one.
func (c *Client) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancelCause(parent)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel(ErrSuperseded)
	}
	c.seq++
	c.cancel = cancel
	return ctx, c.seq
}

func (c *Client) end(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == id && c.cancel != nil {
		c.cancel(context.Canceled)
		c.cancel = nil
	}
}

func decodePayload(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/json" {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		return v
	}
	return string(raw)
}
