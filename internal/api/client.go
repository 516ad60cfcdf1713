package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/logging"
)

const (
	// rotatedTokenHeader carries a replacement bearer token on any response.
	rotatedTokenHeader = "X-New-Access-Token"
	requestIDHeader    = "X-Request-ID"

	// StatusSessionInvalid is the distinguished status the backend returns
	// when the session token is no longer accepted.
	StatusSessionInvalid = 498

	defaultTimeout = 100 * time.Second
)

// HTTPDoer describes the HTTP client used for backend calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenStore supplies and persists the session bearer token.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for backend calls.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.doer = doer }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.WithComponent(logger, "api") }
}

// WithTimeout overrides the per-request ceiling used by the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithSessionInvalidHandler registers the callback fired when the backend
// reports the session token invalid. The token is already cleared when the
// handler runs.
func WithSessionInvalidHandler(fn func()) Option {
	return func(c *Client) { c.onSessionInvalid = fn }
}

// Client issues authenticated requests against the ClipForge backend.
//
// Every outbound request attaches the bearer token from the token store;
// every response is inspected for a rotated token, which is persisted before
// the caller sees the result. A session-invalid status clears the stored
// token and aborts with ErrAuth. No automatic retry is performed.
type Client struct {
	baseURL          string
	doer             HTTPDoer
	tokens           TokenStore
	logger           *slog.Logger
	timeout          time.Duration
	onSessionInvalid func()
}

// New constructs a Client for the given backend base URL.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:  tokens,
		logger:  logging.Nop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: c.timeout}
	}
	return c
}

// ProgressFunc observes transport-level body bytes written for one request.
type ProgressFunc func(sent, total int64)

// FilePart describes the binary part of a multipart form.
type FilePart struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Form is a multipart form payload.
type Form struct {
	Fields   map[string]string
	File     *FilePart
	Progress ProgressFunc
}

// GetJSON issues a GET with query parameters and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// PostJSON issues a POST with a JSON body and decodes the JSON response.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return Wrap(ErrValidation, path, "encode request body", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// PostForm issues a POST with a multipart form body and decodes the JSON
// response. When the form carries a progress callback it is invoked with the
// running byte count of the encoded body as the transport consumes it.
func (c *Client) PostForm(ctx context.Context, path string, form Form, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, value := range form.Fields {
		if err := writer.WriteField(field, value); err != nil {
			return Wrap(ErrValidation, path, "encode form field", err)
		}
	}
	if form.File != nil {
		part, err := writer.CreateFormFile(form.File.Field, form.File.Name)
		if err != nil {
			return Wrap(ErrValidation, path, "create form file", err)
		}
		if _, err := io.Copy(part, form.File.Reader); err != nil {
			return Wrap(ErrValidation, path, "read form file", err)
		}
	}
	if err := writer.Close(); err != nil {
		return Wrap(ErrValidation, path, "finalize form", err)
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if form.Progress != nil {
		body = &progressReader{reader: body, total: total, fn: form.Progress}
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total
	return c.do(req, out)
}

// Delete issues a DELETE with query parameters.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, Wrap(ErrValidation, path, "build request", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	path := req.URL.Path
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.doer.Do(req)
	if err != nil {
		return Wrap(ErrTransient, path, "request failed", err)
	}
	defer resp.Body.Close()

	if rotated := resp.Header.Get(rotatedTokenHeader); rotated != "" && c.tokens != nil {
		if err := c.tokens.SetToken(rotated); err != nil {
			c.logger.Warn("persist rotated token failed", "error", err)
		}
	}

	if resp.StatusCode == StatusSessionInvalid {
		if c.tokens != nil {
			_ = c.tokens.Clear()
		}
		if c.onSessionInvalid != nil {
			c.onSessionInvalid()
		}
		return Wrap(ErrAuth, path, "session token rejected", nil)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		message := readErrorMessage(resp.Body)
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return Wrap(markerForStatus(resp.StatusCode), path, message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Wrap(ErrTransient, path, "decode response", err)
	}
	return nil
}

// readErrorMessage extracts the backend's message or detail field, tolerating
// non-JSON bodies.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Detail
}

type progressReader struct {
	reader io.Reader
	total  int64
	sent   int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
