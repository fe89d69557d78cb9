package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
	"go.uber.org/zap"
)

// Response is a fully read vendor response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues vendor requests with a fixed user agent. One Client belongs to
// exactly one test run.
type Client struct {
	http            *http.Client
	userAgent       string
	apiKey          string
	closeConnection bool
	logger          *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAPIKey attaches the key sent as a bearer token on authorized GETs.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithUserAgent overrides the default user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithConnectionClose disables keep-alive for every request.
func WithConnectionClose() Option {
	return func(c *Client) { c.closeConnection = true }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Client with sensible defaults.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: consts.DefaultHTTPTimeout},
		userAgent: consts.UserAgent,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the user agent sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// PostForm submits url-encoded form data.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, &sharedErrors.TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// PostJSON submits payload encoded as a JSON document.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &sharedErrors.TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// PostMultipart uploads the file at path under fileField along with the form fields.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, fields url.Values, fileField, path string) (*Response, error) {
	f, err := os.Open(path) // #nosec G304 -- the operator chooses which local app to upload.
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				return nil, fmt.Errorf("write form field %s: %w", key, err)
			}
		}
	}
	part, err := mw.CreateFormFile(fileField, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &sharedErrors.TransportError{Op: http.MethodPost, URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// Get fetches endpoint. When authorized is set and an API key is configured,
// it is sent as a bearer token.
func (c *Client) Get(ctx context.Context, endpoint string, authorized bool) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &sharedErrors.TransportError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	if authorized && c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.closeConnection {
		req.Close = true
		req.Header.Set("Connection", "close")
	}

	endpoint := req.URL.String()
	c.logger.Debugw("sending vendor request", "method", req.Method, "url", endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugw("vendor request failed", "method", req.Method, "url", endpoint, "error", err)
		return nil, &sharedErrors.TransportError{Op: req.Method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sharedErrors.TransportError{Op: req.Method, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debugw("vendor response", "url", endpoint, "status", resp.StatusCode, "body", string(body))

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &sharedErrors.TransportError{
			Op:         req.Method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}
	return out, nil
}
