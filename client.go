package simg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Header names understood by the service.
const (
	HeaderAPIKey   = "x-api-key"
	HeaderFilename = "x-filename"
)

// Doer executes a single HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds the connection parameters of a Client.
type ClientConfig struct {
	// BaseURL is the service address, e.g. "https://img.example.com/api".
	BaseURL string

	// APIKey is sent with every request and never logged.
	APIKey string
}

// String redacts the API key.
func (c ClientConfig) String() string {
	return fmt.Sprintf("ClientConfig{BaseURL: %q, APIKey: <redacted>}", c.BaseURL)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. Timeouts, pooling and proxies
// are configured on the Doer, not on the Client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the sink for failure diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client sends commands to the simg service. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    Doer
	logger  *zap.Logger
}

// NewClient validates cfg and returns a Client. Trailing slashes of the base
// URL are dropped.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, ErrConnectionConfiguration
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send uploads a PutObjectCommand and returns the service payload unmodified.
// Any other command yields an *UnsupportedCommandError without a request.
func (c *Client) Send(ctx context.Context, cmd Command) (json.RawMessage, error) {
	put, ok := asPut(cmd)
	if !ok {
		return nil, &UnsupportedCommandError{Operation: "send", Kind: kindOf(cmd)}
	}
	if err := checkFields(put.folder, put.filename, put.body, true); err != nil {
		return nil, err
	}

	target := c.baseURL + "/upload/" + url.PathEscape(put.folder)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(put.body))
	if err != nil {
		return nil, fmt.Errorf("simg: building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(HeaderFilename, put.filename)

	payload, err := c.do(req)
	if err != nil {
		c.logFailure("upload failed", target, put.folder, put.filename, err)
		return nil, err
	}

	return json.RawMessage(payload), nil
}

// Delete removes the object named by a DeleteObjectCommand and returns its
// filename as confirmation. Any other command yields an
// *UnsupportedCommandError without a request.
func (c *Client) Delete(ctx context.Context, cmd Command) (string, error) {
	del, ok := asDelete(cmd)
	if !ok {
		return "", &UnsupportedCommandError{Operation: "delete", Kind: kindOf(cmd)}
	}
	if err := checkFields(del.folder, del.filename, nil, false); err != nil {
		return "", err
	}

	target := c.baseURL + "/remove/" + url.PathEscape(del.folder) + "/" + url.PathEscape(del.filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return "", fmt.Errorf("simg: building remove request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		c.logFailure("delete failed", target, del.folder, del.filename, err)
		return "", err
	}

	return del.filename, nil
}

// Get reads folder/filename back from the service.
func (c *Client) Get(ctx context.Context, folder, filename string) ([]byte, error) {
	if err := checkFields(folder, filename, nil, false); err != nil {
		return nil, err
	}

	target := c.baseURL + "/image/" + url.PathEscape(folder) + "/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("simg: building image request: %w", err)
	}

	data, err := c.do(req)
	if err != nil {
		c.logFailure("get failed", target, folder, filename, err)
		return nil, err
	}

	return data, nil
}

// do performs the exchange and returns the body of a 2xx response. Failures
// are already translated by MapError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set(HeaderAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, MapError(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("simg: reading response of %s %s: %w", req.Method, req.URL.Redacted(), err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	statusErr := &StatusError{
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		StatusCode: resp.StatusCode,
		Code:       bodyCode(body),
		Body:       body,
	}
	return nil, MapError(statusErr.StatusCode, statusErr.Code, statusErr)
}

func (c *Client) logFailure(msg, target, folder, filename string, err error) {
	fields := []zap.Field{
		zap.String("target", target),
		zap.String("folder", folder),
		zap.String("filename", filename),
		zap.Error(err),
	}
	if status := StatusCode(err); status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	c.logger.Warn(msg, fields...)
}

// bodyCode extracts the "code" member of a JSON error body.
func bodyCode(body []byte) string {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Code
}
