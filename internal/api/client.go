package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

// maxErrorBody caps how many characters of a failed response body StatusError keeps
const maxErrorBody = 512

// ErrNotFound matches a StatusError with status 404
var ErrNotFound = errors.New("record not found")

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	Method     string
	URL        string
	Status     int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.StatusText)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Options configures a Client
type Options struct {
	BaseURL  string
	Resource string
	Timeout  time.Duration
	TLS      *types.TLSConfig
	Logger   *zap.Logger
}

// Client talks to the remote student collection. Every method is a single
// request/response round trip with no retries.
type Client struct {
	httpClient *http.Client
	collection string
	logger     *zap.Logger
}

// New creates a Client for opts
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	httpClient, err := buildHTTPClient(opts.TLS, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	collection := strings.TrimRight(opts.BaseURL, "/")
	if resource := strings.Trim(opts.Resource, "/"); resource != "" {
		collection += "/" + resource
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		collection: collection,
		logger:     logger,
	}, nil
}

// CollectionURL returns the URL used for list and create
func (c *Client) CollectionURL() string {
	return c.collection
}

// RecordURL returns the URL used for update and delete
func (c *Client) RecordURL(id string) string {
	return c.collection + "/" + url.PathEscape(id)
}

// List fetches every record in the order the server returns them
func (c *Client) List(ctx context.Context) ([]types.Student, error) {
	var students []types.Student
	if err := c.do(ctx, http.MethodGet, c.collection, nil, &students); err != nil {
		return nil, err
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

// Create posts a draft and returns the record with its server-assigned id
func (c *Client) Create(ctx context.Context, draft types.Draft) (types.Student, error) {
	var created types.Student
	if err := c.do(ctx, http.MethodPost, c.collection, draft, &created); err != nil {
		return types.Student{}, err
	}
	return created, nil
}

// Update sends a partial record for id and returns the updated record
func (c *Client) Update(ctx context.Context, id string, patch types.Patch) (types.Student, error) {
	if id == "" {
		return types.Student{}, fmt.Errorf("update: id is required")
	}
	var updated types.Student
	if err := c.do(ctx, http.MethodPut, c.RecordURL(id), patch, &updated); err != nil {
		return types.Student{}, err
	}
	return updated, nil
}

// Delete removes the record with id. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete: id is required")
	}
	return c.do(ctx, http.MethodDelete, c.RecordURL(id), nil, nil)
}

// do performs one round trip, encoding in as JSON and decoding the body into out
func (c *Client) do(ctx context.Context, method, target string, in any, out any) (err error) {
	startTime := time.Now()
	status := 0

	defer func() {
		call := Call{
			Method:   method,
			URL:      target,
			Status:   status,
			Duration: time.Since(startTime),
			Err:      err,
		}
		c.logCall(call)
		if observe := observerFrom(ctx); observe != nil {
			observe(call)
		}
	}()

	var bodyReader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if !IsSuccessStatus(resp.StatusCode) {
		return &StatusError{
			Method:     method,
			URL:        target,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Body:       truncate(strings.TrimSpace(string(bodyBytes)), maxErrorBody),
		}
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, target, err)
	}
	return nil
}

func (c *Client) logCall(call Call) {
	fields := []zap.Field{
		zap.String("method", call.Method),
		zap.String("url", call.URL),
		zap.Int("status", call.Status),
		zap.Duration("duration", call.Duration),
	}
	if call.Err != nil {
		c.logger.Warn("request failed", append(fields, zap.Error(call.Err))...)
		return
	}
	c.logger.Debug("request completed", fields...)
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration
func buildHTTPClient(tlsConfig *types.TLSConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil && !tlsConfig.IsZero() {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// StatusOf returns the HTTP status carried by err, or 0 for transport errors
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// CloseIdleConnections releases keep-alive connections held by the client
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
