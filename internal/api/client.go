// Package api is the typed client for the Zenem REST backend.
//
// Every request body is sent with snake_case keys and every JSON response is
// converted to camelCase before being decoded into the typed models, so the
// models in this package carry camelCase JSON tags only. Failures surface as
// *APIError; a 401 additionally matches ErrAuthentication. The client never
// clears the stored token itself: concurrent requests may still be in flight
// and the caller decides when a session is over.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenem/zenem/internal/casing"
	"github.com/zenem/zenem/internal/logging"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// TokenSource supplies the bearer token for each request.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the static token.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// Client is a typed client for the Zenem REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	cache      *MetadataCache
	log        *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMetadataCache injects the metadata cache.
func WithMetadataCache(mc *MetadataCache) Option {
	return func(c *Client) { c.cache = mc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logging.Get("api"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.cache == nil {
		c.cache = NewMetadataCache(DefaultMetadataTTL)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache returns the metadata cache owned or injected into this client.
func (c *Client) Cache() *MetadataCache {
	return c.cache
}

// do sends a request and decodes a JSON response into out.
// out may be nil (response discarded) or *string (raw text accepted).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		if s, ok := out.(*string); ok {
			*s = string(data)
		}
		return nil
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := DecodeWire(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// send builds and executes a request, converting non-2xx statuses into
// *APIError. On success the caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := EncodeWire(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%s %s: load token: %w", method, path, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debugf("%s %s failed after %s: %v", method, path, time.Since(start), err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debugf("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(method, path, resp)
	}
	return resp, nil
}

// errorFromResponse extracts the best available message from a failed response.
func (c *Client) errorFromResponse(method, path string, resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Method:  method,
		Path:    path,
		Message: statusMessage(resp.StatusCode),
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr.Message = ErrAuthentication.Error()
		return apiErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || !isJSON(resp.Header.Get("Content-Type")) {
		return apiErr
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}

// EncodeWire marshals v (camelCase tags) into a snake_case JSON body.
func EncodeWire(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(casing.ToSnakeCaseKeys(tree))
}

// DecodeWire converts a snake_case JSON document to camelCase and decodes it into out.
func DecodeWire(data []byte, out any) error {
	tree, err := decodeTree(data)
	if err != nil {
		return err
	}
	camel, err := json.Marshal(casing.ToCamelCaseKeys(tree))
	if err != nil {
		return err
	}
	return json.Unmarshal(camel, out)
}

// decodeTree decodes JSON into generic maps and slices, keeping numbers exact.
func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// PageQuery holds the standard paging parameters of list endpoints.
type PageQuery struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string
}

// encode appends the non-zero paging parameters to path.
func (q PageQuery) encode(path string) string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.SortBy != "" {
		v.Set("sort_by", casing.SnakeKey(q.SortBy))
	}
	if q.SortDirection != "" {
		v.Set("sort_direction", q.SortDirection)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// segment escapes a single path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
