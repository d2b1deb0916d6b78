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
	"go.uber.org/zap"
)

// ResourceClient is the capability set the view state needs from the remote
// posts and comments resources. Each call issues one request and never retries.
type ResourceClient interface {
	FetchPosts(ctx context.Context) (PostList, error)
	Create(ctx context.Context, kind Kind, parent *int64, link string) (Entity, error)
	Update(ctx context.Context, kind Kind, id int64, link string) (Entity, error)
	Delete(ctx context.Context, kind Kind, id int64) error
}

// Ensure Client implements ResourceClient at compile time.
var _ ResourceClient = (*Client)(nil)

// Client talks to the posts/comments HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	DefaultBaseURL        = "http://127.0.0.1:8000/api/"
	DefaultRequestTimeout = 5 * time.Second
	defaultUserAgent      = "linkboard/0.1"

	// errorBodyLimit caps how much of a failed response is read for its message.
	errorBodyLimit = 4 << 10
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultRequestTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CloseIdleConnections releases keep-alive connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// FetchPosts retrieves every post with its nested comments.
func (c *Client) FetchPosts(ctx context.Context) (PostList, error) {
	if c == nil {
		return PostList{}, fmt.Errorf("client is nil")
	}
	var payload PostList
	if err := c.do(ctx, http.MethodGet, "posts", nil, &payload); err != nil {
		return PostList{}, err
	}
	return payload, nil
}

// Create adds a post, or a comment on parent when kind is KindComment.
func (c *Client) Create(ctx context.Context, kind Kind, parent *int64, link string) (Entity, error) {
	if c == nil {
		return Entity{}, fmt.Errorf("client is nil")
	}
	var path string
	switch kind {
	case KindPost:
		path = "posts"
	case KindComment:
		if parent == nil {
			return Entity{}, ErrParentRequired
		}
		path = "posts/" + strconv.FormatInt(*parent, 10) + "/comments"
	default:
		return Entity{}, fmt.Errorf("create: unsupported %s", kind)
	}
	out := Entity{Kind: kind}
	if err := c.do(ctx, http.MethodPost, path, LinkPayload{Link: link}, &out); err != nil {
		return Entity{}, err
	}
	return out, nil
}

// Update replaces the link of an existing post or comment.
func (c *Client) Update(ctx context.Context, kind Kind, id int64, link string) (Entity, error) {
	if c == nil {
		return Entity{}, fmt.Errorf("client is nil")
	}
	path, err := itemPath(kind, id)
	if err != nil {
		return Entity{}, fmt.Errorf("update: %w", err)
	}
	out := Entity{Kind: kind}
	if err := c.do(ctx, http.MethodPut, path, LinkPayload{Link: link}, &out); err != nil {
		return Entity{}, err
	}
	return out, nil
}

// Delete removes a post (and its comments) or a single comment.
func (c *Client) Delete(ctx context.Context, kind Kind, id int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	path, err := itemPath(kind, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func itemPath(kind Kind, id int64) (string, error) {
	switch kind {
	case KindPost:
		return "posts/" + strconv.FormatInt(id, 10), nil
	case KindComment:
		return "comments/" + strconv.FormatInt(id, 10), nil
	}
	return "", fmt.Errorf("unsupported %s", kind)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode >= 400 {
		return &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts {"error": "..."} when present, falling back to the
// trimmed body text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
