// Package upstream is a client for the retreat backend's REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

const (
	// listLimit is the page size requested when listing retreats.
	listLimit = 100
	// maxListPages bounds paging in case the backend reports a runaway page count.
	maxListPages = 50
)

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the backend. It implements the retreat source and lead sink
// used by the service layer.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL (for example http://localhost:5001/api).
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Data       T           `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// List returns every retreat published by the backend, following its
// page/pages pagination. Responses without pagination are a single page.
func (c *Client) List(ctx context.Context) ([]model.Retreat, error) {
	var retreats []model.Retreat
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(listLimit))
		q.Set("page", fmt.Sprint(page))

		var out envelope[[]model.Retreat]
		if err := c.do(ctx, http.MethodGet, "/retreats?"+q.Encode(), nil, &out); err != nil {
			return nil, fmt.Errorf("list retreats page %d: %w", page, err)
		}
		retreats = append(retreats, out.Data...)

		if out.Pagination == nil || page >= out.Pagination.Pages || len(out.Data) == 0 {
			return retreats, nil
		}
		if page >= maxListPages {
			c.logger.Warn("retreat listing truncated", "pages", out.Pagination.Pages, "fetched", page)
			return retreats, nil
		}
	}
}

// GetByID returns one retreat or model.ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id string) (*model.Retreat, error) {
	if id == "" {
		return nil, model.ErrInvalidID
	}

	var out envelope[*model.Retreat]
	if err := c.do(ctx, http.MethodGet, "/retreats/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get retreat: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("get retreat: %w", model.ErrNotFound)
	}
	return out.Data, nil
}

// CreateLead forwards a lead to the backend and returns the stored record.
func (c *Client) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	body, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("encode lead: %w", err)
	}

	var out envelope[*model.Lead]
	if err := c.do(ctx, http.MethodPost, "/leads", body, &out); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	if out.Data == nil {
		return &lead, nil
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dst any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
		"upstream_request_id", requestID,
	)

	if resp.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
