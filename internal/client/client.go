// Package client is the HTTP client for the remote notes API. Each method is
// one round trip; failures of any kind wrap apperr.ErrRequestFailed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

const maxErrorBody = 512

// Client talks to a notes API rooted at a base URL such as
// "http://localhost:8080/api".
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url must be absolute: %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether the error matches apperr.ErrRequestFailed, or
// apperr.ErrNotFound for a 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case apperr.ErrRequestFailed:
		return true
	case apperr.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// List fetches every note (GET /notes).
func (c *Client) List(ctx context.Context) ([]models.Note, error) {
	var out []models.Note
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Create stores a new note (POST /notes).
func (c *Client) Create(ctx context.Context, title, content string) (models.Note, error) {
	var out models.Note
	err := c.do(ctx, http.MethodPost, "/notes", noteBody{Title: title, Content: content}, &out)
	return out, err
}

// Get fetches one note (GET /notes/{id}).
func (c *Client) Get(ctx context.Context, id models.ID) (models.Note, error) {
	var out models.Note
	err := c.do(ctx, http.MethodGet, notesPath(id.String()), nil, &out)
	return out, err
}

// DeleteOne deletes a note and returns the remaining collection
// (GET /notes/delete/{id}).
func (c *Client) DeleteOne(ctx context.Context, id models.ID) ([]models.Note, error) {
	var out []models.Note
	if err := c.do(ctx, http.MethodGet, notesPath("delete", id.String()), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteAll deletes every note (DELETE /notes/deleteAll). The response body
// is ignored.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/notes/deleteAll", nil, nil)
}

// Update replaces title and content (PUT /notes/{id}).
func (c *Client) Update(ctx context.Context, id models.ID, title, content string) (models.Note, error) {
	var out models.Note
	err := c.do(ctx, http.MethodPut, notesPath(id.String()), noteBody{Title: title, Content: content}, &out)
	return out, err
}

// UpdateTitle replaces the title (PATCH /notes/updateTitle/{id}). The body is
// the bare string, not an object.
func (c *Client) UpdateTitle(ctx context.Context, id models.ID, title string) (models.Note, error) {
	var out models.Note
	err := c.do(ctx, http.MethodPatch, notesPath("updateTitle", id.String()), title, &out)
	return out, err
}

// UpdateContent replaces the content (PATCH /notes/updateContent/{id}).
func (c *Client) UpdateContent(ctx context.Context, id models.ID, content string) (models.Note, error) {
	var out models.Note
	err := c.do(ctx, http.MethodPatch, notesPath("updateContent", id.String()), content, &out)
	return out, err
}

// SearchTitle returns notes whose title matches query (GET /notes/title/{query}).
func (c *Client) SearchTitle(ctx context.Context, query string) ([]models.Note, error) {
	var out []models.Note
	if err := c.do(ctx, http.MethodGet, notesPath("title", query), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// SearchContent returns notes whose content matches query
// (GET /notes/content/{query}).
func (c *Client) SearchContent(ctx context.Context, query string) ([]models.Note, error) {
	var out []models.Note
	if err := c.do(ctx, http.MethodGet, notesPath("content", query), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

type noteBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// notesPath joins escaped segments under /notes.
func notesPath(segments ...string) string {
	var b strings.Builder
	b.WriteString("/notes")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// do performs one round trip. in, when non-nil, is JSON-encoded; out, when
// non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %s %s: encode body: %w", apperr.ErrRequestFailed, method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", apperr.ErrRequestFailed, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", apperr.ErrRequestFailed, method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("close response body failed", slog.String("error", err.Error()))
		}
	}()

	c.logger.Debug("notes api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %s %s: decode response: %w", apperr.ErrRequestFailed, method, path, err)
	}
	if n, ok := out.(*models.Note); ok && n.ID == "" {
		return fmt.Errorf("%w: %s %s: response note has no id", apperr.ErrRequestFailed, method, path)
	}
	return nil
}

func nonNil(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	return notes
}
