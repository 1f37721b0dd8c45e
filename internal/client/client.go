// Package client is a Go client for the Shelf REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

// APIError is a non-2xx response. It matches the apperr sentinel for its status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Is maps HTTP status codes back onto the apperr taxonomy.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperr.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperr.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case apperr.ErrStoreUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// Client calls the books endpoints under baseURL (for example http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client. A zero timeout leaves the transport defaults in place.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// List fetches all books, or those matching filter.
func (c *Client) List(ctx context.Context, filter string) ([]models.Book, error) {
	target := c.baseURL + "/books"
	if filter != "" {
		target += "?q=" + url.QueryEscape(filter)
	}
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, target, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// Get fetches a single book.
func (c *Client) Get(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := c.do(ctx, http.MethodGet, c.bookURL(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create posts a new book.
func (c *Client) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	var b models.Book
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/books", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update replaces the provided fields of a book.
func (c *Client) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	var b models.Book
	if err := c.do(ctx, http.MethodPut, c.bookURL(id), in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a book.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.bookURL(id), nil, nil)
}

func (c *Client) bookURL(id string) string {
	return c.baseURL + "/books/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// IsAPIError reports whether err came from a server response rather than the transport.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
