package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

// ErrNotFound is returned when the upstream has no record for an id.
var ErrNotFound = errors.New("catalog item not found")

// RetrievalError reports a failed upstream fetch; Status is the upstream
// HTTP status, or 0 when the request never completed.
type RetrievalError struct {
	Status  int
	Message string
}

func (e *RetrievalError) Error() string {
	if e.Status == 0 {
		return "catalog retrieval failed: " + e.Message
	}
	return fmt.Sprintf("catalog retrieval failed (status %d): %s", e.Status, e.Message)
}

// Client fetches catalog records from the upstream listing/search API and
// pushes every payload through the normalizer. The cache is optional.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	cache   *Cache
	logger  *log.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, cache *Cache, logger *log.Logger) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid catalog base url %q: %v", baseURL, err))
	}
	return &Client{baseURL: u, apiKey: apiKey, http: httpClient, cache: cache, logger: logger}
}

// List fetches the full catalog listing, serving from the cache when warm.
func (c *Client) List(ctx context.Context) ([]Book, error) {
	if c.cache != nil {
		if books, ok := c.cache.Get(ctx); ok {
			return books, nil
		}
	}

	raw, status, err := c.fetch(ctx, "/books", "")
	if err != nil {
		return nil, &RetrievalError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, &RetrievalError{Status: status, Message: "listing request rejected"}
	}

	books, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, books); err != nil {
			c.logger.Printf("catalog cache set failed: %v", err)
		}
	}
	return books, nil
}

// Get fetches a single record by id, tolerating the gateway envelope.
func (c *Client) Get(ctx context.Context, id string) (Book, error) {
	raw, status, err := c.fetch(ctx, "/books/"+url.PathEscape(id), "")
	if err != nil {
		return Book{}, &RetrievalError{Message: err.Error()}
	}
	if status == http.StatusNotFound {
		return Book{}, ErrNotFound
	}
	if status < 200 || status >= 300 {
		return Book{}, &RetrievalError{Status: status, Message: "item request rejected"}
	}
	return NormalizeOne(raw)
}

// Search queries the upstream search endpoint. When the response defeats
// every structural parse strategy, it falls back to filtering the full
// listing locally; only a failure of that path too is surfaced.
func (c *Client) Search(ctx context.Context, query string) ([]Book, error) {
	raw, status, err := c.fetch(ctx, "/search", url.Values{"q": {query}}.Encode())
	if err == nil && status >= 200 && status < 300 {
		if books, nerr := Normalize(raw); nerr == nil {
			return books, nil
		}
	}
	if err != nil {
		c.logger.Printf("search request failed, falling back to local filter: %v", err)
	} else {
		c.logger.Printf("search response unparseable (status %d), falling back to local filter", status)
	}

	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterLocal(all, query), nil
}

func (c *Client) fetch(ctx context.Context, path, rawQuery string) ([]byte, int, error) {
	// JoinPath keeps any path prefix on the base URL (gateway stage etc.)
	u := c.baseURL.JoinPath(path)
	u.RawQuery = rawQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
