package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", &http.Client{Timeout: 5 * time.Second}, nil, log.New(io.Discard, "", 0))
}

func TestClientList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`[{"id":"b1","title":"One"},{"id":"b2"}]`))
	})

	books, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 2 || books[0].ID != "b1" || books[1].Title != defaultTitle {
		t.Fatalf("unexpected books %+v", books)
	}
}

func TestClientListUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.List(context.Background())
	var rerr *RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if rerr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rerr.Status)
	}
}

func TestClientGet(t *testing.T) {
	t.Run("enveloped", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/books/b9" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"body":"{\"id\":\"b9\",\"title\":\"Nine\"}"}`))
		})

		b, err := c.Get(context.Background(), "b9")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if b.ID != "b9" || b.Title != "Nine" {
			t.Fatalf("unexpected book %+v", b)
		}
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.Get(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClientSearch(t *testing.T) {
	t.Run("parseable response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") != "go" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":"b1","title":"Go"}]`))
		})

		books, err := c.Search(context.Background(), "go")
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(books) != 1 || books[0].ID != "b1" {
			t.Fatalf("unexpected books %+v", books)
		}
	})

	t.Run("garbage response falls back to local filter", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				_, _ = w.Write([]byte(`%%% not json %%%`))
			case "/books":
				_, _ = w.Write([]byte(`[{"id":"1","title":"Foothold"},{"id":"2","title":"Other","author":"Barfoo"},{"id":"3","title":"Nope"}]`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		books, err := c.Search(context.Background(), "foo")
		if err != nil {
			t.Fatalf("search fallback: %v", err)
		}
		if len(books) != 2 || books[0].ID != "1" || books[1].ID != "2" {
			t.Fatalf("unexpected fallback results %+v", books)
		}
	})

	t.Run("fallback listing failure is terminal", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.Search(context.Background(), "foo")
		var rerr *RetrievalError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RetrievalError, got %v", err)
		}
	})
}

func TestClientKeepsBaseURLPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Path == "/api/books/b1" {
			_, _ = w.Write([]byte(`{"id":"b1","title":"One"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/api", "test-key", &http.Client{Timeout: 5 * time.Second}, nil, log.New(io.Discard, "", 0))
	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotPath != "/api/books" {
		t.Fatalf("request path = %q, want /api/books", gotPath)
	}

	if _, err := c.Get(context.Background(), "b1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotPath != "/api/books/b1" {
		t.Fatalf("request path = %q, want /api/books/b1", gotPath)
	}
}
