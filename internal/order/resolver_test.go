package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewResolver(srv.URL, "test-key", &http.Client{Timeout: 5 * time.Second}, log.New(io.Discard, "", 0))
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/orders/ord_1" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":     "ord_1",
			"totalAmount": 19.98,
			"status":      "CONFIRMED",
			"items":       []map[string]any{{"itemId": "b1", "quantity": 2, "unitPrice": 9.99}},
		})
	})

	o, err := r.Resolve(context.Background(), "ord_1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if o.ID != "ord_1" || !o.TotalAmount.Equal(decimal.NewFromFloat(19.98)) {
		t.Fatalf("unexpected order %+v", o)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", o.Items)
	}
}

func TestResolveEnveloped(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"body":"{\"orderId\":\"ord_2\",\"totalAmount\":\"5.00\"}"}`))
	})

	o, err := r.Resolve(context.Background(), "ord_2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if o.ID != "ord_2" || !o.TotalAmount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestResolveNotFoundPassesStatusThrough(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "no such order"})
	})

	_, err := r.Resolve(context.Background(), "ghost")
	var rerr *RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if rerr.Status != http.StatusNotFound || rerr.Message != "no such order" {
		t.Fatalf("unexpected error %+v", rerr)
	}
}

func TestResolveTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	r := NewResolver(srv.URL, "", &http.Client{Timeout: time.Second}, log.New(io.Discard, "", 0))

	_, err := r.Resolve(context.Background(), "ord_1")
	var rerr *RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if rerr.Status != 0 {
		t.Fatalf("expected status 0, got %d", rerr.Status)
	}
}

func TestResolveKeepsBaseURLPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"orderId": "ord_1"})
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(srv.URL+"/api", "test-key", &http.Client{Timeout: 5 * time.Second}, log.New(io.Discard, "", 0))
	if _, err := r.Resolve(context.Background(), "ord_1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotPath != "/api/orders/ord_1" {
		t.Fatalf("request path = %q, want /api/orders/ord_1", gotPath)
	}
}
