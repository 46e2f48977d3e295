package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cloudshelf/storefront/internal/model"
)

const HeaderUserID = "X-User-Id"

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxUserID        ctxKey = "user_id"
)

// RequireUserID enforces X-User-Id on the wrapped routes and stores it in
// context. Cart, checkout, and order routes are per-shopper and cannot run
// without it.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{
				Error:         "missing required header: X-User-Id",
				CorrelationID: GetCorrelationID(r.Context()),
			})
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
