package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const HeaderCorrelationID = "X-Correlation-Id"

// CorrelationID tags every request with a correlation id, minting one when
// the caller did not send its own. The id rides on the response header and
// in the context so error bodies and log lines can carry it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, cid)

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxCorrelationID, cid)))
	})
}

// GetCorrelationID returns the request's correlation id, or "" outside a
// request handled by CorrelationID.
func GetCorrelationID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxCorrelationID).(string); ok {
		return s
	}
	return ""
}
