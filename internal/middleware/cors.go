package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORS answers preflights and stamps cross-origin response headers. With
// the single entry "*" any origin is reflected back, but without the
// credentials grant; credentialed requests require an explicit allowlist.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				setCORSHeaders(w.Header(), origin, allowOrigins, allowAll)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setCORSHeaders(h http.Header, origin string, allowOrigins []string, allowAll bool) {
	switch {
	case allowAll:
		// Reflecting the origin works better with browsers than a
		// literal "*"
		h.Set("Access-Control-Allow-Origin", origin)
	case originAllowed(origin, allowOrigins):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
	default:
		return
	}

	h.Set("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Correlation-Id, X-User-Id")
}

func originAllowed(origin string, allow []string) bool {
	return slices.ContainsFunc(allow, func(a string) bool {
		return strings.EqualFold(strings.TrimSpace(a), origin)
	})
}
