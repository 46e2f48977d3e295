package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cloudshelf/storefront/internal/middleware"
	"github.com/cloudshelf/storefront/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func writeFieldErrors(w http.ResponseWriter, r *http.Request, msg string, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:         msg,
		Fields:        fields,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}
