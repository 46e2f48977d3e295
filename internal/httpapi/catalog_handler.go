package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudshelf/storefront/internal/catalog"
	"github.com/cloudshelf/storefront/internal/sanitize"
)

type CatalogHandler struct {
	client *catalog.Client
	logger *log.Logger
}

func NewCatalogHandler(client *catalog.Client, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{client: client, logger: logger}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.client.List(r.Context())
	if err != nil {
		h.logger.Printf("list catalog: %v", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load items")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	book, err := h.client.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Printf("get catalog item %s: %v", id, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := sanitize.SearchQuery(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "search query is required")
		return
	}

	books, err := h.client.Search(r.Context(), query)
	if err != nil {
		h.logger.Printf("search catalog %q: %v", query, err)
		writeError(w, r, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, books)
}
