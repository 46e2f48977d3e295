package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudshelf/storefront/internal/cart"
	"github.com/cloudshelf/storefront/internal/middleware"
	"github.com/cloudshelf/storefront/internal/sanitize"
)

type CartHandler struct {
	repo   cart.Repository
	logger *log.Logger
}

func NewCartHandler(repo cart.Repository, logger *log.Logger) *CartHandler {
	return &CartHandler{repo: repo, logger: logger}
}

// Get returns the shopper's cart; an absent cart reads as an empty one.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	c, err := h.repo.Load(r.Context(), userID)
	if err != nil {
		h.logger.Printf("load cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		c = cart.New(userID)
	}
	writeJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ItemID    string          `json:"itemId"`
	Title     string          `json:"title"`
	UnitPrice json.RawMessage `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ItemID == "" {
		writeError(w, r, http.StatusBadRequest, "itemId is required")
		return
	}

	raw, _ := json.Marshal(req)
	var line cart.Line
	if err := json.Unmarshal(raw, &line); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid item")
		return
	}
	line.Title = sanitize.Text(line.Title)

	c, err := h.repo.Load(r.Context(), userID)
	if err != nil {
		h.logger.Printf("load cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		c = cart.New(userID)
	}
	c.Add(line)

	if err := h.repo.Save(r.Context(), c); err != nil {
		h.logger.Printf("save cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.repo.Load(r.Context(), userID)
	if err != nil {
		h.logger.Printf("load cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		writeError(w, r, http.StatusNotFound, "cart is empty")
		return
	}
	c.SetQuantity(itemID, req.Quantity)

	if err := h.repo.Save(r.Context(), c); err != nil {
		h.logger.Printf("save cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	c, err := h.repo.Load(r.Context(), userID)
	if err != nil {
		h.logger.Printf("load cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		writeError(w, r, http.StatusNotFound, "cart is empty")
		return
	}
	c.Remove(itemID)

	if err := h.repo.Save(r.Context(), c); err != nil {
		h.logger.Printf("save cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.repo.Clear(r.Context(), userID); err != nil {
		h.logger.Printf("clear cart for %s: %v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, cart.New(userID))
}
