package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudshelf/storefront/internal/middleware"
)

type Deps struct {
	Logger *log.Logger

	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Order    *OrderHandler

	CORSAllowOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", healthHandler)

	// Catalog is public
	r.Get("/items", d.Catalog.List)
	r.Get("/items/{id}", d.Catalog.Get)
	r.Get("/search", d.Catalog.Search)

	// Everything per-shopper requires X-User-Id
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUserID)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", d.Cart.Get)
			r.Delete("/", d.Cart.Clear)
			r.Post("/items", d.Cart.AddItem)
			r.Put("/items/{itemId}", d.Cart.SetQuantity)
			r.Delete("/items/{itemId}", d.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", d.Checkout.Begin)
			r.Post("/{attemptId}/shipping", d.Checkout.SubmitShipping)
			r.Post("/{attemptId}/payment", d.Checkout.SubmitPayment)
		})

		r.Get("/orders/{orderId}", d.Order.Get)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "storefront"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
