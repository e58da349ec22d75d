package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/pricing"
)

// CartHandler serves the cart contents and removals.
type CartHandler struct {
	svc *cart.Service
}

func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/cart", h.handleGetCart)
	router.Delete("/api/cart", h.handleClearCart)
	router.Delete("/api/cart/items/{id}", h.handleRemoveItem)
}

type CartResponse struct {
	Items     []cart.Item `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  float64     `json:"subtotal"`
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, CartResponse{
		Items:     h.svc.Items(),
		ItemCount: h.svc.ItemCount(),
		Subtotal:  pricing.Round2(h.svc.Subtotal()),
	})
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveItem always succeeds: removing an absent id is a no-op.
func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "id is required")
		return
	}

	h.svc.Remove(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
