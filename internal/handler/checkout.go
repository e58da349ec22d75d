package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/checkout"
)

// CheckoutHandler creates payment sessions from the current cart and looks
// them up after payment.
type CheckoutHandler struct {
	svc      *checkout.Service
	cart     *cart.Service
	validate *validator.Validate
}

func NewCheckoutHandler(svc *checkout.Service, cartSvc *cart.Service) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		cart:     cartSvc,
		validate: validator.New(),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/checkout", h.handleCreateSession)
	router.Get("/api/checkout/session", h.handleGetSession)
}

type CreateSessionRequest struct {
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

func (h *CheckoutHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateSessionRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			log.Error().Err(err).Msg("handler: unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
			return
		}
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}

	session, err := h.svc.CreateSession(r.Context(), h.cart.Items(), requestPayload.CustomerEmail)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondWithError(w, http.StatusBadRequest, "No items in cart")
			return
		}
		// Upstream failure: the customer keeps the cart and can retry.
		respondWithError(w, http.StatusBadGateway, "Payment session could not be created, please retry")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	status, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("handler: failed to retrieve payment session")
		respondWithError(w, http.StatusBadGateway, "Failed to retrieve session, please retry")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}
