package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/pricing"
)

type QuoteRequest struct {
	MaterialID string  `json:"material_id" validate:"required"`
	SizeID     string  `json:"size_id" validate:"required"`
	FinishID   string  `json:"finish_id"`
	Width      float64 `json:"width" validate:"omitempty,gt=0"`
	Height     float64 `json:"height" validate:"omitempty,gt=0"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
}

// QuoteResponse carries the price breakdown rounded to currency precision.
// Rounding happens here, at the presentation boundary only.
type QuoteResponse struct {
	UnitPrice           float64 `json:"unit_price"`
	DiscountedUnitPrice float64 `json:"discounted_unit_price"`
	DiscountPercent     float64 `json:"discount_percent"`
	Total               float64 `json:"total"`
	UndiscountedTotal   float64 `json:"undiscounted_total"`
}

func newQuoteResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		UnitPrice:           pricing.Round2(q.UnitPrice),
		DiscountedUnitPrice: pricing.Round2(q.DiscountedUnitPrice),
		DiscountPercent:     q.DiscountPercent,
		Total:               pricing.Round2(q.Total),
		UndiscountedTotal:   pricing.Round2(q.UndiscountedTotal),
	}
}

// PricingHandler serves the catalog and ad hoc price quotes.
type PricingHandler struct {
	cat      catalog.Catalog
	engine   pricing.Engine
	validate *validator.Validate
}

func NewPricingHandler(cat catalog.Catalog, engine pricing.Engine) *PricingHandler {
	return &PricingHandler{
		cat:      cat,
		engine:   engine,
		validate: validator.New(),
	}
}

func (h *PricingHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/catalog", h.handleGetCatalog)
	router.Post("/api/quote", h.handleQuote)
}

func (h *PricingHandler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cat)
}

func (h *PricingHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var requestPayload QuoteRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
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

	sel := pricing.Selection{
		MaterialID: requestPayload.MaterialID,
		SizeID:     requestPayload.SizeID,
		FinishID:   requestPayload.FinishID,
		Quantity:   requestPayload.Quantity,
	}
	if requestPayload.Width > 0 || requestPayload.Height > 0 {
		sel.Dimensions = &catalog.CustomDimensions{
			Width:  requestPayload.Width,
			Height: requestPayload.Height,
		}
	}

	quote, err := h.engine.Price(sel, h.cat)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Invalid quantity")
		return
	}

	respondWithJSON(w, http.StatusOK, newQuoteResponse(quote))
}
