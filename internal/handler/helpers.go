package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/checkout"
	"github.com/inkrunner/storefront/internal/configurator"
	"github.com/inkrunner/storefront/internal/pricing"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag())
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, configurator.ErrInvalidQuantity),
		errors.Is(err, configurator.ErrUnknownOption),
		errors.Is(err, artwork.ErrFileTooLarge),
		errors.Is(err, artwork.ErrUnsupportedType),
		errors.Is(err, artwork.ErrTooManyFiles),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, configurator.ErrNotReviewing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
