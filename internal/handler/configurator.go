package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkrunner/storefront/internal/configurator"
)

// ConfiguratorHandler exposes the wizard over HTTP. One wizard per storefront
// session.
type ConfiguratorHandler struct {
	c *configurator.Configurator
}

func NewConfiguratorHandler(c *configurator.Configurator) *ConfiguratorHandler {
	return &ConfiguratorHandler{c: c}
}

func (h *ConfiguratorHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/configurator", h.handleGetState)
	router.Post("/api/configurator/select", h.handleSelect)
	router.Post("/api/configurator/advance", h.handleAdvance)
	router.Post("/api/configurator/back", h.handleBack)
	router.Post("/api/configurator/cart", h.handleAddToCart)
	router.Post("/api/configurator/abandon", h.handleAbandon)
}

type ConfiguratorState struct {
	Step          configurator.Step          `json:"step"`
	Configuration configurator.Configuration `json:"configuration"`
	Quote         QuoteResponse              `json:"quote"`
	CanAdvance    bool                       `json:"can_advance"`
}

func (h *ConfiguratorHandler) state() ConfiguratorState {
	return ConfiguratorState{
		Step:          h.c.Step(),
		Configuration: h.c.Configuration(),
		Quote:         newQuoteResponse(h.c.Quote()),
		CanAdvance:    h.c.CanAdvance(),
	}
}

func (h *ConfiguratorHandler) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.state())
}

// SelectRequest applies any subset of selection changes in one call.
type SelectRequest struct {
	ShapeID      *string  `json:"shape_id,omitempty"`
	MaterialID   *string  `json:"material_id,omitempty"`
	SizeID       *string  `json:"size_id,omitempty"`
	FinishID     *string  `json:"finish_id,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Quantity     *int     `json:"quantity,omitempty"`
	Instructions *string  `json:"instructions,omitempty"`
}

func (h *ConfiguratorHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var requestPayload SelectRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.applySelection(requestPayload); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, h.state())
}

func (h *ConfiguratorHandler) applySelection(req SelectRequest) error {
	if req.ShapeID != nil {
		if err := h.c.SetShape(*req.ShapeID); err != nil {
			return err
		}
	}
	if req.MaterialID != nil {
		if err := h.c.SetMaterial(*req.MaterialID); err != nil {
			return err
		}
	}
	if req.SizeID != nil {
		if err := h.c.SetSize(*req.SizeID); err != nil {
			return err
		}
	}
	if req.FinishID != nil {
		if err := h.c.SetFinish(*req.FinishID); err != nil {
			return err
		}
	}
	if req.Width != nil || req.Height != nil {
		dims := h.c.Configuration().Dimensions
		width, height := 0.0, 0.0
		if dims != nil {
			width, height = dims.Width, dims.Height
		}
		if req.Width != nil {
			width = *req.Width
		}
		if req.Height != nil {
			height = *req.Height
		}
		h.c.SetDimensions(width, height)
	}
	if req.Quantity != nil {
		if err := h.c.SetQuantity(*req.Quantity); err != nil {
			return err
		}
	}
	if req.Instructions != nil {
		h.c.SetInstructions(*req.Instructions)
	}
	return nil
}

type AdvanceResponse struct {
	Advanced bool              `json:"advanced"`
	Step     configurator.Step `json:"step"`
}

func (h *ConfiguratorHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	advanced := h.c.Advance()
	respondWithJSON(w, http.StatusOK, AdvanceResponse{Advanced: advanced, Step: h.c.Step()})
}

type BackRequest struct {
	Step configurator.Step `json:"step"`
}

func (h *ConfiguratorHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	var requestPayload BackRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	moved := h.c.Back(requestPayload.Step)
	respondWithJSON(w, http.StatusOK, AdvanceResponse{Advanced: moved, Step: h.c.Step()})
}

func (h *ConfiguratorHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	item, err := h.c.AddToCart(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, item)
}

func (h *ConfiguratorHandler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	h.c.Abandon(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
