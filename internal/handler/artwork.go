package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/configurator"
)

// uploadBodyLimit caps the request body: the artwork size limit plus room for
// multipart framing. Oversized requests stop reading here instead of buffering
// the whole body before validation.
const uploadBodyLimit = artwork.MaxFileSize + 1<<20

// ArtworkHandler accepts design uploads and attaches them to the in-progress
// configuration.
type ArtworkHandler struct {
	svc          *artwork.Service
	configurator *configurator.Configurator
}

func NewArtworkHandler(svc *artwork.Service, cfg *configurator.Configurator) *ArtworkHandler {
	return &ArtworkHandler{svc: svc, configurator: cfg}
}

func (h *ArtworkHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/artwork", h.handleUpload)
	router.Delete("/api/artwork", h.handleRemove)
}

func (h *ArtworkHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusBadRequest, artwork.ErrFileTooLarge.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	uploaded, err := h.svc.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		if code := mapErrorToStatusCode(err); code == http.StatusBadRequest {
			respondWithError(w, code, err.Error())
			return
		}
		log.Error().Err(err).Str("file", header.Filename).Msg("handler: artwork upload failed")
		respondWithError(w, http.StatusBadGateway, "Upload failed, please retry")
		return
	}

	h.configurator.AttachArtwork(uploaded)

	respondWithJSON(w, http.StatusCreated, uploaded)
}

// handleRemove cancels an upload: the file stops counting against the limit,
// the configuration detaches it, and the blob deletion is best-effort. The
// artwork service refuses paths it does not track, so a client cannot delete
// arbitrary blobs; the response stays 204 either way.
func (h *ArtworkHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "path is required")
		return
	}

	h.svc.Remove(r.Context(), path)

	if current := h.configurator.Configuration().Artwork; current != nil && current.Path == path {
		h.configurator.DetachArtwork()
	}

	w.WriteHeader(http.StatusNoContent)
}
