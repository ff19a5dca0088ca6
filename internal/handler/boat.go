package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/boat"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type BoatRequest struct {
	Code            string `json:"code" validate:"required,min=2,max=8"`
	Name            string `json:"name" validate:"required,min=2"`
	Active          *bool  `json:"active"`
	Summary         string `json:"summary"`
	AboutMd         string `json:"about_md"`
	DeliveryNotesMd string `json:"delivery_notes_md"`
}

type AddImageRequest struct {
	DataURL string `json:"data_url" validate:"required"`
	Caption string `json:"caption"`
}

type SetCoverRequest struct {
	ImageID string `json:"image_id" validate:"required,uuid4"`
}

type ReorderImagesRequest struct {
	ImageIDs []string `json:"image_ids" validate:"required,min=1,dive,uuid4"`
}

type BoatHandler struct {
	service  boat.Service
	validate *validator.Validate
}

func NewBoatHandler(service boat.Service) *BoatHandler {
	return &BoatHandler{service: service, validate: validator.New()}
}

func (h *BoatHandler) RegisterRoutes(router chi.Router) {
	// Boat listings and detail pages are public.
	router.Get("/boats", h.handleListBoats)
	router.Get("/boats/{id}", h.handleGetBoatByID)
	router.Get("/boats/slug/{slug}", h.handleGetBoatBySlug)

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(user.RoleAdmin))
		r.Post("/boats", h.handleCreateBoat)
		r.Put("/boats/{id}", h.handleUpdateBoat)
		r.Delete("/boats/{id}", h.handleDeleteBoat)
		r.Post("/boats/{id}/images", h.handleAddImage)
		r.Put("/boats/{id}/images/cover", h.handleSetCover)
		r.Put("/boats/{id}/images/order", h.handleReorderImages)
		r.Delete("/boats/{id}/images/{imageID}", h.handleRemoveImage)
	})
}

func (h *BoatHandler) handleListBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := h.service.ListBoats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list boats")
		return
	}
	respondWithJSON(w, http.StatusOK, boats)
}

func (h *BoatHandler) handleGetBoatByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	b, err := h.service.GetBoatByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to get boat")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleGetBoatBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "slug is required")
		return
	}

	b, err := h.service.GetBoatBySlug(r.Context(), slug)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to get boat")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleCreateBoat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBoatRequest(w, r)
	if !ok {
		return
	}

	b := boat.Boat{
		Code:            req.Code,
		Name:            req.Name,
		Active:          true,
		Summary:         req.Summary,
		AboutMd:         req.AboutMd,
		DeliveryNotesMd: req.DeliveryNotesMd,
	}
	if req.Active != nil {
		b.Active = *req.Active
	}

	created, err := h.service.CreateBoat(r.Context(), &b)
	if err != nil {
		if errors.Is(err, boat.ErrSlugExists) {
			respondWithError(w, http.StatusConflict, "a boat with this name already exists")
			return
		}
		log.Error().Err(err).Msg("handler: failed to create boat")
		respondWithError(w, mapErrorToStatusCode(err), "failed to create boat")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *BoatHandler) handleUpdateBoat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	req, ok := h.decodeBoatRequest(w, r)
	if !ok {
		return
	}

	b, err := h.service.GetBoatByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to get boat")
		return
	}

	b.Code = req.Code
	b.Name = req.Name
	b.Summary = req.Summary
	b.AboutMd = req.AboutMd
	b.DeliveryNotesMd = req.DeliveryNotesMd
	if req.Active != nil {
		b.Active = *req.Active
	}

	if err := h.service.UpdateBoat(r.Context(), b); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to update boat")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleDeleteBoat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	if err := h.service.DeleteBoat(r.Context(), id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to delete boat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoatHandler) handleAddImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	var req AddImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return
	}

	b, err := h.service.AddImage(r.Context(), id, boat.BoatImage{DataURL: req.DataURL, Caption: req.Caption})
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to add image")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleSetCover(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	var req SetCoverRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return
	}

	imageID, _ := uuid.FromString(req.ImageID)
	b, err := h.service.SetCoverImage(r.Context(), id, imageID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to set cover image")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleReorderImages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}

	var req ReorderImagesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return
	}

	orderedIDs := make([]uuid.UUID, len(req.ImageIDs))
	for i, raw := range req.ImageIDs {
		orderedIDs[i], _ = uuid.FromString(raw)
	}

	b, err := h.service.ReorderImages(r.Context(), id, orderedIDs)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to reorder images")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid boat id")
		return
	}
	imageID, err := uuid.FromString(chi.URLParam(r, "imageID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	b, err := h.service.RemoveImage(r.Context(), id, imageID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to remove image")
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BoatHandler) decodeBoatRequest(w http.ResponseWriter, r *http.Request) (*BoatRequest, bool) {
	var req BoatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		if !respondValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "internal validation error")
		}
		return nil, false
	}
	return &req, true
}
