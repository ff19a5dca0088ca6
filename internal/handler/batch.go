package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/batch"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type CreateBatchRequest struct {
	Title string `json:"title" validate:"required,min=2"`
}

type UpdateBatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=planning loading out completed cancelled"`
}

type AddBatchOrdersRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,dive,uuid4"`
}

type BatchHandler struct {
	service  batch.Service
	validate *validator.Validate
}

func NewBatchHandler(service batch.Service) *BatchHandler {
	return &BatchHandler{service: service, validate: validator.New()}
}

func (h *BatchHandler) RegisterRoutes(router chi.Router) {
	// Delivery crew reads batches and manifests; membership and status are
	// admin operations.
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(user.RoleAdmin, user.RoleDelivery))
		r.Get("/batches", h.handleListBatches)
		r.Get("/batches/{id}", h.handleGetBatchByID)
		r.Get("/batches/{id}/manifest", h.handleManifest)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(user.RoleAdmin))
		r.Post("/batches", h.handleCreateBatch)
		r.Patch("/batches/{id}/status", h.handleUpdateStatus)
		r.Post("/batches/{id}/orders", h.handleAddOrders)
		r.Delete("/batches/{id}/orders/{orderID}", h.handleRemoveOrder)
		r.Delete("/batches/{id}", h.handleDeleteBatch)
	})
}

func (h *BatchHandler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
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

	b, err := h.service.CreateBatch(r.Context(), req.Title)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to create batch")
		respondWithError(w, http.StatusInternalServerError, "failed to create batch")
		return
	}

	respondWithJSON(w, http.StatusCreated, b)
}

func (h *BatchHandler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListBatches(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	respondWithJSON(w, http.StatusOK, batches)
}

func (h *BatchHandler) handleGetBatchByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	b, err := h.service.GetBatchByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "batch not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get batch")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

func (h *BatchHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	var req UpdateBatchStatusRequest
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

	if err := h.service.UpdateBatchStatus(r.Context(), id, batch.Status(req.Status)); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to update batch status")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BatchHandler) handleAddOrders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	var req AddBatchOrdersRequest
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

	orderIDs := make([]uuid.UUID, len(req.OrderIDs))
	for i, raw := range req.OrderIDs {
		orderIDs[i], _ = uuid.FromString(raw)
	}

	b, err := h.service.AddOrders(r.Context(), id, orderIDs)
	if err != nil {
		if errors.Is(err, batch.ErrOrderNotEligible) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondWithError(w, mapErrorToStatusCode(err), "failed to add orders to batch")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

func (h *BatchHandler) handleRemoveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	orderID, err := uuid.FromString(chi.URLParam(r, "orderID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	b, err := h.service.RemoveOrder(r.Context(), id, orderID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to remove order from batch")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

// handleManifest returns the batch's orders grouped by destination, as used
// by the printed manifest and labels.
func (h *BatchHandler) handleManifest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	groups, err := h.service.Manifest(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to build manifest")
		return
	}

	respondWithJSON(w, http.StatusOK, groups)
}

func (h *BatchHandler) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	if err := h.service.DeleteBatch(r.Context(), id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
