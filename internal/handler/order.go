package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/order"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type AddressPayload struct {
	AddressLine  string `json:"address_line" validate:"required"`
	Island       string `json:"island" validate:"required"`
	Atoll        string `json:"atoll" validate:"required"`
	ContactName  string `json:"contact_name" validate:"required"`
	ContactPhone string `json:"contact_phone" validate:"required"`
}

type CreateOrderRequest struct {
	ProductSKU         string          `json:"product_sku" validate:"required"`
	Qty                int             `json:"qty" validate:"required,gt=0"`
	DestinationType    string          `json:"destination_type" validate:"required,oneof=boat address"`
	BoatID             *string         `json:"boat_id,omitempty" validate:"omitempty,uuid4"`
	Address            *AddressPayload `json:"address,omitempty"`
	PaymentSlipDataURL string          `json:"payment_slip_data_url,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=submitted payment_confirmed preparing delivered cancelled"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/orders", h.handleCreateOrder)
		r.Get("/orders", h.handleListOrders)
		r.Get("/orders/{id}", h.handleGetOrderByID)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(user.RoleAdmin, user.RoleDelivery))
		r.Patch("/orders/{id}/status", h.handleUpdateStatus)
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
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

	claims := auth.ClaimsFromContext(r.Context())

	input := order.CreateOrderInput{
		CustomerID:         claims.UserID,
		ProductSKU:         req.ProductSKU,
		Qty:                req.Qty,
		DestinationType:    order.DestinationType(req.DestinationType),
		PaymentSlipDataURL: req.PaymentSlipDataURL,
		Notes:              req.Notes,
	}
	if req.BoatID != nil {
		boatID, err := uuid.FromString(*req.BoatID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid boat id")
			return
		}
		input.BoatID = &boatID
	}
	if req.Address != nil {
		input.Address = &order.Address{
			AddressLine:  req.Address.AddressLine,
			Island:       req.Address.Island,
			Atoll:        req.Address.Atoll,
			ContactName:  req.Address.ContactName,
			ContactPhone: req.Address.ContactPhone,
		}
	}

	o, err := h.service.CreateOrder(r.Context(), input)
	if err != nil {
		log.Warn().Err(err).Msg("handler: failed to create order")
		respondWithError(w, mapErrorToStatusCode(err), "failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

// handleListOrders serves the admin/delivery order list with optional status
// and boat filters. Customers only ever see their own orders.
func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	if claims.Role == user.RoleCustomer {
		orders, err := h.service.GetOrdersByCustomer(r.Context(), claims.UserID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list orders")
			return
		}
		respondWithJSON(w, http.StatusOK, orders)
		return
	}

	var (
		orders []order.Order
		err    error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		orders, err = h.service.GetOrdersByStatus(r.Context(), order.Status(r.URL.Query().Get("status")))
	case r.URL.Query().Get("boat_id") != "":
		var boatID uuid.UUID
		boatID, err = uuid.FromString(r.URL.Query().Get("boat_id"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid boat id")
			return
		}
		orders, err = h.service.GetOrdersByBoat(r.Context(), boatID)
	case r.URL.Query().Get("customer_id") != "":
		var customerID uuid.UUID
		customerID, err = uuid.FromString(r.URL.Query().Get("customer_id"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid customer id")
			return
		}
		orders, err = h.service.GetOrdersByCustomer(r.Context(), customerID)
	default:
		orders, err = h.service.ListOrders(r.Context())
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims.Role == user.RoleCustomer && o.CustomerID != claims.UserID {
		respondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
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

	if err := h.service.UpdateOrderStatus(r.Context(), id, order.Status(req.Status)); err != nil {
		if errors.Is(err, order.ErrInvalidTransition) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondWithError(w, mapErrorToStatusCode(err), "failed to update order status")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
