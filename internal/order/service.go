package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownProduct    = errors.New("unknown product sku")
	ErrInvalidQty        = errors.New("quantity must be positive")
	ErrInvalidDest       = errors.New("destination does not match destination type")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// CreateOrderInput carries everything a customer supplies for a new order.
// Product price and total are never taken from the caller; they are derived
// from the catalog snapshot.
type CreateOrderInput struct {
	CustomerID         uuid.UUID
	ProductSKU         string
	Qty                int
	DestinationType    DestinationType
	BoatID             *uuid.UUID
	Address            *Address
	PaymentSlipDataURL string
	Notes              string
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	GetOrdersByStatus(ctx context.Context, status Status) ([]Order, error)
	GetOrdersByBoat(ctx context.Context, boatID uuid.UUID) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus Status) error
}

type service struct {
	repo       Repository
	shortCodes ShortCodeAllocator
}

func NewService(repo Repository, shortCodes ShortCodeAllocator) Service {
	return &service{repo: repo, shortCodes: shortCodes}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if input.Qty <= 0 {
		return nil, ErrInvalidQty
	}

	product, ok := ProductBySKU(input.ProductSKU)
	if !ok {
		return nil, ErrUnknownProduct
	}

	// Exactly one of boat/address, matching the destination type.
	switch input.DestinationType {
	case DestinationBoat:
		if input.BoatID == nil || input.Address != nil {
			return nil, ErrInvalidDest
		}
	case DestinationAddress:
		if input.Address == nil || input.BoatID != nil {
			return nil, ErrInvalidDest
		}
	default:
		return nil, ErrInvalidDest
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	shortCode, err := s.shortCodes.Next(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to allocate short code")
		return nil, fmt.Errorf("service: failed to allocate short code: %w", err)
	}

	o := &Order{
		ID:                 id,
		ShortCode:          shortCode,
		CustomerID:         input.CustomerID,
		Status:             StatusSubmitted,
		Product:            product,
		Qty:                input.Qty,
		TotalMvr:           product.PriceMvr * int64(input.Qty),
		DestinationType:    input.DestinationType,
		BoatID:             input.BoatID,
		Address:            input.Address,
		PaymentSlipDataURL: input.PaymentSlipDataURL,
		Notes:              input.Notes,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("customer_id", o.CustomerID).
		Str("short_code", o.ShortCode).
		Msg("service: order created")

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.GetByCustomer(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Stringer("customer_id", customerID).Msg("service: failed to fetch customer orders")
		return nil, fmt.Errorf("service: failed to fetch customer orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrdersByStatus(ctx context.Context, status Status) ([]Order, error) {
	orders, err := s.repo.GetByStatus(ctx, status)
	if err != nil {
		log.Error().Err(err).Str("status", status.String()).Msg("service: failed to fetch orders by status")
		return nil, fmt.Errorf("service: failed to fetch orders by status: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrdersByBoat(ctx context.Context, boatID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.GetByBoat(ctx, boatID)
	if err != nil {
		log.Error().Err(err).Stringer("boat_id", boatID).Msg("service: failed to fetch orders by boat")
		return nil, fmt.Errorf("service: failed to fetch orders by boat: %w", err)
	}
	return orders, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus Status) error {
	if !newStatus.Valid() {
		return ErrInvalidTransition
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if !CanTransition(current.Status, newStatus) {
		log.Warn().
			Stringer("order_id", id).
			Str("current_status", current.Status.String()).
			Str("new_status", newStatus.String()).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", id).
		Str("old_status", current.Status.String()).
		Str("new_status", newStatus.String()).
		Msg("service: order status updated")

	return nil
}
