package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/boat"
	"github.com/crawlingsloth/lonumirus/internal/order"
)

var ErrOrderNotEligible = errors.New("order is not eligible for batching")

type Service interface {
	CreateBatch(ctx context.Context, title string) (*Batch, error)
	GetBatchByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	ListBatches(ctx context.Context) ([]Batch, error)
	UpdateBatchStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteBatch(ctx context.Context, id uuid.UUID) error

	AddOrders(ctx context.Context, batchID uuid.UUID, orderIDs []uuid.UUID) (*Batch, error)
	RemoveOrder(ctx context.Context, batchID, orderID uuid.UUID) (*Batch, error)
	Manifest(ctx context.Context, batchID uuid.UUID) ([]Group, error)
}

type service struct {
	repo   Repository
	orders order.Repository
	boats  boat.Repository
}

func NewService(repo Repository, orders order.Repository, boats boat.Repository) Service {
	return &service{repo: repo, orders: orders, boats: boats}
}

func (s *service) CreateBatch(ctx context.Context, title string) (*Batch, error) {
	if title == "" {
		return nil, errors.New("service: batch title cannot be empty")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate batch ID: %w", err)
	}

	b := &Batch{
		ID:       id,
		Title:    title,
		Status:   StatusPlanning,
		OrderIDs: []uuid.UUID{},
	}

	if err := s.repo.Create(ctx, b); err != nil {
		log.Error().Err(err).Msg("service: failed to create batch in repository")
		return nil, fmt.Errorf("service: failed to create batch: %w", err)
	}

	log.Info().Stringer("batch_id", b.ID).Str("title", b.Title).Msg("service: batch created")
	return b, nil
}

func (s *service) GetBatchByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("batch_id", id).Msg("service: failed to fetch batch by id")
		return nil, fmt.Errorf("service: failed to fetch batch by id: %w", err)
	}
	return b, nil
}

func (s *service) ListBatches(ctx context.Context) ([]Batch, error) {
	batches, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list batches")
		return nil, fmt.Errorf("service: failed to list batches: %w", err)
	}
	return batches, nil
}

// UpdateBatchStatus sets the batch status. Batches have no transition
// allow-list; any valid status may follow any other.
func (s *service) UpdateBatchStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("service: invalid batch status %q", status)
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to fetch batch for status update: %w", err)
	}

	b.Status = status
	if err := s.repo.Update(ctx, b); err != nil {
		log.Error().Err(err).Stringer("batch_id", id).Msg("service: failed to update batch status")
		return fmt.Errorf("service: failed to update batch status: %w", err)
	}

	log.Info().Stringer("batch_id", id).Str("status", status.String()).Msg("service: batch status updated")
	return nil
}

func (s *service) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Stringer("batch_id", id).Msg("service: failed to delete batch")
		return fmt.Errorf("service: failed to delete batch: %w", err)
	}
	return nil
}

// AddOrders extends batch membership. Each order must currently be in
// payment_confirmed or preparing; ids already in the batch are silently
// skipped (set-union semantics).
func (s *service) AddOrders(ctx context.Context, batchID uuid.UUID, orderIDs []uuid.UUID) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch batch for membership change: %w", err)
	}

	for _, orderID := range orderIDs {
		if b.Contains(orderID) {
			continue
		}

		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return nil, order.ErrNotFound
			}
			return nil, fmt.Errorf("service: failed to fetch order for membership check: %w", err)
		}

		if !Eligible(o.Status) {
			log.Warn().
				Stringer("batch_id", batchID).
				Stringer("order_id", orderID).
				Str("status", o.Status.String()).
				Msg("service: order not eligible for batch")
			return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotEligible, orderID, o.Status)
		}

		b.OrderIDs = append(b.OrderIDs, orderID)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		log.Error().Err(err).Stringer("batch_id", batchID).Msg("service: failed to persist batch membership")
		return nil, fmt.Errorf("service: failed to persist batch membership: %w", err)
	}

	return b, nil
}

// RemoveOrder drops an order from the batch unconditionally; removing an id
// that is not a member is a no-op.
func (s *service) RemoveOrder(ctx context.Context, batchID, orderID uuid.UUID) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch batch for membership change: %w", err)
	}

	kept := b.OrderIDs[:0]
	for _, id := range b.OrderIDs {
		if id != orderID {
			kept = append(kept, id)
		}
	}
	b.OrderIDs = kept

	if err := s.repo.Update(ctx, b); err != nil {
		log.Error().Err(err).Stringer("batch_id", batchID).Msg("service: failed to persist batch membership")
		return nil, fmt.Errorf("service: failed to persist batch membership: %w", err)
	}

	return b, nil
}

// Manifest resolves the batch's orders and groups them by destination.
// Grouping is recomputed on every read; nothing about it is persisted.
func (s *service) Manifest(ctx context.Context, batchID uuid.UUID) ([]Group, error) {
	b, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch batch for manifest: %w", err)
	}

	orders, err := s.orders.GetByIDs(ctx, b.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve batch orders: %w", err)
	}

	boats, err := s.boats.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load boats for manifest: %w", err)
	}

	boatNames := make(map[uuid.UUID]string, len(boats))
	for _, bt := range boats {
		boatNames[bt.ID] = bt.Name
	}

	return GroupByDestination(orders, boatNames), nil
}
