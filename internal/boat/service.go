package boat

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateBoat(ctx context.Context, b *Boat) (*Boat, error)
	GetBoatByID(ctx context.Context, id uuid.UUID) (*Boat, error)
	GetBoatBySlug(ctx context.Context, slug string) (*Boat, error)
	ListBoats(ctx context.Context) ([]Boat, error)
	UpdateBoat(ctx context.Context, b *Boat) error
	DeleteBoat(ctx context.Context, id uuid.UUID) error

	AddImage(ctx context.Context, boatID uuid.UUID, img BoatImage) (*Boat, error)
	SetCoverImage(ctx context.Context, boatID, imageID uuid.UUID) (*Boat, error)
	RemoveImage(ctx context.Context, boatID, imageID uuid.UUID) (*Boat, error)
	ReorderImages(ctx context.Context, boatID uuid.UUID, orderedIDs []uuid.UUID) (*Boat, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBoat(ctx context.Context, b *Boat) (*Boat, error) {
	if b.Name == "" {
		return nil, errors.New("service: boat name cannot be empty")
	}

	if b.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate boat ID: %w", err)
		}
		b.ID = id
	}

	// Slug is always derived from the name, never supplied by the caller.
	b.Slug = Slugify(b.Name)
	b.renumber()

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlugExists) {
			return nil, ErrSlugExists
		}
		log.Error().Err(err).Msg("service: failed to create boat in repository")
		return nil, fmt.Errorf("service: failed to create boat: %w", err)
	}

	log.Info().Stringer("boat_id", b.ID).Str("slug", b.Slug).Msg("service: boat created")
	return b, nil
}

func (s *service) GetBoatByID(ctx context.Context, id uuid.UUID) (*Boat, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("boat_id", id).Msg("service: failed to fetch boat by id")
		return nil, fmt.Errorf("service: failed to fetch boat by id: %w", err)
	}
	return b, nil
}

func (s *service) GetBoatBySlug(ctx context.Context, slug string) (*Boat, error) {
	b, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to fetch boat by slug")
		return nil, fmt.Errorf("service: failed to fetch boat by slug: %w", err)
	}
	return b, nil
}

func (s *service) ListBoats(ctx context.Context) ([]Boat, error) {
	boats, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list boats")
		return nil, fmt.Errorf("service: failed to list boats: %w", err)
	}
	return boats, nil
}

func (s *service) UpdateBoat(ctx context.Context, b *Boat) error {
	if b.Name == "" {
		return errors.New("service: boat name cannot be empty")
	}
	b.Slug = Slugify(b.Name)

	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, ErrSlugExists) {
			return ErrSlugExists
		}
		log.Error().Err(err).Stringer("boat_id", b.ID).Msg("service: failed to update boat")
		return fmt.Errorf("service: failed to update boat: %w", err)
	}

	return nil
}

func (s *service) DeleteBoat(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Stringer("boat_id", id).Msg("service: failed to delete boat")
		return fmt.Errorf("service: failed to delete boat: %w", err)
	}
	return nil
}

func (s *service) AddImage(ctx context.Context, boatID uuid.UUID, img BoatImage) (*Boat, error) {
	return s.mutateImages(ctx, boatID, func(b *Boat) error {
		if img.ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("service: failed to generate image ID: %w", err)
			}
			img.ID = id
		}
		b.AddImages(img)
		return nil
	})
}

func (s *service) SetCoverImage(ctx context.Context, boatID, imageID uuid.UUID) (*Boat, error) {
	return s.mutateImages(ctx, boatID, func(b *Boat) error {
		return b.SetCover(imageID)
	})
}

func (s *service) RemoveImage(ctx context.Context, boatID, imageID uuid.UUID) (*Boat, error) {
	return s.mutateImages(ctx, boatID, func(b *Boat) error {
		return b.RemoveImage(imageID)
	})
}

func (s *service) ReorderImages(ctx context.Context, boatID uuid.UUID, orderedIDs []uuid.UUID) (*Boat, error) {
	return s.mutateImages(ctx, boatID, func(b *Boat) error {
		return b.Reorder(orderedIDs)
	})
}

func (s *service) mutateImages(ctx context.Context, boatID uuid.UUID, mutate func(*Boat) error) (*Boat, error) {
	b, err := s.repo.GetByID(ctx, boatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch boat for image change: %w", err)
	}

	if err := mutate(b); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		log.Error().Err(err).Stringer("boat_id", boatID).Msg("service: failed to persist image change")
		return nil, fmt.Errorf("service: failed to persist image change: %w", err)
	}

	return b, nil
}
