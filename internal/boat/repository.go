package boat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("boat not found")
	ErrSlugExists = errors.New("boat slug already exists")
)

type Repository interface {
	Create(ctx context.Context, b *Boat) error
	GetByID(ctx context.Context, id uuid.UUID) (*Boat, error)
	GetBySlug(ctx context.Context, slug string) (*Boat, error)
	GetAll(ctx context.Context) ([]Boat, error)
	Update(ctx context.Context, b *Boat) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, b *Boat) (err error) {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		INSERT INTO boats (id, code, name, slug, active, summary, about_md, delivery_notes_md, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		b.ID, b.Code, b.Name, b.Slug, b.Active, b.Summary, b.AboutMd, b.DeliveryNotesMd, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlugExists
		}
		return fmt.Errorf("repository: failed to insert boat: %w", err)
	}

	if err = insertImages(ctx, tx, b.ID, b.Images); err != nil {
		return err
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Boat, error) {
	query := `
		SELECT id, code, name, slug, active, summary, about_md, delivery_notes_md, created_at, updated_at
		FROM boats
		WHERE id = $1
	`
	b, err := scanBoat(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select boat by id %s: %w", id, err)
	}

	if b.Images, err = r.loadImages(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Boat, error) {
	query := `
		SELECT id, code, name, slug, active, summary, about_md, delivery_notes_md, created_at, updated_at
		FROM boats
		WHERE slug = $1
	`
	b, err := scanBoat(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select boat by slug %s: %w", slug, err)
	}

	if b.Images, err = r.loadImages(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]Boat, error) {
	query := `
		SELECT id, code, name, slug, active, summary, about_md, delivery_notes_md, created_at, updated_at
		FROM boats
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query boats: %w", err)
	}
	defer rows.Close()

	boats := make([]Boat, 0)
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan boat: %w", err)
		}
		boats = append(boats, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating boats: %w", err)
	}

	for i := range boats {
		if boats[i].Images, err = r.loadImages(ctx, boats[i].ID); err != nil {
			return nil, err
		}
	}

	return boats, nil
}

// Update upserts the boat row and replaces its image set wholesale; the
// aggregate in memory is the source of truth for gallery state.
func (r *postgresRepository) Update(ctx context.Context, b *Boat) (err error) {
	b.UpdatedAt = time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = b.UpdatedAt
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		INSERT INTO boats (id, code, name, slug, active, summary, about_md, delivery_notes_md, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			active = EXCLUDED.active,
			summary = EXCLUDED.summary,
			about_md = EXCLUDED.about_md,
			delivery_notes_md = EXCLUDED.delivery_notes_md,
			updated_at = EXCLUDED.updated_at
	`
	_, err = tx.Exec(ctx, query,
		b.ID, b.Code, b.Name, b.Slug, b.Active, b.Summary, b.AboutMd, b.DeliveryNotesMd, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlugExists
		}
		return fmt.Errorf("repository: failed to upsert boat %s: %w", b.ID, err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM boat_images WHERE boat_id = $1`, b.ID); err != nil {
		return fmt.Errorf("repository: failed to clear boat images for %s: %w", b.ID, err)
	}
	if err = insertImages(ctx, tx, b.ID, b.Images); err != nil {
		return err
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM boats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete boat %s: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) loadImages(ctx context.Context, boatID uuid.UUID) ([]BoatImage, error) {
	query := `
		SELECT id, data_url, caption, sort_order, is_cover
		FROM boat_images
		WHERE boat_id = $1
		ORDER BY sort_order
	`
	rows, err := r.db.Query(ctx, query, boatID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query boat images for %s: %w", boatID, err)
	}
	defer rows.Close()

	images := make([]BoatImage, 0)
	for rows.Next() {
		var img BoatImage
		if err := rows.Scan(&img.ID, &img.DataURL, &img.Caption, &img.SortOrder, &img.IsCover); err != nil {
			return nil, fmt.Errorf("repository: failed to scan boat image for %s: %w", boatID, err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating boat images for %s: %w", boatID, err)
	}

	return images, nil
}

func insertImages(ctx context.Context, tx pgx.Tx, boatID uuid.UUID, images []BoatImage) error {
	query := `
		INSERT INTO boat_images (id, boat_id, data_url, caption, sort_order, is_cover)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, img := range images {
		if _, err := tx.Exec(ctx, query, img.ID, boatID, img.DataURL, img.Caption, img.SortOrder, img.IsCover); err != nil {
			return fmt.Errorf("repository: failed to insert boat image %s: %w", img.ID, err)
		}
	}
	return nil
}

func scanBoat(row pgx.Row) (*Boat, error) {
	var b Boat
	err := row.Scan(&b.ID, &b.Code, &b.Name, &b.Slug, &b.Active, &b.Summary, &b.AboutMd, &b.DeliveryNotesMd, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
