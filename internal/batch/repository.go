package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("batch not found")

type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	GetAll(ctx context.Context) ([]Batch, error)
	Update(ctx context.Context, b *Batch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, b *Batch) (err error) {
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
		INSERT INTO batches (id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err = tx.Exec(ctx, query, b.ID, b.Title, string(b.Status), b.CreatedAt, b.UpdatedAt); err != nil {
		return fmt.Errorf("repository: failed to insert batch: %w", err)
	}

	if err = insertMembers(ctx, tx, b.ID, b.OrderIDs); err != nil {
		return err
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	query := `SELECT id, title, status, created_at, updated_at FROM batches WHERE id = $1`

	var b Batch
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Title, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select batch by id %s: %w", id, err)
	}

	if b.OrderIDs, err = r.loadMembers(ctx, b.ID); err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]Batch, error) {
	query := `SELECT id, title, status, created_at, updated_at FROM batches ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query batches: %w", err)
	}
	defer rows.Close()

	batches := make([]Batch, 0)
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Title, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating batches: %w", err)
	}

	for i := range batches {
		if batches[i].OrderIDs, err = r.loadMembers(ctx, batches[i].ID); err != nil {
			return nil, err
		}
	}

	return batches, nil
}

// Update upserts the batch row and rewrites its membership list. The join
// table's primary key keeps membership a set regardless of caller input.
func (r *postgresRepository) Update(ctx context.Context, b *Batch) (err error) {
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
		INSERT INTO batches (id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	if _, err = tx.Exec(ctx, query, b.ID, b.Title, string(b.Status), b.CreatedAt, b.UpdatedAt); err != nil {
		return fmt.Errorf("repository: failed to upsert batch %s: %w", b.ID, err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM batch_orders WHERE batch_id = $1`, b.ID); err != nil {
		return fmt.Errorf("repository: failed to clear batch members for %s: %w", b.ID, err)
	}
	if err = insertMembers(ctx, tx, b.ID, b.OrderIDs); err != nil {
		return err
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete batch %s: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) loadMembers(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT order_id FROM batch_orders WHERE batch_id = $1 ORDER BY position`

	rows, err := r.db.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query batch members for %s: %w", batchID, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: failed to scan batch member for %s: %w", batchID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating batch members for %s: %w", batchID, err)
	}

	return ids, nil
}

func insertMembers(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, orderIDs []uuid.UUID) error {
	query := `
		INSERT INTO batch_orders (batch_id, order_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (batch_id, order_id) DO NOTHING
	`
	for i, orderID := range orderIDs {
		if _, err := tx.Exec(ctx, query, batchID, orderID, i); err != nil {
			return fmt.Errorf("repository: failed to insert batch member %s: %w", orderID, err)
		}
	}
	return nil
}
