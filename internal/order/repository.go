package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error)
	GetAll(ctx context.Context) ([]Order, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	GetByStatus(ctx context.Context, status Status) ([]Order, error)
	GetByBoat(ctx context.Context, boatID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `
	id, short_code, customer_id, status,
	product_sku, product_name, product_price_mvr, qty, total_mvr,
	destination_type, boat_id,
	address_line, island, atoll, contact_name, contact_phone,
	payment_slip_data_url, notes, created_at, updated_at
`

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	var addressLine, island, atoll, contactName, contactPhone *string
	if o.Address != nil {
		addressLine = &o.Address.AddressLine
		island = &o.Address.Island
		atoll = &o.Address.Atoll
		contactName = &o.Address.ContactName
		contactPhone = &o.Address.ContactPhone
	}

	_, err := r.db.Exec(ctx, query,
		o.ID, o.ShortCode, o.CustomerID, string(o.Status),
		o.Product.SKU, o.Product.Name, o.Product.PriceMvr, o.Qty, o.TotalMvr,
		string(o.DestinationType), o.BoatID,
		addressLine, island, atoll, contactName, contactPhone,
		nullable(o.PaymentSlipDataURL), nullable(o.Notes), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	return o, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error) {
	if len(ids) == 0 {
		return []Order{}, nil
	}
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ANY($1) ORDER BY created_at`, ids)
}

func (r *postgresRepository) GetAll(ctx context.Context) ([]Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *postgresRepository) GetByStatus(ctx context.Context, status Status) ([]Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

func (r *postgresRepository) GetByBoat(ctx context.Context, boatID uuid.UUID) ([]Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE boat_id = $1 ORDER BY created_at DESC`, boatID)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %s: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var addressLine, island, atoll, contact, phone *string
	var paymentSlip, notes *string

	err := row.Scan(
		&o.ID, &o.ShortCode, &o.CustomerID, &o.Status,
		&o.Product.SKU, &o.Product.Name, &o.Product.PriceMvr, &o.Qty, &o.TotalMvr,
		&o.DestinationType, &o.BoatID,
		&addressLine, &island, &atoll, &contact, &phone,
		&paymentSlip, &notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.DestinationType == DestinationAddress {
		o.Address = &Address{
			AddressLine:  deref(addressLine),
			Island:       deref(island),
			Atoll:        deref(atoll),
			ContactName:  deref(contact),
			ContactPhone: deref(phone),
		}
	}
	o.PaymentSlipDataURL = deref(paymentSlip)
	o.Notes = deref(notes)

	return &o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
