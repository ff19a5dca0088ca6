package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ShortCodeAllocator hands out day-scoped display codes for new orders.
// Codes restart at "000" each calendar day; the order's primary id remains
// the uniqueness anchor.
type ShortCodeAllocator interface {
	Next(ctx context.Context) (string, error)
}

type pgShortCodeAllocator struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewShortCodeAllocator(db *pgxpool.Pool) ShortCodeAllocator {
	return newShortCodeAllocator(db, time.Now)
}

func newShortCodeAllocator(db *pgxpool.Pool, now func() time.Time) *pgShortCodeAllocator {
	return &pgShortCodeAllocator{db: db, now: now}
}

// day returns the counter row key for the current moment. Days roll over at
// UTC midnight regardless of server locale; a fresh key means a fresh row,
// whose insert seeds the sequence back at "000".
func (a *pgShortCodeAllocator) day() string {
	return a.now().UTC().Format("2006-01-02")
}

// Next increments today's counter and returns the pre-increment value,
// formatted. The read-modify-write happens in a single statement, so
// concurrent calls cannot hand out the same code.
func (a *pgShortCodeAllocator) Next(ctx context.Context) (string, error) {
	day := a.day()

	query := `
		INSERT INTO daily_counters (day, next) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET next = daily_counters.next + 1
		RETURNING next - 1
	`
	var seq int
	if err := a.db.QueryRow(ctx, query, day).Scan(&seq); err != nil {
		return "", fmt.Errorf("shortcode: failed to advance counter for %s: %w", day, err)
	}

	return FormatShortCode(seq), nil
}

// FormatShortCode renders a sequence number as a zero-padded 3-digit code.
// Values past 999 simply widen.
func FormatShortCode(seq int) string {
	return fmt.Sprintf("%03d", seq)
}
