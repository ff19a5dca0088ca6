package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crawlingsloth/lonumirus/internal/order"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{"submitted to payment_confirmed", order.StatusSubmitted, order.StatusPaymentConfirmed, true},
		{"submitted to cancelled", order.StatusSubmitted, order.StatusCancelled, true},
		{"submitted to preparing skips payment", order.StatusSubmitted, order.StatusPreparing, false},
		{"submitted to delivered skips everything", order.StatusSubmitted, order.StatusDelivered, false},
		{"payment_confirmed to preparing", order.StatusPaymentConfirmed, order.StatusPreparing, true},
		{"payment_confirmed to cancelled", order.StatusPaymentConfirmed, order.StatusCancelled, true},
		{"payment_confirmed back to submitted", order.StatusPaymentConfirmed, order.StatusSubmitted, false},
		{"preparing to delivered", order.StatusPreparing, order.StatusDelivered, true},
		{"preparing to cancelled", order.StatusPreparing, order.StatusCancelled, true},
		{"preparing back to payment_confirmed", order.StatusPreparing, order.StatusPaymentConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, order.CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	all := []order.Status{
		order.StatusSubmitted,
		order.StatusPaymentConfirmed,
		order.StatusPreparing,
		order.StatusDelivered,
		order.StatusCancelled,
	}

	for _, target := range all {
		assert.False(t, order.CanTransition(order.StatusDelivered, target), "delivered is terminal")
		assert.False(t, order.CanTransition(order.StatusCancelled, target), "cancelled is terminal")
	}
}

func TestCanTransition_NoSelfTransitions(t *testing.T) {
	all := []order.Status{
		order.StatusSubmitted,
		order.StatusPaymentConfirmed,
		order.StatusPreparing,
		order.StatusDelivered,
		order.StatusCancelled,
	}

	for _, s := range all {
		assert.False(t, order.CanTransition(s, s), "no self transition for %s", s)
	}
}

func TestFormatShortCode(t *testing.T) {
	assert.Equal(t, "000", order.FormatShortCode(0))
	assert.Equal(t, "001", order.FormatShortCode(1))
	assert.Equal(t, "042", order.FormatShortCode(42))
	assert.Equal(t, "999", order.FormatShortCode(999))
	// Past three digits the code simply widens.
	assert.Equal(t, "1000", order.FormatShortCode(1000))
}

func TestProductBySKU(t *testing.T) {
	p, ok := order.ProductBySKU("CHILLI-250G")
	assert.True(t, ok)
	assert.Equal(t, "Chilli Paste 250g", p.Name)
	assert.Equal(t, int64(75), p.PriceMvr)

	_, ok = order.ProductBySKU("CHILLI-1KG")
	assert.False(t, ok)
}
