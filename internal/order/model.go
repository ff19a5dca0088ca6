package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusSubmitted        Status = "submitted"
	StatusPaymentConfirmed Status = "payment_confirmed"
	StatusPreparing        Status = "preparing"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusPaymentConfirmed, StatusPreparing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions is the whole order lifecycle: submitted moves forward
// through payment_confirmed and preparing to delivered, cancellation is
// possible from any non-terminal status, and delivered/cancelled are
// terminal. No backward moves, no self-transitions.
var allowedTransitions = map[Status]map[Status]bool{
	StatusSubmitted: {
		StatusPaymentConfirmed: true,
		StatusCancelled:        true,
	},
	StatusPaymentConfirmed: {
		StatusPreparing: true,
		StatusCancelled: true,
	},
	StatusPreparing: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether the order lifecycle permits a move between
// the two statuses. Pure and total over the status enum.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

type DestinationType string

const (
	DestinationBoat    DestinationType = "boat"
	DestinationAddress DestinationType = "address"
)

// Product is a snapshot of a catalog entry, embedded into the order at
// creation time. Prices are whole rufiyaa.
type Product struct {
	SKU      string `json:"sku" db:"product_sku"`
	Name     string `json:"name" db:"product_name"`
	PriceMvr int64  `json:"price_mvr" db:"product_price_mvr"`
}

// Catalog is the fixed product list orders are created from.
var Catalog = []Product{
	{SKU: "CHILLI-250G", Name: "Chilli Paste 250g", PriceMvr: 75},
	{SKU: "CHILLI-500G", Name: "Chilli Paste 500g", PriceMvr: 140},
}

// ProductBySKU looks up a catalog entry.
func ProductBySKU(sku string) (Product, bool) {
	for _, p := range Catalog {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

type Address struct {
	AddressLine  string `json:"address_line" db:"address_line"`
	Island       string `json:"island" db:"island"`
	Atoll        string `json:"atoll" db:"atoll"`
	ContactName  string `json:"contact_name" db:"contact_name"`
	ContactPhone string `json:"contact_phone" db:"contact_phone"`
}

type Order struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	ShortCode          string          `json:"short_code" db:"short_code"`
	CustomerID         uuid.UUID       `json:"customer_id" db:"customer_id"`
	Status             Status          `json:"status" db:"status"`
	Product            Product         `json:"product"`
	Qty                int             `json:"qty" db:"qty"`
	TotalMvr           int64           `json:"total_mvr" db:"total_mvr"`
	DestinationType    DestinationType `json:"destination_type" db:"destination_type"`
	BoatID             *uuid.UUID      `json:"boat_id,omitempty" db:"boat_id"`
	Address            *Address        `json:"address,omitempty"`
	PaymentSlipDataURL string          `json:"payment_slip_data_url,omitempty" db:"payment_slip_data_url"`
	Notes              string          `json:"notes,omitempty" db:"notes"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}
