// Package seed populates an empty database with demonstration data: one user
// per role, two boats, three orders across three statuses and one planned
// batch. Running it against a non-empty database is a no-op.
package seed

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/crawlingsloth/lonumirus/internal/batch"
	"github.com/crawlingsloth/lonumirus/internal/boat"
	"github.com/crawlingsloth/lonumirus/internal/order"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

const demoPassword = "demo123"

// Fixed ids keep the fixture stable across runs and referable from docs.
var (
	adminID    = uuid.Must(uuid.FromString("aaaaaaaa-0000-4000-8000-000000000001"))
	deliveryID = uuid.Must(uuid.FromString("aaaaaaaa-0000-4000-8000-000000000002"))
	customerID = uuid.Must(uuid.FromString("aaaaaaaa-0000-4000-8000-000000000003"))

	boatNejmaID   = uuid.Must(uuid.FromString("bbbbbbbb-0000-4000-8000-000000000001"))
	boatSunriseID = uuid.Must(uuid.FromString("bbbbbbbb-0000-4000-8000-000000000002"))

	order1ID = uuid.Must(uuid.FromString("cccccccc-0000-4000-8000-000000000001"))
	order2ID = uuid.Must(uuid.FromString("cccccccc-0000-4000-8000-000000000002"))
	order3ID = uuid.Must(uuid.FromString("cccccccc-0000-4000-8000-000000000003"))

	batch1ID = uuid.Must(uuid.FromString("dddddddd-0000-4000-8000-000000000001"))
)

type Seeder struct {
	users   user.Repository
	boats   boat.Repository
	orders  order.Repository
	batches batch.Repository
}

func New(users user.Repository, boats boat.Repository, orders order.Repository, batches batch.Repository) *Seeder {
	return &Seeder{users: users, boats: boats, orders: orders, batches: batches}
}

// Run seeds the database unless users already exist.
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("seed: failed to check for existing users: %w", err)
	}
	if len(existing) > 0 {
		log.Debug().Msg("seed: database already populated, skipping")
		return nil
	}

	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	if err := s.seedBoats(ctx); err != nil {
		return err
	}
	if err := s.seedOrders(ctx); err != nil {
		return err
	}
	if err := s.seedBatches(ctx); err != nil {
		return err
	}

	log.Info().Msg("seed: demonstration data loaded")
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: failed to hash demo password: %w", err)
	}

	users := []user.User{
		{ID: adminID, Email: "admin@example.com", Name: "Admin User", Role: user.RoleAdmin, PasswordHash: string(hash), Active: true},
		{ID: deliveryID, Email: "delivery@example.com", Name: "Delivery Driver", Role: user.RoleDelivery, PasswordHash: string(hash), Active: true},
		{ID: customerID, Email: "customer@example.com", Name: "Customer User", Role: user.RoleCustomer, PasswordHash: string(hash), Active: true},
	}
	for i := range users {
		if err := s.users.Create(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed: failed to create user %s: %w", users[i].Email, err)
		}
	}
	return nil
}

func (s *Seeder) seedBoats(ctx context.Context) error {
	boats := []boat.Boat{
		{
			ID:              boatNejmaID,
			Code:            "NEJ",
			Name:            "Nejma",
			Slug:            "nejma",
			Active:          true,
			Summary:         "Fast and reliable cargo boat serving Male and nearby islands",
			AboutMd:         "# About Nejma\n\nNejma is our flagship cargo boat, operating since 2010. Known for reliability and speed.",
			DeliveryNotesMd: "# Delivery Information\n\nDeliveries are made every Tuesday and Friday. Please ensure contact person is available.",
			Images: []boat.BoatImage{
				{
					ID:      uuid.Must(uuid.FromString("bbbbbbbb-1111-4000-8000-000000000001")),
					DataURL: placeholderImage("Nejma", "007bff"),
					Caption: "Nejma cargo boat",
					IsCover: true,
				},
			},
		},
		{
			ID:              boatSunriseID,
			Code:            "SUN",
			Name:            "Sunrise Express",
			Slug:            "sunrise-express",
			Active:          true,
			Summary:         "Premium express service with daily departures",
			AboutMd:         "# About Sunrise Express\n\nOur newest addition to the fleet, offering premium express delivery services.",
			DeliveryNotesMd: "# Delivery Information\n\nDaily departures at 8 AM. Same-day delivery available for orders placed before 6 AM.",
			Images: []boat.BoatImage{
				{
					ID:      uuid.Must(uuid.FromString("bbbbbbbb-1111-4000-8000-000000000002")),
					DataURL: placeholderImage("Sunrise Express", "ffc107"),
					Caption: "Sunrise Express",
					IsCover: true,
				},
			},
		},
	}
	for i := range boats {
		if err := s.boats.Create(ctx, &boats[i]); err != nil {
			return fmt.Errorf("seed: failed to create boat %s: %w", boats[i].Slug, err)
		}
	}
	return nil
}

func (s *Seeder) seedOrders(ctx context.Context) error {
	orders := []order.Order{
		{
			ID:              order1ID,
			ShortCode:       "001",
			CustomerID:      customerID,
			Status:          order.StatusSubmitted,
			Product:         order.Product{SKU: "CHILLI-250G", Name: "Chilli Paste 250g", PriceMvr: 50},
			Qty:             2,
			TotalMvr:        100,
			DestinationType: order.DestinationAddress,
			Address: &order.Address{
				AddressLine:  "H. Sunrise",
				Island:       "Thulusdhoo",
				Atoll:        "Kaafu",
				ContactName:  "Ahmed Ali",
				ContactPhone: "7778888",
			},
		},
		{
			ID:                 order2ID,
			ShortCode:          "002",
			CustomerID:         customerID,
			Status:             order.StatusPaymentConfirmed,
			Product:            order.Product{SKU: "CHILLI-500G", Name: "Chilli Paste 500g", PriceMvr: 90},
			Qty:                1,
			TotalMvr:           90,
			DestinationType:    order.DestinationBoat,
			BoatID:             &boatNejmaID,
			PaymentSlipDataURL: placeholderImage("Payment Slip", "28a745"),
		},
		{
			ID:              order3ID,
			ShortCode:       "003",
			CustomerID:      customerID,
			Status:          order.StatusPreparing,
			Product:         order.Product{SKU: "CHILLI-250G", Name: "Chilli Paste 250g", PriceMvr: 50},
			Qty:             3,
			TotalMvr:        150,
			DestinationType: order.DestinationBoat,
			BoatID:          &boatSunriseID,
		},
	}
	for i := range orders {
		if err := s.orders.Create(ctx, &orders[i]); err != nil {
			return fmt.Errorf("seed: failed to create order %s: %w", orders[i].ShortCode, err)
		}
	}
	return nil
}

func (s *Seeder) seedBatches(ctx context.Context) error {
	b := batch.Batch{
		ID:       batch1ID,
		Title:    "Morning Run - Oct 7",
		Status:   batch.StatusPlanning,
		OrderIDs: []uuid.UUID{order2ID, order3ID},
	}
	if err := s.batches.Create(ctx, &b); err != nil {
		return fmt.Errorf("seed: failed to create batch %s: %w", b.Title, err)
	}
	return nil
}

// placeholderImage builds an inline SVG data URL; real photos are uploaded
// through the API later.
func placeholderImage(label, color string) string {
	return fmt.Sprintf(`data:image/svg+xml,%%3Csvg xmlns="http://www.w3.org/2000/svg" width="400" height="300"%%3E%%3Crect fill="%%23%s" width="400" height="300"/%%3E%%3Ctext x="50%%25" y="50%%25" dominant-baseline="middle" text-anchor="middle" font-family="sans-serif" font-size="24" fill="white"%%3E%s%%3C/text%%3E%%3C/svg%%3E`, color, label)
}
