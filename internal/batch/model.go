package batch

import (
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid"

	"github.com/crawlingsloth/lonumirus/internal/order"
)

type Status string

// Batch statuses model an operational run, not a strict workflow: any status
// may be set from any other.
const (
	StatusPlanning  Status = "planning"
	StatusLoading   Status = "loading"
	StatusOut       Status = "out"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusLoading, StatusOut, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Batch struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Status    Status      `json:"status" db:"status"`
	OrderIDs  []uuid.UUID `json:"order_ids"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Eligible reports whether an order in the given status may be added to a
// batch. Only paid-for orders that are not yet out the door qualify.
func Eligible(status order.Status) bool {
	return status == order.StatusPaymentConfirmed || status == order.StatusPreparing
}

func (b *Batch) Contains(orderID uuid.UUID) bool {
	for _, id := range b.OrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}

// Group is a set of batch orders sharing a destination, as printed on
// manifests and labels.
type Group struct {
	Key    string        `json:"key"`
	Orders []order.Order `json:"orders"`
}

// GroupByDestination buckets orders by destination: boat-destined orders
// under "Boat: <name>" ("Boat: Unknown" when the boat no longer resolves),
// address-destined orders under "<island>, <atoll>". Groups come back sorted
// by key so manifests print deterministically.
func GroupByDestination(orders []order.Order, boatNames map[uuid.UUID]string) []Group {
	grouped := make(map[string][]order.Order)
	for _, o := range orders {
		var key string
		if o.DestinationType == order.DestinationBoat {
			key = "Boat: Unknown"
			if o.BoatID != nil {
				if name, ok := boatNames[*o.BoatID]; ok {
					key = "Boat: " + name
				}
			}
		} else {
			var island, atoll string
			if o.Address != nil {
				island = o.Address.Island
				atoll = o.Address.Atoll
			}
			key = fmt.Sprintf("%s, %s", island, atoll)
		}
		grouped[key] = append(grouped[key], o)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, Group{Key: key, Orders: grouped[key]})
	}
	return groups
}
