package batch_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/crawlingsloth/lonumirus/internal/batch"
	"github.com/crawlingsloth/lonumirus/internal/order"
)

func TestEligible(t *testing.T) {
	assert.True(t, batch.Eligible(order.StatusPaymentConfirmed))
	assert.True(t, batch.Eligible(order.StatusPreparing))
	assert.False(t, batch.Eligible(order.StatusSubmitted))
	assert.False(t, batch.Eligible(order.StatusDelivered))
	assert.False(t, batch.Eligible(order.StatusCancelled))
}

func TestBatch_Contains(t *testing.T) {
	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	batchWithA := &batch.Batch{OrderIDs: []uuid.UUID{a}}

	assert.True(t, batchWithA.Contains(a))
	assert.False(t, batchWithA.Contains(b))
	assert.False(t, (&batch.Batch{}).Contains(a))
}

func TestGroupByDestination(t *testing.T) {
	nejmaID := uuid.Must(uuid.NewV4())
	ghostID := uuid.Must(uuid.NewV4())
	boatNames := map[uuid.UUID]string{nejmaID: "Nejma"}

	toNejma := order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		DestinationType: order.DestinationBoat,
		BoatID:          &nejmaID,
	}
	toGhost := order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		DestinationType: order.DestinationBoat,
		BoatID:          &ghostID,
	}
	toThulusdhoo := order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		DestinationType: order.DestinationAddress,
		Address:         &order.Address{Island: "Thulusdhoo", Atoll: "Kaafu"},
	}
	toThulusdhoo2 := order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		DestinationType: order.DestinationAddress,
		Address:         &order.Address{Island: "Thulusdhoo", Atoll: "Kaafu"},
	}

	groups := batch.GroupByDestination(
		[]order.Order{toNejma, toGhost, toThulusdhoo, toThulusdhoo2}, boatNames)

	keys := make([]string, len(groups))
	sizes := make(map[string]int, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
		sizes[g.Key] = len(g.Orders)
	}

	wantKeys := []string{"Boat: Nejma", "Boat: Unknown", "Thulusdhoo, Kaafu"}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("group keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, sizes["Boat: Nejma"])
	assert.Equal(t, 1, sizes["Boat: Unknown"])
	assert.Equal(t, 2, sizes["Thulusdhoo, Kaafu"])
}

// Deleting a boat nulls the boat_id on its orders; such orders still appear
// on manifests, filed under "Boat: Unknown".
func TestGroupByDestination_DeletedBoat(t *testing.T) {
	orphaned := order.Order{
		ID:              uuid.Must(uuid.NewV4()),
		DestinationType: order.DestinationBoat,
		BoatID:          nil,
	}

	groups := batch.GroupByDestination([]order.Order{orphaned}, map[uuid.UUID]string{})

	assert.Len(t, groups, 1)
	assert.Equal(t, "Boat: Unknown", groups[0].Key)
	assert.Len(t, groups[0].Orders, 1)
}

func TestGroupByDestination_Empty(t *testing.T) {
	groups := batch.GroupByDestination(nil, nil)
	assert.Empty(t, groups)
}
