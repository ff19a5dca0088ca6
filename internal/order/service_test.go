package order_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crawlingsloth/lonumirus/internal/order"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByBoat(ctx context.Context, boatID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, boatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeAllocator hands out a fixed sequence without a database.
type fakeAllocator struct {
	next int
}

func (f *fakeAllocator) Next(ctx context.Context) (string, error) {
	code := order.FormatShortCode(f.next)
	f.next++
	return code, nil
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := order.NewService(mockRepo, &fakeAllocator{})

	customerID := uuid.Must(uuid.NewV4())
	boatID := uuid.Must(uuid.NewV4())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	o, err := svc.CreateOrder(context.Background(), order.CreateOrderInput{
		CustomerID:      customerID,
		ProductSKU:      "CHILLI-250G",
		Qty:             2,
		DestinationType: order.DestinationBoat,
		BoatID:          &boatID,
	})

	require.NoError(t, err)
	require.NotNil(t, o)
	require.Equal(t, order.StatusSubmitted, o.Status)
	require.Equal(t, "000", o.ShortCode)
	require.Equal(t, int64(150), o.TotalMvr, "total is unit price times quantity")
	require.Equal(t, "Chilli Paste 250g", o.Product.Name)
	require.NotEqual(t, uuid.Nil, o.ID)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_ShortCodeSequence(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := order.NewService(mockRepo, &fakeAllocator{})

	customerID := uuid.Must(uuid.NewV4())
	boatID := uuid.Must(uuid.NewV4())
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Times(3)

	want := []string{"000", "001", "002"}
	for _, expected := range want {
		o, err := svc.CreateOrder(context.Background(), order.CreateOrderInput{
			CustomerID:      customerID,
			ProductSKU:      "CHILLI-500G",
			Qty:             1,
			DestinationType: order.DestinationBoat,
			BoatID:          &boatID,
		})
		require.NoError(t, err)
		require.Equal(t, expected, o.ShortCode)
	}

	mockRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_Rejections(t *testing.T) {
	boatID := uuid.Must(uuid.NewV4())
	address := &order.Address{AddressLine: "H. Sunrise", Island: "Thulusdhoo", Atoll: "Kaafu", ContactName: "Ahmed Ali", ContactPhone: "7778888"}

	tests := []struct {
		name    string
		input   order.CreateOrderInput
		wantErr error
	}{
		{
			name:    "zero qty",
			input:   order.CreateOrderInput{ProductSKU: "CHILLI-250G", Qty: 0, DestinationType: order.DestinationBoat, BoatID: &boatID},
			wantErr: order.ErrInvalidQty,
		},
		{
			name:    "unknown sku",
			input:   order.CreateOrderInput{ProductSKU: "CHILLI-1KG", Qty: 1, DestinationType: order.DestinationBoat, BoatID: &boatID},
			wantErr: order.ErrUnknownProduct,
		},
		{
			name:    "boat destination without boat",
			input:   order.CreateOrderInput{ProductSKU: "CHILLI-250G", Qty: 1, DestinationType: order.DestinationBoat},
			wantErr: order.ErrInvalidDest,
		},
		{
			name:    "address destination with boat id",
			input:   order.CreateOrderInput{ProductSKU: "CHILLI-250G", Qty: 1, DestinationType: order.DestinationAddress, BoatID: &boatID},
			wantErr: order.ErrInvalidDest,
		},
		{
			name:    "both destinations supplied",
			input:   order.CreateOrderInput{ProductSKU: "CHILLI-250G", Qty: 1, DestinationType: order.DestinationBoat, BoatID: &boatID, Address: address},
			wantErr: order.ErrInvalidDest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := order.NewService(mockRepo, &fakeAllocator{})

			tt.input.CustomerID = uuid.Must(uuid.NewV4())
			_, err := svc.CreateOrder(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestOrderService_UpdateOrderStatus_AllowedChain(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	// submitted -> payment_confirmed -> preparing is the happy path.
	chain := []struct {
		current order.Status
		next    order.Status
	}{
		{order.StatusSubmitted, order.StatusPaymentConfirmed},
		{order.StatusPaymentConfirmed, order.StatusPreparing},
		{order.StatusPreparing, order.StatusDelivered},
	}

	for _, step := range chain {
		mockRepo := new(MockOrderRepository)
		svc := order.NewService(mockRepo, &fakeAllocator{})

		mockRepo.On("GetByID", mock.Anything, orderID).
			Return(&order.Order{ID: orderID, Status: step.current}, nil).Once()
		mockRepo.On("UpdateStatus", mock.Anything, orderID, step.next).Return(nil).Once()

		err := svc.UpdateOrderStatus(context.Background(), orderID, step.next)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	}
}

func TestOrderService_UpdateOrderStatus_Rejected(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name    string
		current order.Status
		next    order.Status
	}{
		{"submitted cannot skip to preparing", order.StatusSubmitted, order.StatusPreparing},
		{"no backward transition", order.StatusPreparing, order.StatusPaymentConfirmed},
		{"delivered is terminal", order.StatusDelivered, order.StatusCancelled},
		{"cancelled is terminal", order.StatusCancelled, order.StatusSubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := order.NewService(mockRepo, &fakeAllocator{})

			mockRepo.On("GetByID", mock.Anything, orderID).
				Return(&order.Order{ID: orderID, Status: tt.current}, nil).Once()

			err := svc.UpdateOrderStatus(context.Background(), orderID, tt.next)
			require.ErrorIs(t, err, order.ErrInvalidTransition)
			mockRepo.AssertNotCalled(t, "UpdateStatus")
		})
	}
}

func TestOrderService_UpdateOrderStatus_NotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := order.NewService(mockRepo, &fakeAllocator{})

	orderID := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, orderID).Return(nil, order.ErrNotFound).Once()

	err := svc.UpdateOrderStatus(context.Background(), orderID, order.StatusCancelled)
	require.ErrorIs(t, err, order.ErrNotFound)
}
