package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// fakeNotifier records dispatch calls without any real channel behind it
type fakeNotifier struct {
	mu        sync.Mutex
	attempted bool
	calls     int
}

func (n *fakeNotifier) Dispatch(ctx context.Context, o *order.Order, target order.Status, note string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.attempted
}

func newService(repo *MockOrderRepository, notifier *fakeNotifier) *OrderService {
	return NewOrderService(repo, notifier, "(11) 91234-5678", zap.NewNop())
}

func newStoredOrder(t *testing.T, status order.Status) *order.Order {
	o, err := order.NewOrder("AERO000123", order.Customer{
		Name:  "Maria Silva",
		Phone: "(11) 98765-4321",
	}, order.PaymentPix)
	require.NoError(t, err)

	_, err = o.AddItem("X-Burger", 1, decimal.NewFromFloat(47.50))
	require.NoError(t, err)

	// walk the graph to the requested status without dispatching
	path := map[order.Status][]order.Status{
		order.StatusPending:   nil,
		order.StatusConfirmed: {order.StatusConfirmed},
		order.StatusPreparing: {order.StatusConfirmed, order.StatusPreparing},
		order.StatusReady:     {order.StatusConfirmed, order.StatusPreparing, order.StatusReady},
		order.StatusDelivered: {order.StatusConfirmed, order.StatusPreparing, order.StatusReady, order.StatusDelivered},
		order.StatusCancelled: {order.StatusCancelled},
	}
	for _, step := range path[status] {
		require.NoError(t, o.TransitionTo(step, ""))
	}
	return o
}

func TestOrderService_Create(t *testing.T) {
	repo := new(MockOrderRepository)
	notifier := &fakeNotifier{}
	svc := newService(repo, notifier)

	repo.On("GenerateOrderNumber", mock.Anything).Return("AERO000124", nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	result, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerName:  "Maria Silva",
		CustomerPhone: "(11) 98765-4321",
		PaymentMethod: "pix",
		Items: []CreateOrderItemInput{
			{Name: "X-Burger", Quantity: 2, UnitPrice: decimal.NewFromFloat(25.00)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "AERO000124", result.Order.OrderNumber)
	assert.Equal(t, "pending", result.Order.Status)
	assert.Equal(t, "50.00", result.Order.FinalAmount.StringFixed(2))
	// submission deep link points at the shop's number
	assert.Contains(t, result.DeepLink, "wa.me/5511912345678")
	repo.AssertExpectations(t)
}

func TestOrderService_Create_InvalidPayment(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := newService(repo, &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerName:  "Maria Silva",
		PaymentMethod: "cheque",
		Items:         []CreateOrderItemInput{{Name: "X-Burger", Quantity: 1, UnitPrice: decimal.NewFromFloat(25.00)}},
	})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "Save")
}

func TestOrderService_UpdateStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	notifier := &fakeNotifier{attempted: true}
	svc := newService(repo, notifier)
	o := newStoredOrder(t, order.StatusPending)

	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("SaveWithLock", mock.Anything, o).Return(nil)
	repo.On("Save", mock.Anything, o).Return(nil)

	result, err := svc.UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{
		Status:           "confirmed",
		SendNotification: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Order.Status)
	assert.True(t, result.NotificationAttempted)
	assert.Contains(t, result.DeepLink, "wa.me/5511987654321")
	assert.Equal(t, 1, notifier.calls)
	repo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_InvalidTransition(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := newService(repo, &fakeNotifier{})
	o := newStoredOrder(t, order.StatusPending)

	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := svc.UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{Status: "preparing"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	assert.Contains(t, domainErr.Message, "pending")
	assert.Contains(t, domainErr.Message, "preparing")
	repo.AssertNotCalled(t, "SaveWithLock")
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := newService(repo, &fakeNotifier{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusRequest{Status: "shipped"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	repo.AssertNotCalled(t, "FindByID")
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := newService(repo, &fakeNotifier{})
	id := uuid.New()

	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.UpdateStatus(context.Background(), id, UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_UpdateStatus_NoNotificationRequested(t *testing.T) {
	repo := new(MockOrderRepository)
	notifier := &fakeNotifier{attempted: true}
	svc := newService(repo, notifier)
	o := newStoredOrder(t, order.StatusPending)

	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("SaveWithLock", mock.Anything, o).Return(nil)

	result, err := svc.UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{Status: "confirmed"})

	require.NoError(t, err)
	assert.False(t, result.NotificationAttempted)
	assert.Empty(t, result.DeepLink)
	assert.Equal(t, 0, notifier.calls)
}

func TestOrderService_UpdateStatus_AuditNoteSaveFailureIgnored(t *testing.T) {
	repo := new(MockOrderRepository)
	notifier := &fakeNotifier{attempted: true}
	svc := newService(repo, notifier)
	o := newStoredOrder(t, order.StatusPending)

	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("SaveWithLock", mock.Anything, o).Return(nil)
	repo.On("Save", mock.Anything, o).Return(errors.New("db down"))

	result, err := svc.UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{
		Status:           "confirmed",
		SendNotification: true,
	})

	require.NoError(t, err)
	assert.True(t, result.NotificationAttempted)
}

func TestOrderService_GetStatusSummary(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := newService(repo, &fakeNotifier{})

	counts := map[order.Status]int64{
		order.StatusPending:   3,
		order.StatusConfirmed: 2,
		order.StatusPreparing: 1,
		order.StatusReady:     0,
		order.StatusDelivered: 10,
		order.StatusCancelled: 1,
	}
	for status, count := range counts {
		repo.On("CountByStatus", mock.Anything, status).Return(count, nil)
	}

	summary, err := svc.GetStatusSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Pending)
	assert.Equal(t, int64(10), summary.Delivered)
	assert.Equal(t, int64(17), summary.Total)
}
