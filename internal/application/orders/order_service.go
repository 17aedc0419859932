package orders

import (
	"context"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/aerofood/backend/internal/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusNotifier is the outbound port for customer status messages. Dispatch
// reports whether an attempt was made; it never fails the caller.
type StatusNotifier interface {
	Dispatch(ctx context.Context, o *order.Order, target order.Status, note string) bool
}

// OrderService handles order business operations
type OrderService struct {
	orderRepo order.Repository
	notifier  StatusNotifier
	shopPhone string
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. shopPhone is the shop's own
// number, used for the submission deep link the customer sends the order to.
func NewOrderService(orderRepo order.Repository, notifier StatusNotifier, shopPhone string, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		shopPhone: notification.NormalizePhone(shopPhone),
		logger:    logger.Named("orders"),
	}
}

// Create creates a new order and returns it with the submission deep link
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	payment := order.PaymentMethod(req.PaymentMethod)
	if !payment.IsValid() {
		return nil, shared.ErrInvalidInput
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, order.Customer{
		Name:    req.CustomerName,
		Phone:   req.CustomerPhone,
		Address: req.CustomerAddress,
	}, payment)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := o.AddItem(item.Name, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		if err := o.ApplyDiscount(*req.Discount); err != nil {
			return nil, err
		}
	}

	if req.Notes != "" {
		o.AppendNote(req.Notes)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_number", o.OrderNumber),
		zap.String("final_amount", o.FinalAmount.StringFixed(2)))

	result := &CreateOrderResult{Order: ToOrderResponse(o)}
	if s.shopPhone != "" {
		result.DeepLink = notification.DeepLink(s.shopPhone, notification.BuildOrderMessage(o))
	}
	return result, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByOrderNumber retrieves an order by its human-readable number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves orders with filtering
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search

	var (
		list []order.Order
		err  error
	)
	if filter.Status != "" {
		status := order.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.ErrInvalidInput
		}
		list, err = s.orderRepo.FindByStatus(ctx, status, f)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.orderRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, 0, err
		}
		return toResponses(list), total, nil
	}

	list, err = s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(list), total, nil
}

// UpdateStatus moves an order along the status graph. The transition is
// validated and persisted first; notification dispatch happens after and
// never affects the outcome.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*UpdateStatusResult, error) {
	target := order.Status(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Unknown order status "+req.Status)
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.TransitionTo(target, req.Note); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", o.OrderNumber),
		zap.String("status", target.String()))

	result := &UpdateStatusResult{}
	if req.SendNotification {
		result.NotificationAttempted = s.notifier.Dispatch(ctx, o, target, req.Note)
		if result.NotificationAttempted {
			// Persist the dispatch audit note best-effort; losing it never
			// fails an already-applied transition.
			if err := s.orderRepo.Save(ctx, o); err != nil {
				s.logger.Warn("Failed to persist dispatch audit note",
					zap.String("order_number", o.OrderNumber), zap.Error(err))
			}
		}
		result.DeepLink = notification.DeepLinkFor(o, target, req.Note)
	}
	result.Order = ToOrderResponse(o)
	return result, nil
}

// GetStatusSummary returns order counts by status
func (s *OrderService) GetStatusSummary(ctx context.Context) (*StatusSummary, error) {
	summary := &StatusSummary{}
	targets := map[order.Status]*int64{
		order.StatusPending:   &summary.Pending,
		order.StatusConfirmed: &summary.Confirmed,
		order.StatusPreparing: &summary.Preparing,
		order.StatusReady:     &summary.Ready,
		order.StatusDelivered: &summary.Delivered,
		order.StatusCancelled: &summary.Cancelled,
	}
	for _, status := range order.AllStatuses() {
		count, err := s.orderRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*targets[status] = count
		summary.Total += count
	}
	return summary, nil
}

func toResponses(list []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(list))
	for i := range list {
		out[i] = ToOrderResponse(&list[i])
	}
	return out
}
