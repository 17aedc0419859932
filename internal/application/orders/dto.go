package orders

import (
	"time"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName    string                   `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone   string                   `json:"customer_phone" binding:"max=30"`
	CustomerAddress string                   `json:"customer_address" binding:"max=300"`
	PaymentMethod   string                   `json:"payment_method" binding:"required"`
	Items           []CreateOrderItemInput   `json:"items" binding:"required,min=1,dive"`
	Discount        *decimal.Decimal         `json:"discount"`
	Notes           string                   `json:"notes" binding:"max=500"`
}

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpdateStatusRequest represents a request to move an order to a new status
type UpdateStatusRequest struct {
	Status           string `json:"status" binding:"required"`
	Note             string `json:"note" binding:"max=500"`
	SendNotification bool   `json:"send_notification"`
}

// BatchUpdateStatusRequest applies one transition across a set of orders
type BatchUpdateStatusRequest struct {
	OrderIDs         []uuid.UUID `json:"order_ids" binding:"required,min=1"`
	Status           string      `json:"status" binding:"required"`
	Note             string      `json:"note" binding:"max=500"`
	SendNotification bool        `json:"send_notification"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents an order item in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	CustomerAddress string              `json:"customer_address,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	ItemCount       int                 `json:"item_count"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	FinalAmount     decimal.Decimal     `json:"final_amount"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentLabel    string              `json:"payment_label"`
	Status          string              `json:"status"`
	StatusLabel     string              `json:"status_label"`
	StatusIcon      string              `json:"status_icon"`
	NextStatuses    []string            `json:"next_statuses"`
	Notes           string              `json:"notes,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmed_at,omitempty"`
	PreparingAt     *time.Time          `json:"preparing_at,omitempty"`
	ReadyAt         *time.Time          `json:"ready_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`
}

// CreateOrderResult is the outcome of order creation: the order plus the
// deep link the client hands off to the messaging channel
type CreateOrderResult struct {
	Order    OrderResponse `json:"order"`
	DeepLink string        `json:"deep_link,omitempty"`
}

// UpdateStatusResult is the outcome of a single status update
type UpdateStatusResult struct {
	Order                 OrderResponse `json:"order"`
	NotificationAttempted bool          `json:"notification_attempted"`
	DeepLink              string        `json:"deep_link,omitempty"`
}

// BatchFailure names one order that could not be updated and why
type BatchFailure struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

// BatchResult aggregates per-order outcomes of a batch update. The caller
// presents partial success ("8 of 10 updated") from these lists.
type BatchResult struct {
	Succeeded []uuid.UUID    `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// StatusSummary represents order counts by status
type StatusSummary struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Preparing int64 `json:"preparing"`
	Ready     int64 `json:"ready"`
	Delivered int64 `json:"delivered"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ToOrderItemResponse converts a domain item to a response DTO
func ToOrderItemResponse(item *order.Item) OrderItemResponse {
	return OrderItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ToOrderItemResponse(&o.Items[i])
	}

	next := o.Status.NextStatuses()
	nextStrings := make([]string, len(next))
	for i, s := range next {
		nextStrings[i] = string(s)
	}

	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.Customer.Name,
		CustomerPhone:   o.Customer.Phone,
		CustomerAddress: o.Customer.Address,
		Items:           items,
		ItemCount:       o.ItemCount(),
		TotalAmount:     o.TotalAmount,
		DiscountAmount:  o.DiscountAmount,
		FinalAmount:     o.FinalAmount,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentLabel:    o.PaymentMethod.Label(),
		Status:          string(o.Status),
		StatusLabel:     o.Status.Label(),
		StatusIcon:      o.Status.Icon(),
		NextStatuses:    nextStrings,
		Notes:           o.Notes,
		ConfirmedAt:     o.ConfirmedAt,
		PreparingAt:     o.PreparingAt,
		ReadyAt:         o.ReadyAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}
