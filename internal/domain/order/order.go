package order

import (
	"fmt"
	"time"

	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the customer intends to pay
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// IsValid checks if the payment method is known
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentPix, PaymentCash, PaymentCard:
		return true
	}
	return false
}

// Label returns the customer-facing (pt-BR) label for the payment method
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentPix:
		return "PIX"
	case PaymentCash:
		return "Dinheiro"
	case PaymentCard:
		return "Cartão"
	}
	return string(p)
}

// Customer holds the customer contact details captured at submission time.
// Phone is free text and may be unformatted; normalization happens at
// notification time, not here.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Item represents a line item in an order
type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem creates a new order item
func NewItem(orderID uuid.UUID, name string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &Item{
		ID:        uuid.New(),
		OrderID:   orderID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Order represents an order aggregate root.
// It manages the lifecycle of a customer order from submission to delivery.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber    string
	Customer       Customer
	Items          []Item
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	Status         Status
	Notes          string
	ConfirmedAt    *time.Time
	PreparingAt    *time.Time
	ReadyAt        *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
}

// NewOrder creates a new order in pending status
func NewOrder(orderNumber string, customer Customer, payment PaymentMethod) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 20 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 20 characters")
	}
	if customer.Name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !payment.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", payment))
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Customer:          customer,
		Items:             make([]Item, 0),
		TotalAmount:       decimal.Zero,
		DiscountAmount:    decimal.Zero,
		FinalAmount:       decimal.Zero,
		PaymentMethod:     payment,
		Status:            StatusPending,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AddItem adds a new item to the order. Only allowed while pending.
func (o *Order) AddItem(name string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if !o.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}

	item, err := NewItem(o.ID, name, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes an item from the order. Only allowed while pending.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-pending order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ApplyDiscount applies an order-level discount. Only allowed while pending.
func (o *Order) ApplyDiscount(discount decimal.Decimal) error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-pending order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(o.TotalAmount) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed total amount")
	}

	o.DiscountAmount = discount
	o.FinalAmount = o.TotalAmount.Sub(o.DiscountAmount)
	o.UpdatedAt = time.Now()

	return nil
}

// AppendNote appends a line to the order's notes log. Notes are append-only;
// existing content is never rewritten.
func (o *Order) AppendNote(note string) {
	if note == "" {
		return
	}
	if o.Notes == "" {
		o.Notes = note
	} else {
		o.Notes = o.Notes + "\n" + note
	}
	o.UpdatedAt = time.Now()
}

// TransitionTo moves the order to the target status, guarded by the
// transition table. An optional note is appended to the notes log.
func (o *Order) TransitionTo(target Status, note string) error {
	if err := ValidateTransition(o.Status, target); err != nil {
		return err
	}

	previous := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusPreparing:
		o.PreparingAt = &now
	case StatusReady:
		o.ReadyAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}

	o.AppendNote(note)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous, target))

	return nil
}

// recalculateTotals recalculates the order totals
func (o *Order) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = total
	o.FinalAmount = o.TotalAmount.Sub(o.DiscountAmount)

	if o.FinalAmount.IsNegative() {
		o.DiscountAmount = o.TotalAmount
		o.FinalAmount = decimal.Zero
	}
}

// ItemCount returns the number of items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsTerminal returns true if the order is delivered or cancelled
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// CanModify returns true if the order contents can still be changed
func (o *Order) CanModify() bool {
	return o.Status == StatusPending
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}
