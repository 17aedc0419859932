package models

import (
	"time"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root
type OrderModel struct {
	AggregateModel
	OrderNumber     string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerName    string           `gorm:"type:varchar(200);not null"`
	CustomerPhone   string           `gorm:"type:varchar(30)"`
	CustomerAddress string           `gorm:"type:varchar(300)"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount  decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	FinalAmount     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethod   string           `gorm:"type:varchar(10);not null"`
	Status          string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes           string           `gorm:"type:text"`
	ConfirmedAt     *time.Time       `gorm:"index"`
	PreparingAt     *time.Time
	ReadyAt         *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber: m.OrderNumber,
		Customer: order.Customer{
			Name:    m.CustomerName,
			Phone:   m.CustomerPhone,
			Address: m.CustomerAddress,
		},
		TotalAmount:    m.TotalAmount,
		DiscountAmount: m.DiscountAmount,
		FinalAmount:    m.FinalAmount,
		PaymentMethod:  order.PaymentMethod(m.PaymentMethod),
		Status:         order.Status(m.Status),
		Notes:          m.Notes,
		ConfirmedAt:    m.ConfirmedAt,
		PreparingAt:    m.PreparingAt,
		ReadyAt:        m.ReadyAt,
		DeliveredAt:    m.DeliveredAt,
		CancelledAt:    m.CancelledAt,
		Items:          make([]order.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerName = o.Customer.Name
	m.CustomerPhone = o.Customer.Phone
	m.CustomerAddress = o.Customer.Address
	m.TotalAmount = o.TotalAmount
	m.DiscountAmount = o.DiscountAmount
	m.FinalAmount = o.FinalAmount
	m.PaymentMethod = string(o.PaymentMethod)
	m.Status = string(o.Status)
	m.Notes = o.Notes
	m.ConfirmedAt = o.ConfirmedAt
	m.PreparingAt = o.PreparingAt
	m.ReadyAt = o.ReadyAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for order line items
type OrderItemModel struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() *order.Item {
	return &order.Item{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Name:      m.Name,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		LineTotal: m.LineTotal,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item
func OrderItemModelFromDomain(item *order.Item) *OrderItemModel {
	return &OrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:   item.OrderID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
	}
}
