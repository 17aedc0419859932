package order

import (
	"context"

	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds all orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders by status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock updates an order with optimistic locking on the version column
	SaveWithLock(ctx context.Context, o *Order) error

	// Delete deletes an order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders in the given status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// GenerateOrderNumber generates the next sequential order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
