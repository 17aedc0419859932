package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"github.com/aerofood/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderNumberPrefix is the human-readable order number prefix, e.g. AERO000123
const orderNumberPrefix = "AERO"

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByOrderNumber finds an order by its human-readable number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&m, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll finds all orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items")
	query = applyOrderFilter(query, filter)

	var list []models.OrderModel
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(list), nil
}

// FindByStatus finds orders in the given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items").
		Where("status = ?", string(status))
	query = applyOrderFilter(query, filter)

	var list []models.OrderModel
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(list), nil
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	m := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}

		// Items are replaced wholesale: line items have no identity of
		// their own outside the order.
		currentItemIDs := make([]uuid.UUID, len(m.Items))
		for i, item := range m.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", m.ID, currentItemIDs).
				Delete(&models.OrderItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", m.ID).
				Delete(&models.OrderItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range m.Items {
			m.Items[i].OrderID = m.ID
			if err := tx.Save(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock updates an order with optimistic locking on the version column
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.OrderModel
		if err := tx.Select("version").
			First(&current, "id = ?", o.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		currentVersion := current.Version

		if currentVersion != o.Version {
			return shared.ErrConcurrencyConflict
		}

		o.Version++
		o.UpdatedAt = time.Now()

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_name":    o.Customer.Name,
				"customer_phone":   o.Customer.Phone,
				"customer_address": o.Customer.Address,
				"total_amount":     o.TotalAmount,
				"discount_amount":  o.DiscountAmount,
				"final_amount":     o.FinalAmount,
				"status":           string(o.Status),
				"notes":            o.Notes,
				"confirmed_at":     o.ConfirmedAt,
				"preparing_at":     o.PreparingAt,
				"ready_at":         o.ReadyAt,
				"delivered_at":     o.DeliveredAt,
				"cancelled_at":     o.CancelledAt,
				"version":          o.Version,
				"updated_at":       o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Someone won the race between our version read and the update
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", search, search)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders in the given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates the next sequential order number
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	var last models.OrderModel
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_number LIKE ?", orderNumberPrefix+"%").
		Order("order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.OrderNumber != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(last.OrderNumber, orderNumberPrefix), "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	return fmt.Sprintf("%s%06d", orderNumberPrefix, nextNum), nil
}

func toDomainOrders(list []models.OrderModel) []order.Order {
	out := make([]order.Order, len(list))
	for i := range list {
		out[i] = *list[i].ToDomain()
	}
	return out
}

func applyOrderFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", search, search)
	}

	orderBy := filter.OrderBy
	if !isSortableColumn(orderBy) {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// isSortableColumn whitelists sort columns; anything else falls back to
// created_at rather than interpolating caller input into ORDER BY
func isSortableColumn(column string) bool {
	switch column {
	case "created_at", "updated_at", "order_number", "status", "final_amount", "customer_name":
		return true
	}
	return false
}

var _ order.Repository = (*GormOrderRepository)(nil)
