package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// DeliveryUpdateRepository implements ports.DeliveryUpdateRepository.
type DeliveryUpdateRepository struct {
	db *gorm.DB
}

func NewDeliveryUpdateRepository(db *gorm.DB) *DeliveryUpdateRepository {
	return &DeliveryUpdateRepository{db: db}
}

// Apply moves the order from update.FromStatus to update.Status and inserts the
// audit row in one transaction. The status guard in the WHERE clause rejects
// the update when another writer got there first.
func (r *DeliveryUpdateRepository) Apply(ctx context.Context, update *domain.DeliveryUpdate) (*domain.Order, error) {
	dto, ok := deliveryUpdateFromDomain(update)
	if !ok {
		return nil, fmt.Errorf("apply delivery update: invalid id in %+v", update)
	}

	var updated OrderDTO
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&OrderDTO{}).
			Where("id = ? AND status = ?", dto.OrderID, dto.FromStatus).
			Updates(map[string]any{"status": dto.Status, "updated_at": dto.CreatedAt})
		if res.Error != nil {
			return fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&OrderDTO{}).Where("id = ?", dto.OrderID).Count(&n).Error; err != nil {
				return fmt.Errorf("check order: %w", err)
			}
			if n == 0 {
				return domain.ErrOrderNotFound
			}
			return domain.ErrInvalidTransition
		}

		if err := tx.Create(&dto).Error; err != nil {
			return fmt.Errorf("insert delivery update: %w", err)
		}
		if err := tx.First(&updated, "id = ?", dto.OrderID).Error; err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("apply delivery update: %w", err)
	}
	return orderToDomain(updated), nil
}

// ListByOrder returns the updates of an order, oldest first.
func (r *DeliveryUpdateRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.DeliveryUpdate, error) {
	oid, ok := parseID(orderID)
	if !ok {
		return []*domain.DeliveryUpdate{}, nil
	}
	var dtos []DeliveryUpdateDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", oid).
		Order("created_at ASC").
		Order("occurred_at ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, fmt.Errorf("list delivery updates: %w", err)
	}

	out := make([]*domain.DeliveryUpdate, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, deliveryUpdateToDomain(dto))
	}
	return out, nil
}
