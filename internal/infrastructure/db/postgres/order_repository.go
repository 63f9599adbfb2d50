package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// OrderRepository implements ports.OrderRepository on the orders table.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	dto, ok := orderFromDomain(order)
	if !ok {
		return fmt.Errorf("insert order: invalid id in %q/%q", order.ID, order.OwnerID)
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", oid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return orderToDomain(dto), nil
}

// List returns matching orders ascending by creation time, ties broken by ID.
func (r *OrderRepository) List(ctx context.Context, filter ports.ListOrdersFilter) ([]*domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&OrderDTO{})
	if filter.OwnerID != "" {
		owner, ok := parseID(filter.OwnerID)
		if !ok {
			return []*domain.Order{}, nil
		}
		q = q.Where("owner_id = ?", owner)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var dtos []OrderDTO
	if err := q.Order("created_at ASC").Order("id ASC").Find(&dtos).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, orderToDomain(dto))
	}
	return orders, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}
