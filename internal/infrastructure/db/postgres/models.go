package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// UserDTO is the users table row. Emails are stored normalized, so the unique
// index makes registration case-insensitive.
type UserDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	Username     string    `gorm:"size:100;not null"`
	PasswordHash string    `gorm:"size:100;not null"`
	Role         string    `gorm:"size:20;not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserDTO) TableName() string {
	return "users"
}

// OrderDTO is the orders table row. Package details are kept as a jsonb document.
type OrderDTO struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID             `gorm:"type:uuid;not null;index:idx_orders_owner_created,priority:1"`
	Owner           *UserDTO              `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:RESTRICT"`
	PickupAddress   string                `gorm:"type:text;not null"`
	DeliveryAddress string                `gorm:"type:text;not null"`
	PackageDetails  domain.PackageDetails `gorm:"type:jsonb;serializer:json;not null"`
	Priority        string                `gorm:"size:20;not null"`
	Status          string                `gorm:"size:20;not null;index"`
	CreatedAt       time.Time             `gorm:"not null;index:idx_orders_owner_created,priority:2"`
	UpdatedAt       time.Time             `gorm:"not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// DeliveryUpdateDTO is the append-only delivery_updates row.
type DeliveryUpdateDTO struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Order      *OrderDTO        `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CourierID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	FromStatus string           `gorm:"size:20;not null"`
	Status     string           `gorm:"size:20;not null"`
	Notes      string           `gorm:"type:text"`
	Location   *domain.Location `gorm:"type:jsonb;serializer:json"`
	OccurredAt time.Time        `gorm:"not null"`
	CreatedAt  time.Time        `gorm:"not null"`
}

func (DeliveryUpdateDTO) TableName() string {
	return "delivery_updates"
}

func userFromDomain(u *domain.User) (UserDTO, bool) {
	id, ok := parseID(u.ID)
	return UserDTO{
		ID:           id,
		Email:        domain.NormalizeEmail(u.Email),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, ok
}

func userToDomain(dto UserDTO) *domain.User {
	return &domain.User{
		ID:           dto.ID.String(),
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: dto.PasswordHash,
		Role:         dto.Role,
		CreatedAt:    dto.CreatedAt.UTC(),
		UpdatedAt:    dto.UpdatedAt.UTC(),
	}
}

func orderFromDomain(o *domain.Order) (OrderDTO, bool) {
	id, idOK := parseID(o.ID)
	owner, ownerOK := parseID(o.OwnerID)
	return OrderDTO{
		ID:              id,
		OwnerID:         owner,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		PackageDetails:  o.Package,
		Priority:        string(o.Priority),
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, idOK && ownerOK
}

func orderToDomain(dto OrderDTO) *domain.Order {
	return &domain.Order{
		ID:              dto.ID.String(),
		OwnerID:         dto.OwnerID.String(),
		PickupAddress:   dto.PickupAddress,
		DeliveryAddress: dto.DeliveryAddress,
		Package:         dto.PackageDetails,
		Priority:        domain.Priority(dto.Priority),
		Status:          domain.OrderStatus(dto.Status),
		CreatedAt:       dto.CreatedAt.UTC(),
		UpdatedAt:       dto.UpdatedAt.UTC(),
	}
}

func deliveryUpdateFromDomain(u *domain.DeliveryUpdate) (DeliveryUpdateDTO, bool) {
	id, idOK := parseID(u.ID)
	orderID, orderOK := parseID(u.OrderID)
	courierID, courierOK := parseID(u.CourierID)
	return DeliveryUpdateDTO{
		ID:         id,
		OrderID:    orderID,
		CourierID:  courierID,
		FromStatus: string(u.FromStatus),
		Status:     string(u.Status),
		Notes:      u.Notes,
		Location:   u.Location,
		OccurredAt: u.OccurredAt,
		CreatedAt:  u.CreatedAt,
	}, idOK && orderOK && courierOK
}

func deliveryUpdateToDomain(dto DeliveryUpdateDTO) *domain.DeliveryUpdate {
	return &domain.DeliveryUpdate{
		ID:         dto.ID.String(),
		OrderID:    dto.OrderID.String(),
		CourierID:  dto.CourierID.String(),
		FromStatus: domain.OrderStatus(dto.FromStatus),
		Status:     domain.OrderStatus(dto.Status),
		Notes:      dto.Notes,
		Location:   dto.Location,
		OccurredAt: dto.OccurredAt.UTC(),
		CreatedAt:  dto.CreatedAt.UTC(),
	}
}
