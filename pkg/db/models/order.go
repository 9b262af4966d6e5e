package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/pkg/enums"
)

// Order captures a placed order. TotalAmount is fixed at creation from the
// item snapshots and never recomputed afterwards.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	TotalAmount      decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Currency         string            `gorm:"column:currency;type:text;not null;default:'AED'"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentRequestID *string           `gorm:"column:payment_request_id;index"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
