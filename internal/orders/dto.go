package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
)

// OrderItemDTO is the snapshot line shape returned to clients.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Currency         string            `json:"currency"`
	Status           enums.OrderStatus `json:"status"`
	PaymentRequestID *string           `json:"payment_request_id,omitempty"`
	Items            []OrderItemDTO    `json:"items"`
	StudentName      string            `json:"student_name,omitempty"`
	Class            string            `json:"class,omitempty"`
	Section          string            `json:"section,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// OrdersPage is one keyset page of the back-office order list.
type OrdersPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// OrderLineInput is one snapshot line supplied at creation time. Name and
// price are copied as-is; the live product row is only consulted for stock.
type OrderLineInput struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	UserID   uuid.UUID
	Currency string
	Lines    []OrderLineInput
}

// UpdateStatusInput carries a status transition request with its actor.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Status    enums.OrderStatus
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return &OrderDTO{
		ID:               o.ID,
		UserID:           o.UserID,
		TotalAmount:      o.TotalAmount,
		Currency:         o.Currency,
		Status:           o.Status,
		PaymentRequestID: o.PaymentRequestID,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func FromModels(items []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
