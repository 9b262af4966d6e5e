package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/madrasati/schoolstore-backend/internal/cart"
	"github.com/madrasati/schoolstore-backend/internal/products"
	"github.com/madrasati/schoolstore-backend/internal/profiles"
	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
	"github.com/madrasati/schoolstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	ListPage(ctx context.Context, params pagination.Params) (*OrdersPage, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) error
	FindByPaymentRequestID(ctx context.Context, paymentRequestID string) (*OrderDTO, error)
	AttachPaymentRequest(ctx context.Context, orderID uuid.UUID, paymentRequestID string) error
}

type service struct {
	repo        *Repository
	tx          txRunner
	productRepo *products.Repository
	cartRepo    *cart.Repository
	profileRepo *profiles.Repository
	logger      *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo *Repository, tx txRunner, productRepo *products.Repository, cartRepo *cart.Repository, profileRepo *profiles.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if profileRepo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		profileRepo: profileRepo,
		logger:      logg,
	}, nil
}

// Create writes the order and its snapshots, decrements stock for every line,
// and clears the user's persisted cart, all in one transaction. The total is
// fixed here from the line subtotals and never recomputed.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		productID := line.ProductID
		item := models.OrderItem{
			ID:        uuid.New(),
			ProductID: &productID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      input.UserID,
		TotalAmount: total,
		Currency:    input.Currency,
		Status:      enums.OrderStatusPending,
		Items:       items,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)
		txCart := s.cartRepo.WithTx(tx)

		for _, line := range input.Lines {
			affected, err := txProducts.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %q", line.Name))
			}
		}

		if _, err := txOrders.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if err := txCart.ClearForUser(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear persisted cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		logCtx := s.logger.WithOrderID(ctx, order.ID.String())
		s.logger.Info(logCtx, "order created")
	}
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if !actorRole.IsAdministrative() && order.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return FromModel(order), nil
}

// ListMine returns the user's orders with their profile fields joined in.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	out := FromModels(rows)

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load profile")
		}
		return out, nil
	}
	for i := range out {
		out[i].StudentName = profile.StudentName
		out[i].Class = profile.Class
		out[i].Section = profile.Section
	}
	return out, nil
}

func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list all orders")
	}
	return FromModels(rows), nil
}

// ListPage returns one cursor page of all orders for the back office.
func (s *service) ListPage(ctx context.Context, params pagination.Params) (*OrdersPage, error) {
	rows, nextCursor, err := s.repo.ListPage(ctx, params)
	if err != nil {
		if _, cursorErr := pagination.ParseCursor(params.Cursor); cursorErr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list order page")
	}
	return &OrdersPage{
		Orders:     FromModels(rows),
		NextCursor: nextCursor,
	}, nil
}

// UpdateStatus applies a transition. Administrative actors may move any order
// to any valid status; owners may only touch their own orders.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}

	if !input.ActorRole.IsAdministrative() && order.UserID != input.ActorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	if order.Status == input.Status {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return nil
}

func (s *service) FindByPaymentRequestID(ctx context.Context, paymentRequestID string) (*OrderDTO, error) {
	if paymentRequestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment request id required")
	}
	order, err := s.repo.FindByPaymentRequestID(ctx, paymentRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for payment request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find order by payment request")
	}
	return FromModel(order), nil
}

func (s *service) AttachPaymentRequest(ctx context.Context, orderID uuid.UUID, paymentRequestID string) error {
	if orderID == uuid.Nil || paymentRequestID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and payment request id required")
	}
	if err := s.repo.SetPaymentRequestID(ctx, orderID, paymentRequestID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach payment request")
	}
	return nil
}
