package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

// persistedLister reads back the mirrored cart rows for one user.
type persistedLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

// Hydrator copies the persisted cart mirror back into the in-memory store
// when a customer signs in, so a process restart does not lose carts.
// Administrative identities are never hydrated. An existing session cart is
// never overwritten; the live session stays authoritative.
type Hydrator struct {
	store  *Store
	repo   persistedLister
	logger *logger.Logger
}

// NewHydrator builds a hydrator over the given store and repository.
func NewHydrator(store *Store, repo persistedLister, logg *logger.Logger) *Hydrator {
	return &Hydrator{store: store, repo: repo, logger: logg}
}

// OnIdentityChange rebuilds the user's session cart from the persisted rows.
// Read failures are logged and swallowed so a mirror outage never blocks
// login. Rows whose product has been deactivated are skipped.
func (h *Hydrator) OnIdentityChange(ctx context.Context, userID uuid.UUID, role enums.UserRole) {
	if h.store == nil || h.repo == nil {
		return
	}
	if role.IsAdministrative() {
		return
	}
	if h.store.ItemCount(userID) > 0 {
		return
	}

	rows, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		if h.logger != nil {
			ctx = h.logger.WithUserID(ctx, userID.String())
			ctx = h.logger.WithField(ctx, "error", err.Error())
			h.logger.Warn(ctx, "cart rehydration failed")
		}
		return
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if row.Product.ID == uuid.Nil || !row.Product.IsActive {
			continue
		}
		entries = append(entries, Entry{
			ProductID: row.ProductID,
			Name:      row.Product.Name,
			UnitPrice: row.Product.Price,
			Currency:  row.Product.Currency,
			Quantity:  row.Quantity,
		})
	}
	if len(entries) == 0 {
		return
	}

	if h.store.Seed(userID, entries) && h.logger != nil {
		ctx = h.logger.WithUserID(ctx, userID.String())
		ctx = h.logger.WithField(ctx, "items", len(entries))
		h.logger.Info(ctx, "cart rehydrated from persisted rows")
	}
}
