package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/pkg/enums"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

// Entry is one (product, quantity) line in a session cart. Price and name are
// snapshots taken at add time; total derivation never consults the live
// product row.
type Entry struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (e Entry) Subtotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Store keeps one in-memory cart per authenticated user for the lifetime of
// the process. Administrative actors cannot mutate carts; their attempts are
// logged and dropped without an error so the calling flow proceeds untouched.
type Store struct {
	mu     sync.Mutex
	carts  map[uuid.UUID]map[uuid.UUID]Entry
	orders map[uuid.UUID][]uuid.UUID // insertion order of product ids per user
	logger *logger.Logger
}

// NewStore builds an empty cart store.
func NewStore(logg *logger.Logger) *Store {
	return &Store{
		carts:  make(map[uuid.UUID]map[uuid.UUID]Entry),
		orders: make(map[uuid.UUID][]uuid.UUID),
		logger: logg,
	}
}

// AddItem inserts the entry or increments the quantity of an existing one.
// Non-positive quantities fall back to 1. Stock bounds are enforced by the
// caller, not here.
func (s *Store) AddItem(ctx context.Context, userID uuid.UUID, role enums.UserRole, item Entry, quantity int) {
	if s.denied(ctx, userID, role, "add_item") {
		return
	}
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if cart == nil {
		cart = make(map[uuid.UUID]Entry)
		s.carts[userID] = cart
	}

	if existing, ok := cart[item.ProductID]; ok {
		existing.Quantity += quantity
		cart[item.ProductID] = existing
		return
	}

	item.Quantity = quantity
	cart[item.ProductID] = item
	s.orders[userID] = append(s.orders[userID], item.ProductID)
}

// RemoveItem deletes the entry; no-op when absent.
func (s *Store) RemoveItem(ctx context.Context, userID uuid.UUID, role enums.UserRole, productID uuid.UUID) {
	if s.denied(ctx, userID, role, "remove_item") {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(userID, productID)
}

// SetQuantity replaces the entry's quantity. Zero or negative quantity is
// equivalent to RemoveItem.
func (s *Store) SetQuantity(ctx context.Context, userID uuid.UUID, role enums.UserRole, productID uuid.UUID, quantity int) {
	if s.denied(ctx, userID, role, "set_quantity") {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(userID, productID)
		return
	}

	cart := s.carts[userID]
	if cart == nil {
		return
	}
	entry, ok := cart[productID]
	if !ok {
		return
	}
	entry.Quantity = quantity
	cart[productID] = entry
}

// Seed installs a cart for the user only when none exists in memory, keeping
// the live session authoritative over persisted rows. Returns true when the
// entries were installed.
func (s *Store) Seed(userID uuid.UUID, entries []Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.carts[userID]) > 0 {
		return false
	}

	cart := make(map[uuid.UUID]Entry, len(entries))
	order := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		if _, ok := cart[entry.ProductID]; ok {
			continue
		}
		cart[entry.ProductID] = entry
		order = append(order, entry.ProductID)
	}
	if len(cart) == 0 {
		return false
	}

	s.carts[userID] = cart
	s.orders[userID] = order
	return true
}

// Clear empties the user's cart unconditionally.
func (s *Store) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	delete(s.orders, userID)
}

// Items returns the cart entries in insertion order.
func (s *Store) Items(userID uuid.UUID) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if len(cart) == 0 {
		return []Entry{}
	}

	out := make([]Entry, 0, len(cart))
	for _, productID := range s.orders[userID] {
		if entry, ok := cart[productID]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// Total recomputes Σ(quantity × price) from the current entry set on every
// call; nothing is cached.
func (s *Store) Total(userID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, entry := range s.carts[userID] {
		total = total.Add(entry.Subtotal())
	}
	return total
}

// ItemCount returns the summed quantity across entries.
func (s *Store) ItemCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, entry := range s.carts[userID] {
		count += entry.Quantity
	}
	return count
}

// OnIdentityChange reacts to authenticated-identity transitions. A user whose
// role becomes administrative has their cart emptied unconditionally.
func (s *Store) OnIdentityChange(ctx context.Context, userID uuid.UUID, role enums.UserRole) {
	if !role.IsAdministrative() {
		return
	}
	s.Clear(userID)
	if s.logger != nil {
		ctx = s.logger.WithUserID(ctx, userID.String())
		s.logger.Info(ctx, "cart cleared on administrative role transition")
	}
}

func (s *Store) removeLocked(userID, productID uuid.UUID) {
	cart := s.carts[userID]
	if cart == nil {
		return
	}
	delete(cart, productID)

	order := s.orders[userID]
	for i, id := range order {
		if id == productID {
			s.orders[userID] = append(order[:i], order[i+1:]...)
			break
		}
	}
}

func (s *Store) denied(ctx context.Context, userID uuid.UUID, role enums.UserRole, op string) bool {
	if !role.IsAdministrative() {
		return false
	}
	if s.logger != nil {
		ctx = s.logger.WithFields(ctx, map[string]any{
			"user_id":   userID.String(),
			"operation": op,
		})
		s.logger.Warn(ctx, "cart mutation denied for administrative role")
	}
	return true
}
