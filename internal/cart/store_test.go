package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/pkg/enums"
)

func entry(name, price string) Entry {
	return Entry{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Currency:  "AED",
	}
}

func TestTotalMatchesEntrySet(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	notebook := entry("Notebook", "10.00")
	pencil := entry("Pencil", "5.50")

	store.AddItem(ctx, userID, enums.UserRoleCustomer, notebook, 2)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, pencil, 1)

	want := decimal.RequireFromString("25.50")
	if got := store.Total(userID); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}

	// Recomputed from the entry set after every mutation.
	store.SetQuantity(ctx, userID, enums.UserRoleCustomer, notebook.ProductID, 3)
	want = decimal.RequireFromString("35.50")
	if got := store.Total(userID); !got.Equal(want) {
		t.Fatalf("expected total %s after set quantity, got %s", want, got)
	}

	store.RemoveItem(ctx, userID, enums.UserRoleCustomer, pencil.ProductID)
	want = decimal.RequireFromString("30.00")
	if got := store.Total(userID); !got.Equal(want) {
		t.Fatalf("expected total %s after removal, got %s", want, got)
	}
}

func TestAddItemIncrementsExistingEntry(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	item := entry("Eraser", "1.25")
	store.AddItem(ctx, userID, enums.UserRoleCustomer, item, 1)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, item, 2)

	items := store.Items(userID)
	if len(items) != 1 {
		t.Fatalf("expected single entry, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestAdministrativeMutationsAreIgnored(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	seeded := entry("Ruler", "3.00")
	store.AddItem(ctx, userID, enums.UserRoleCustomer, seeded, 1)

	store.AddItem(ctx, userID, enums.UserRoleAdmin, entry("Compass", "7.00"), 1)
	store.SetQuantity(ctx, userID, enums.UserRoleAdmin, seeded.ProductID, 99)
	store.RemoveItem(ctx, userID, enums.UserRoleAdmin, seeded.ProductID)

	items := store.Items(userID)
	if len(items) != 1 || items[0].ProductID != seeded.ProductID || items[0].Quantity != 1 {
		t.Fatalf("admin mutation changed the entry set: %+v", items)
	}
}

func TestSetQuantityNonPositiveRemoves(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	a := entry("Glue", "4.00")
	b := entry("Scissors", "9.00")
	store.AddItem(ctx, userID, enums.UserRoleCustomer, a, 1)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, b, 1)

	store.SetQuantity(ctx, userID, enums.UserRoleCustomer, a.ProductID, 0)
	store.SetQuantity(ctx, userID, enums.UserRoleCustomer, b.ProductID, -1)

	if items := store.Items(userID); len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestRemoveMissingEntryIsNoop(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	store.AddItem(ctx, userID, enums.UserRoleCustomer, entry("Crayons", "6.00"), 1)
	store.RemoveItem(ctx, userID, enums.UserRoleCustomer, uuid.New())

	if items := store.Items(userID); len(items) != 1 {
		t.Fatalf("no-op removal changed the cart: %+v", items)
	}
}

func TestIdentityChangeToAdminClearsCart(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	store.AddItem(ctx, userID, enums.UserRoleCustomer, entry("Paint Set", "28.00"), 2)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, entry("Brush", "8.00"), 1)

	store.OnIdentityChange(ctx, userID, enums.UserRoleAdmin)

	if items := store.Items(userID); len(items) != 0 {
		t.Fatalf("expected cleared cart after admin transition, got %+v", items)
	}
	if !store.Total(userID).IsZero() {
		t.Fatal("expected zero total after clear")
	}
}

func TestIdentityChangeToCustomerKeepsCart(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	store.AddItem(ctx, userID, enums.UserRoleCustomer, entry("Folder", "2.00"), 4)
	store.OnIdentityChange(ctx, userID, enums.UserRoleCustomer)

	if items := store.Items(userID); len(items) != 1 {
		t.Fatalf("customer identity change must not clear cart: %+v", items)
	}
}

func TestItemsPreserveInsertionOrder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	first := entry("Alpha", "1.00")
	second := entry("Beta", "2.00")
	third := entry("Gamma", "3.00")
	store.AddItem(ctx, userID, enums.UserRoleCustomer, first, 1)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, second, 1)
	store.AddItem(ctx, userID, enums.UserRoleCustomer, third, 1)
	store.RemoveItem(ctx, userID, enums.UserRoleCustomer, second.ProductID)

	items := store.Items(userID)
	if len(items) != 2 || items[0].Name != "Alpha" || items[1].Name != "Gamma" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCartsAreScopedPerUser(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	store.AddItem(ctx, alice, enums.UserRoleCustomer, entry("Backpack", "60.00"), 1)

	if items := store.Items(bob); len(items) != 0 {
		t.Fatalf("cart leaked across users: %+v", items)
	}
	store.Clear(bob)
	if items := store.Items(alice); len(items) != 1 {
		t.Fatalf("clearing one user affected another: %+v", items)
	}
}
