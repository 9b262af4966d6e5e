package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
)

func seedProduct(t *testing.T, conn *gorm.DB, name, price string, active bool) models.Product {
	t.Helper()

	product := models.Product{
		ID:            uuid.New(),
		Name:          name,
		Category:      "stationery",
		Price:         decimal.RequireFromString(price),
		Currency:      "AED",
		StockQuantity: 10,
		IsActive:      active,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if !active {
		// GORM's Create drops the zero-value false because of the
		// default:true tag, so deactivate explicitly.
		if err := conn.Model(&product).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate product: %v", err)
		}
	}
	return product
}

func TestHydratorRestoresPersistedCartOnLogin(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	notebook := seedProduct(t, conn, "Notebook", "10.00", true)
	pencil := seedProduct(t, conn, "Pencil", "5.50", true)
	if err := repo.Upsert(ctx, userID, notebook.ID, 2); err != nil {
		t.Fatalf("upsert notebook: %v", err)
	}
	if err := repo.Upsert(ctx, userID, pencil.ID, 1); err != nil {
		t.Fatalf("upsert pencil: %v", err)
	}

	NewHydrator(store, repo, nil).OnIdentityChange(ctx, userID, enums.UserRoleCustomer)

	items := store.Items(userID)
	if len(items) != 2 {
		t.Fatalf("expected 2 hydrated entries, got %d", len(items))
	}
	byProduct := make(map[uuid.UUID]Entry, len(items))
	for _, item := range items {
		byProduct[item.ProductID] = item
	}
	restored, ok := byProduct[notebook.ID]
	if !ok || restored.Quantity != 2 {
		t.Fatalf("expected notebook with quantity 2, got %+v", byProduct)
	}
	if restored.Name != "Notebook" || !restored.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected product snapshot restored, got %+v", restored)
	}

	want := decimal.RequireFromString("25.50")
	if got := store.Total(userID); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestHydratorKeepsLiveCartAuthoritative(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	persisted := seedProduct(t, conn, "Ruler", "3.00", true)
	if err := repo.Upsert(ctx, userID, persisted.ID, 5); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	live := entry("Eraser", "1.25")
	store.AddItem(ctx, userID, enums.UserRoleCustomer, live, 1)

	NewHydrator(store, repo, nil).OnIdentityChange(ctx, userID, enums.UserRoleCustomer)

	items := store.Items(userID)
	if len(items) != 1 || items[0].ProductID != live.ProductID {
		t.Fatalf("expected live cart untouched, got %+v", items)
	}
}

func TestHydratorSkipsAdministrativeIdentity(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, conn, "Glue", "4.00", true)
	if err := repo.Upsert(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	NewHydrator(store, repo, nil).OnIdentityChange(ctx, userID, enums.UserRoleAdmin)

	if count := store.ItemCount(userID); count != 0 {
		t.Fatalf("expected empty cart for admin, got %d items", count)
	}
}

func TestHydratorSkipsDeactivatedProducts(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	store := NewStore(nil)
	ctx := context.Background()
	userID := uuid.New()

	retired := seedProduct(t, conn, "Old Planner", "9.00", false)
	current := seedProduct(t, conn, "New Planner", "11.00", true)
	if err := repo.Upsert(ctx, userID, retired.ID, 1); err != nil {
		t.Fatalf("upsert retired: %v", err)
	}
	if err := repo.Upsert(ctx, userID, current.ID, 1); err != nil {
		t.Fatalf("upsert current: %v", err)
	}

	NewHydrator(store, repo, nil).OnIdentityChange(ctx, userID, enums.UserRoleCustomer)

	items := store.Items(userID)
	if len(items) != 1 {
		t.Fatalf("expected 1 hydrated entry, got %d", len(items))
	}
	if items[0].ProductID != current.ID {
		t.Fatalf("expected only the active product, got %+v", items[0])
	}
}
