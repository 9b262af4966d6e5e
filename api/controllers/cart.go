package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/api/responses"
	"github.com/madrasati/schoolstore-backend/api/validators"
	cartsvc "github.com/madrasati/schoolstore-backend/internal/cart"
	productsvc "github.com/madrasati/schoolstore-backend/internal/products"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

type cartMirror interface {
	Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	ClearForUser(ctx context.Context, userID uuid.UUID) error
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items     []cartsvc.Entry `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	ItemCount int             `json:"item_count"`
}

func buildCartResponse(store *cartsvc.Store, userID uuid.UUID, currency string) cartResponse {
	return cartResponse{
		Items:     store.Items(userID),
		Total:     store.Total(userID),
		Currency:  currency,
		ItemCount: store.ItemCount(userID),
	}
}

// mirrorCartLine syncs the persisted row for one product with the in-memory
// cart, which stays the source of truth. A denied mutation leaves the store
// unchanged and therefore persists nothing.
func mirrorCartLine(ctx context.Context, store *cartsvc.Store, repo cartMirror, userID, productID uuid.UUID) error {
	if repo == nil {
		return nil
	}
	for _, entry := range store.Items(userID) {
		if entry.ProductID == productID {
			return repo.Upsert(ctx, userID, productID, entry.Quantity)
		}
	}
	return repo.Remove(ctx, userID, productID)
}

// CartFetch returns the caller's cart contents and recomputed total.
func CartFetch(store *cartsvc.Store, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildCartResponse(store, userID, currency))
	}
}

// CartAddItem snapshots the product into the cart and mirrors the row.
func CartAddItem(store *cartsvc.Store, products productsvc.Service, repo cartMirror, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := products.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is unavailable"))
			return
		}

		store.AddItem(r.Context(), userID, role, cartsvc.Entry{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Currency:  product.Currency,
		}, body.Quantity)

		if err := mirrorCartLine(r.Context(), store, repo, userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart"))
			return
		}
		responses.WriteSuccess(w, buildCartResponse(store, userID, currency))
	}
}

// CartSetQuantity replaces a line quantity; zero or below removes the line.
func CartSetQuantity(store *cartsvc.Store, repo cartMirror, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.SetQuantity(r.Context(), userID, role, productID, body.Quantity)

		if err := mirrorCartLine(r.Context(), store, repo, userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart"))
			return
		}
		responses.WriteSuccess(w, buildCartResponse(store, userID, currency))
	}
}

// CartRemoveItem deletes one line from the cart.
func CartRemoveItem(store *cartsvc.Store, repo cartMirror, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), userID, role, productID)

		if err := mirrorCartLine(r.Context(), store, repo, userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart"))
			return
		}
		responses.WriteSuccess(w, buildCartResponse(store, userID, currency))
	}
}

// CartClear empties the caller's cart in memory and in the database.
func CartClear(store *cartsvc.Store, repo cartMirror, currency string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(userID)
		if repo != nil {
			if err := repo.ClearForUser(r.Context(), userID); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart"))
				return
			}
		}
		responses.WriteSuccess(w, buildCartResponse(store, userID, currency))
	}
}
