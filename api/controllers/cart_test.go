package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/api/middleware"
	cartsvc "github.com/madrasati/schoolstore-backend/internal/cart"
	productsvc "github.com/madrasati/schoolstore-backend/internal/products"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/types"
)

type stubProductService struct {
	products map[uuid.UUID]*productsvc.ProductDTO
}

func (s stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) ([]productsvc.ProductDTO, error) {
	out := make([]productsvc.ProductDTO, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

type recordingMirror struct {
	upserts int
	removes int
	clears  int
}

func (m *recordingMirror) Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	m.upserts++
	return nil
}

func (m *recordingMirror) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	m.removes++
	return nil
}

func (m *recordingMirror) ClearForUser(ctx context.Context, userID uuid.UUID) error {
	m.clears++
	return nil
}

func authedRequest(method, target, body string, userID uuid.UUID, role enums.UserRole) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func decodeCartResponse(t *testing.T, resp *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var cart cartResponse
	if err := json.Unmarshal(raw, &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return cart
}

func testProduct(id uuid.UUID, name string, price string) *productsvc.ProductDTO {
	return &productsvc.ProductDTO{
		ID:            id,
		Name:          name,
		Category:      "stationery",
		Price:         decimal.RequireFromString(price),
		Currency:      "AED",
		StockQuantity: 10,
		IsActive:      true,
	}
}

func TestCartAddItemAndFetch(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	store := cartsvc.NewStore(nil)
	mirror := &recordingMirror{}
	products := stubProductService{products: map[uuid.UUID]*productsvc.ProductDTO{
		productID: testProduct(productID, "Notebook", "25.50"),
	}}

	handler := CartAddItem(store, products, mirror, "AED", nil)
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+productID.String()+`","quantity":2}`, userID, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	cart := decodeCartResponse(t, resp)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if !cart.Total.Equal(decimal.RequireFromString("51.00")) {
		t.Fatalf("expected total 51.00 got %s", cart.Total)
	}
	if mirror.upserts != 1 {
		t.Fatalf("expected one mirrored upsert, got %d", mirror.upserts)
	}
}

func TestCartAddItemAdminIsIgnored(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	store := cartsvc.NewStore(nil)
	mirror := &recordingMirror{}
	products := stubProductService{products: map[uuid.UUID]*productsvc.ProductDTO{
		productID: testProduct(productID, "Notebook", "25.50"),
	}}

	handler := CartAddItem(store, products, mirror, "AED", nil)
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+productID.String()+`","quantity":2}`, userID, enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("denied mutation must not fail the request, got %d", resp.Code)
	}
	cart := decodeCartResponse(t, resp)
	if len(cart.Items) != 0 {
		t.Fatalf("admin cart should stay empty, got %+v", cart.Items)
	}
	if mirror.upserts != 0 {
		t.Fatalf("nothing should be persisted for a denied mutation, got %d upserts", mirror.upserts)
	}
}

func TestCartAddItemRejectsInactiveProduct(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	inactive := testProduct(productID, "Old Uniform", "99.00")
	inactive.IsActive = false

	store := cartsvc.NewStore(nil)
	handler := CartAddItem(store, stubProductService{products: map[uuid.UUID]*productsvc.ProductDTO{productID: inactive}}, &recordingMirror{}, "AED", nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+productID.String()+`"}`, userID, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	store := cartsvc.NewStore(nil)
	store.AddItem(context.Background(), userID, enums.UserRoleCustomer, cartsvc.Entry{
		ProductID: productID,
		Name:      "Notebook",
		UnitPrice: decimal.RequireFromString("25.50"),
		Currency:  "AED",
	}, 1)
	mirror := &recordingMirror{}

	handler := CartClear(store, mirror, "AED", nil)
	req := authedRequest(http.MethodDelete, "/api/v1/cart", "", userID, enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	cart := decodeCartResponse(t, resp)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty, got %+v", cart.Items)
	}
	if mirror.clears != 1 {
		t.Fatalf("expected persisted cart clear, got %d", mirror.clears)
	}
}
