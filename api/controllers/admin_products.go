package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/api/responses"
	"github.com/madrasati/schoolstore-backend/api/validators"
	productsvc "github.com/madrasati/schoolstore-backend/internal/products"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

type createProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Description   *string `json:"description,omitempty"`
	Category      string  `json:"category" validate:"required,max=64"`
	Price         string  `json:"price" validate:"required"`
	StockQuantity int     `json:"stock_quantity" validate:"min=0"`
	ImageURL      *string `json:"image_url,omitempty"`
}

type updateProductRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=64"`
	Price         *string `json:"price,omitempty"`
	StockQuantity *int    `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	ImageURL      *string `json:"image_url,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return price, nil
}

// AdminProductList returns the full catalog including soft-deleted rows.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		category := validators.SanitizeString(r.URL.Query().Get("category"), 64)
		list, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Category:        category,
			IncludeInactive: true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminProductCreate adds a catalog entry.
func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := parsePrice(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			Name:          validators.SanitizeString(body.Name, 200),
			Description:   body.Description,
			Category:      validators.SanitizeString(body.Category, 64),
			Price:         price,
			StockQuantity: body.StockQuantity,
			ImageURL:      body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate applies a partial update and returns the fresh row.
func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateProductInput{
			Name:          body.Name,
			Description:   body.Description,
			Category:      body.Category,
			StockQuantity: body.StockQuantity,
			ImageURL:      body.ImageURL,
			IsActive:      body.IsActive,
		}
		if body.Price != nil {
			price, err := parsePrice(*body.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = &price
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete soft-deletes a product so existing order snapshots survive.
func AdminProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
