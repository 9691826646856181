package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimarket-client/api/responses"
	"github.com/angelmondragon/minimarket-client/api/validators"
	"github.com/angelmondragon/minimarket-client/internal/cartview"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
)

// CartView is the slice of cartview.View the cart routes drive.
type CartView interface {
	Badge() cartview.Badge
	Rows() []cartview.Row
	Totals() cartview.Totals
	ClickAdd(ctx context.Context, p storefront.Product) error
	ClickIncrement(ctx context.Context, productID string) error
	ClickDecrement(ctx context.Context, productID string) error
	TypeQuantity(ctx context.Context, productID, raw string) error
	ClickRemove(ctx context.Context, productID string) error
	ClickClear(ctx context.Context) error
}

// CartRefresher reloads the cart when another process changed the stored snapshot.
type CartRefresher interface {
	Refresh(ctx context.Context) (bool, error)
}

type cartResponse struct {
	Badge  cartview.Badge  `json:"badge"`
	Rows   []cartview.Row  `json:"rows"`
	Totals cartview.Totals `json:"totals"`
}

func newCartResponse(view CartView) cartResponse {
	return cartResponse{
		Badge:  view.Badge(),
		Rows:   view.Rows(),
		Totals: view.Totals(),
	}
}

type addItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,max=64"`
	Name      string           `json:"name" validate:"required,max=200"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required"`
}

type quantityRequest struct {
	Quantity string `json:"quantity" validate:"max=32"`
}

// CartGet returns the cart rows, badge and totals, picking up changes made by
// other processes sharing the same state store.
func CartGet(view CartView, refresher CartRefresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if view == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		if refresher != nil {
			changed, err := refresher.Refresh(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if changed && logg != nil {
				logg.Debug(r.Context(), "cart.refreshed")
			}
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartAddItem adds one unit of the posted product.
func CartAddItem(view CartView, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if view == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product := storefront.Product{
			ID:    strings.TrimSpace(payload.ProductID),
			Name:  strings.TrimSpace(payload.Name),
			Price: *payload.UnitPrice,
		}
		if err := view.ClickAdd(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartIncrement(view CartView, logg *logger.Logger) http.HandlerFunc {
	return cartItemAction(view, logg, view.ClickIncrement)
}

func CartDecrement(view CartView, logg *logger.Logger) http.HandlerFunc {
	return cartItemAction(view, logg, view.ClickDecrement)
}

func CartRemoveItem(view CartView, logg *logger.Logger) http.HandlerFunc {
	return cartItemAction(view, logg, view.ClickRemove)
}

// CartSetQuantity applies raw quantity text the way the quantity box does.
func CartSetQuantity(view CartView, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := view.TypeQuantity(r.Context(), productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartClear(view CartView, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := view.ClickClear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func cartItemAction(view CartView, logg *logger.Logger, action func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, productID)
		}
		if err := action(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func productIDParam(r *http.Request) (string, error) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return productID, nil
}
