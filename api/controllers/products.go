package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/minimarket-client/api/responses"
	"github.com/angelmondragon/minimarket-client/api/validators"
	"github.com/angelmondragon/minimarket-client/internal/cartview"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
)

const maxSearchRunes = 100

type CatalogReader interface {
	ListProducts(ctx context.Context) ([]storefront.Product, error)
}

// ProductsList returns the live catalog filtered by ?category= and ?q=.
func ProductsList(catalog CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		category, err := validators.ParseQueryText(r, "category", maxSearchRunes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		search, err := validators.ParseQueryText(r, "q", maxSearchRunes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := catalog.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartview.FilterProducts(products, category, search))
	}
}
