package product

import (
	"context"
	"errors"
	"net/http"

	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
)

func HandleList(catalog CatalogReader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := catalog.ListProducts(ctx)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(catalog CatalogReader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID, err := web.IntParam(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		p, err := catalog.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}
