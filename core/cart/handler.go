package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/joaofortes502/E-commerce-sub000/validate"
	"github.com/sirupsen/logrus"
)

// Cart views are never cached across a mutation: every handler
// re-reads and re-reconciles the full cart before responding, so the
// client always sees the state its own call produced.

func respondReconciled(ctx context.Context, w http.ResponseWriter, c Cart, catalog product.CatalogReader) error {
	rc, err := Reconcile(ctx, c, catalog)
	if err != nil {
		return err
	}
	return web.Respond(ctx, w, rc, http.StatusOK)
}

// HandleShow returns the reconciled cart. If the cart or catalog
// cannot be read the view degrades to an empty cart rather than
// failing the page: reads never crash the caller.
func HandleShow(store *Store, catalog product.CatalogReader, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		rc := ReconciledCart{Items: []ReconciledItem{}, Summary: Summarize(nil)}

		c, err := store.Get(ctx, id)
		if err == nil {
			rc, err = Reconcile(ctx, c, catalog)
		}
		if err != nil {
			log.WithFields(logrus.Fields{
				"cart":    id.Key(),
				"message": err,
			}).Error("cart read degraded to empty")

			rc = ReconciledCart{Items: []ReconciledItem{}, Summary: Summarize(nil)}
		}

		return web.Respond(ctx, w, rc, http.StatusOK)
	}
}

func HandleCreateItem(store *Store, catalog product.CatalogReader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		var n ItemNew
		if err := web.Decode(w, r, &n); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.Check(n); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := store.AddItem(ctx, id, n)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidQuantity):
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			case errors.Is(err, product.ErrNotFound):
				return weberr.NotFound(err)
			default:
				return err
			}
		}

		return respondReconciled(ctx, w, c, catalog)
	}
}

func HandleUpdateItem(store *Store, catalog product.CatalogReader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		productID, err := web.IntParam(r, "product_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var up ItemUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := store.SetQuantity(ctx, id, productID, *up.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidQuantity):
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrItemNotInCart):
				return weberr.NotFound(err)
			default:
				return err
			}
		}

		return respondReconciled(ctx, w, c, catalog)
	}
}

func HandleDeleteItem(store *Store, catalog product.CatalogReader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		productID, err := web.IntParam(r, "product_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		c, err := store.RemoveItem(ctx, id, productID)
		if err != nil {
			return err
		}

		return respondReconciled(ctx, w, c, catalog)
	}
}

func HandleDelete(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		if err := store.Clear(ctx, id); err != nil {
			return err
		}

		empty := ReconciledCart{Items: []ReconciledItem{}, Summary: Summarize(nil)}
		return web.Respond(ctx, w, empty, http.StatusOK)
	}
}

// HandleMigrate is invoked by the identity provider once per
// successful login or registration, after the session carries the
// authenticated user. A partial merge is reported in the count but
// never fails the login.
func HandleMigrate(merger *Merger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}
		if !id.IsUser() {
			return weberr.NotAuthorized(errors.New("cart migration requires an authenticated user"))
		}

		var n MigrateNew
		if err := web.Decode(w, r, &n); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.Check(n); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		moved, err := merger.Merge(ctx, identity.Session(n.SessionID), id)
		if err != nil {
			merger.Log.WithFields(logrus.Fields{
				"user":    id.Key(),
				"message": err,
			}).Error("cart migration incomplete")
		}

		resp := struct {
			Migrated int `json:"migrated"`
		}{moved}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}
