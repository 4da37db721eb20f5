package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/validate"
)

type checkoutResponse struct {
	Order        Order         `json:"order"`
	PriceChanges []PriceChange `json:"priceChanges,omitempty"`
}

type conflictResponse struct {
	Error     string         `json:"error"`
	Conflicts []ConflictItem `json:"conflicts"`
}

// HandleCheckout converts the identity's cart into an order. Payment
// is collected on delivery, so a successful checkout goes straight to
// pending.
func HandleCheckout(engine *Engine) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		var n OrderNew
		if err := web.Decode(w, r, &n); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.Check(n); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, changes, err := engine.Checkout(ctx, id, n)
		if err != nil {
			var cerr *ConflictError
			switch {
			case errors.As(err, &cerr):
				body := conflictResponse{Error: cerr.Error(), Conflicts: cerr.Items}
				return weberr.Conflict(err, &body)
			case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrEmptyAddress):
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			default:
				return err
			}
		}

		resp := checkoutResponse{Order: ord, PriceChanges: changes}
		return web.Respond(ctx, w, resp, http.StatusCreated)
	}
}

func HandleList(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		ords, err := store.ListByOwner(ctx, id)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

func HandleShow(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := identity.Get(ctx)
		if err != nil {
			return err
		}

		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(err)
		}

		ord, err := store.Fetch(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if ord.OwnerKey != id.Key() && !id.IsAdmin() {
			// Hide the order's existence from other identities.
			return weberr.NotFound(errors.New("order belongs to another identity"))
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// HandleUpdateStatus is the admin transition endpoint. The status
// machine itself decides what is reachable; the handler only maps
// refusals onto responses.
func HandleUpdateStatus(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(err)
		}

		var up StatusUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if !up.Status.Valid() {
			err := errors.New("unknown order status")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := store.UpdateStatus(ctx, orderID, up.Status, time.Now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return weberr.NotFound(err)
			case errors.Is(err, ErrBadTransition):
				return weberr.NewError(err, err.Error(), http.StatusConflict)
			default:
				return err
			}
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}
