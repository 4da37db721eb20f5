package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/joaofortes502/E-commerce-sub000/api/middleware"
	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/order"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/joaofortes502/E-commerce-sub000/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager

	// Catalog is the live reader checkout validates against;
	// CatalogCache is the bounded-staleness view cart reads use.
	Catalog      product.CatalogReader
	CatalogCache product.CatalogReader

	Carts    *cart.Store
	Merger   *cart.Merger
	Orders   order.Store
	Checkout *order.Engine

	Limiter *rate.Limiter
	Health  web.Handler
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, identity.LoadSessions(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())
	a.mw = append(a.mw, identity.Resolve(cfg.Session))

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	var limited web.Middleware
	if cfg.Limiter != nil {
		limited = middleware.RateLimit(cfg.Limiter)
	}

	if cfg.Health != nil {
		a.Handle(http.MethodGet, "/health", cfg.Health)
	}

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Catalog))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.Catalog))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Carts, cfg.CatalogCache, cfg.Log))
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.Carts), limited)
	a.Handle(http.MethodPost, "/cart/items", cart.HandleCreateItem(cfg.Carts, cfg.CatalogCache), limited)
	a.Handle(http.MethodPut, "/cart/items/{product_id}", cart.HandleUpdateItem(cfg.Carts, cfg.CatalogCache), limited)
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(cfg.Carts, cfg.CatalogCache), limited)
	a.Handle(http.MethodPost, "/cart/migrate", cart.HandleMigrate(cfg.Merger), identity.RequireUser())

	a.Handle(http.MethodPost, "/checkout", order.HandleCheckout(cfg.Checkout), limited)

	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.Orders))
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.Orders))
	a.Handle(http.MethodPut, "/orders/{id}/status", order.HandleUpdateStatus(cfg.Orders), identity.RequireAdmin())

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
