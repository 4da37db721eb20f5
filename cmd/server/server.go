package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/joaofortes502/E-commerce-sub000/api"
	"github.com/joaofortes502/E-commerce-sub000/config"
	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/order"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/joaofortes502/E-commerce-sub000/database"
	"github.com/joaofortes502/E-commerce-sub000/rate"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "STORE"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	catalog := product.NewStore(db)
	catalogCache := product.NewCachedReader(catalog, cfg.Catalog.CacheTTL)

	cartStorage := cart.NewPostgres(db)
	carts := cart.NewStore(cartStorage, catalog)
	merger := &cart.Merger{Storage: cartStorage, Log: logger}

	orders := order.NewPostgres(db)
	checkout := &order.Engine{Carts: carts, Catalog: catalog, Orders: orders}

	limiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, rate.Every(cfg.Rate.Every))

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:   cfg.Cors.Origin,
		Log:          logger,
		Session:      sessionManager,
		Catalog:      catalog,
		CatalogCache: catalogCache,
		Carts:        carts,
		Merger:       merger,
		Orders:       orders,
		Checkout:     checkout,
		Limiter:      limiter,
		Health:       api.Health(db),
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
