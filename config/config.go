package config

import (
	"time"

	"github.com/joaofortes502/E-commerce-sub000/database"
)

type Config struct {
	Web     Web
	DB      database.Config
	Session Session
	Cors    Cors
	Rate    Rate
	Catalog Catalog
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

type Cors struct {
	Origin string
}

type Rate struct {
	Burst int `conf:"default:20"`
	// Every is the minimum interval between sustained requests from
	// one identity once the burst is spent.
	Every time.Duration `conf:"default:100ms"`
	// Expiry is how long, in minutes, an idle client bucket survives.
	Expiry int `conf:"default:10"`
}

type Catalog struct {
	// CacheTTL bounds how stale the cart page's view of price and
	// stock may be. Checkout never reads through this cache.
	CacheTTL time.Duration `conf:"default:5s"`
}
