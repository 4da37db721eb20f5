package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/rate"
)

// RateLimit throttles per cart identity. It sits after the identity
// resolver; requests without a resolved identity fall back to the
// client address as the bucket key.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			key := r.RemoteAddr
			if id, err := identity.Get(ctx); err == nil {
				key = id.Key()
			}

			if !lim.Check(key) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
