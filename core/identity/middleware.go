package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
	"github.com/joaofortes502/E-commerce-sub000/random"
)

// SessionHeader carries a client-supplied anonymous cart key. It is a
// weak correlation key, not a security boundary: anyone who knows the
// value can read and mutate that cart.
const SessionHeader = "X-Session-Id"

// Session keys written by the identity provider after login.
const (
	sessionUserKey = "userID"
	sessionRoleKey = "role"
)

const sessionHeaderLengthLimit = 128

// LoadSessions loads the scs session for the request so the resolver
// can read the claims the identity provider stored there. The core
// never writes session state, so nothing is committed back.
func LoadSessions(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			var token string
			if cookie, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := sm.Load(ctx, token)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Resolve decides, once per request, which identity owns the cart.
// Precedence: authenticated claims win over the session header; the
// scs token is the fallback anonymous key; a random key is minted only
// when no correlation at all is available. Handlers never inspect raw
// headers themselves.
func Resolve(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id := resolve(ctx, sm, r)
			ctx = Set(ctx, id)

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func resolve(ctx context.Context, sm *scs.SessionManager, r *http.Request) Identity {
	if userID := sm.GetString(ctx, sessionUserKey); userID != "" {
		id := User(userID)
		if role := sm.GetString(ctx, sessionRoleKey); role != "" {
			id.Role = role
		}
		return id
	}

	if sid := r.Header.Get(SessionHeader); sid != "" {
		if len(sid) > sessionHeaderLengthLimit {
			sid = sid[:sessionHeaderLengthLimit]
		}
		return Session(sid)
	}

	if token := sm.Token(ctx); token != "" {
		return Session(token)
	}

	return Session(random.String(24))
}

// RequireUser rejects requests that did not resolve to an
// authenticated identity.
func RequireUser() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id, err := Get(ctx)
			if err != nil || !id.IsUser() {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// RequireAdmin rejects requests whose identity does not carry the
// admin role.
func RequireAdmin() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id, err := Get(ctx)
			if err != nil || !id.IsAdmin() {
				return weberr.NotAuthorized(errors.New("user is not an admin"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
