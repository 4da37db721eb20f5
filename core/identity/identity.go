package identity

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindSession Kind = "session"
)

// Identity is the tagged union a cart is keyed by: an authenticated
// user or an anonymous browser session. Exactly one of UserID and
// SessionID is set, according to Kind.
type Identity struct {
	Kind      Kind
	UserID    string
	SessionID string
	Role      string
}

func User(userID string) Identity {
	return Identity{Kind: KindUser, UserID: userID, Role: RoleUser}
}

func Session(sessionID string) Identity {
	return Identity{Kind: KindSession, SessionID: sessionID}
}

func (id Identity) IsUser() bool { return id.Kind == KindUser }

func (id Identity) IsAdmin() bool { return id.Kind == KindUser && id.Role == RoleAdmin }

func (id Identity) IsZero() bool { return id.Kind == "" }

// Key is the stable storage key for the identity's cart. The kind
// prefix keeps user and session namespaces from colliding.
func (id Identity) Key() string {
	if id.Kind == KindUser {
		return "user:" + id.UserID
	}
	return "session:" + id.SessionID
}

type ctxKey int

const identityKey ctxKey = 1

func Set(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func Get(ctx context.Context) (Identity, error) {
	v, ok := ctx.Value(identityKey).(Identity)
	if !ok || v.IsZero() {
		return Identity{}, errors.New("identity missing from context")
	}
	return v, nil
}
