package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/joaofortes502/E-commerce-sub000/api"
	"github.com/joaofortes502/E-commerce-sub000/core/cart"
	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/joaofortes502/E-commerce-sub000/core/order"
	"github.com/joaofortes502/E-commerce-sub000/core/product"
	"github.com/sirupsen/logrus"
)

// TestEnv runs the full API over the in-memory backends.
type TestEnv struct {
	t *testing.T

	Server *httptest.Server
	URL    string

	Session     *scs.SessionManager
	Catalog     *product.Memory
	CartStorage *cart.Memory
	Orders      *order.Memory
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	catalog := product.NewMemory()
	storage := cart.NewMemory()
	carts := cart.NewStore(storage, catalog)
	orders := order.NewMemory(storage, catalog)
	sm := scs.New()

	mux := api.APIMux(api.APIConfig{
		Log:          log,
		Session:      sm,
		Catalog:      catalog,
		CatalogCache: catalog,
		Carts:        carts,
		Merger:       &cart.Merger{Storage: storage, Log: log},
		Orders:       orders,
		Checkout:     &order.Engine{Carts: carts, Catalog: catalog, Orders: orders},
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &TestEnv{
		t:           t,
		Server:      srv,
		URL:         srv.URL,
		Session:     sm,
		Catalog:     catalog,
		CartStorage: storage,
		Orders:      orders,
	}
}

// Login crafts a session cookie carrying the claims the identity
// provider would have stored.
func (te *TestEnv) Login(userID string, role string) *http.Cookie {
	te.t.Helper()

	ctx, err := te.Session.Load(context.Background(), "")
	if err != nil {
		te.t.Fatalf("loading session: %v", err)
	}
	te.Session.Put(ctx, "userID", userID)
	if role != "" {
		te.Session.Put(ctx, "role", role)
	}

	token, _, err := te.Session.Commit(ctx)
	if err != nil {
		te.t.Fatalf("committing session: %v", err)
	}

	return &http.Cookie{Name: te.Session.Cookie.Name, Value: token}
}

type reqOpt func(*http.Request)

func asSession(sessionID string) reqOpt {
	return func(r *http.Request) { r.Header.Set(identity.SessionHeader, sessionID) }
}

func asUser(cookie *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

// do sends a request and decodes the JSON response into out when out
// is non-nil. It returns the status code.
func (te *TestEnv) do(method, path string, body interface{}, out interface{}, opts ...reqOpt) int {
	te.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			te.t.Fatalf("marshaling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, te.URL+path, rd)
	if err != nil {
		te.t.Fatalf("building request: %v", err)
	}
	for _, opt := range opts {
		opt(r)
	}

	w, err := te.Server.Client().Do(r)
	if err != nil {
		te.t.Fatalf("sending %s %s: %v", method, path, err)
	}
	defer w.Body.Close()

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			te.t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return w.StatusCode
}
