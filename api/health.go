package api

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/joaofortes502/E-commerce-sub000/api/web"
	"github.com/joaofortes502/E-commerce-sub000/api/weberr"
	"github.com/joaofortes502/E-commerce-sub000/database"
)

// Health reports readiness, including a database round trip.
func Health(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := database.StatusCheck(ctx, db); err != nil {
			return weberr.NewError(err, "database not ready", http.StatusServiceUnavailable)
		}

		status := struct {
			Status string `json:"status"`
		}{Status: "ok"}
		return web.Respond(ctx, w, status, http.StatusOK)
	}
}
