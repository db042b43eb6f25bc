package api

import (
	"net/http"

	mw "github.com/Revenn0/trackwatch/internal/api/middleware"
	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc
	CreateAccount http.HandlerFunc
	ListAccounts  http.HandlerFunc
	SyncHandler   http.HandlerFunc
	ListAlerts    http.HandlerFunc
	DeviceRollups http.HandlerFunc
	ListSyncRuns  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/v1/accounts", orNotImplemented(deps.CreateAccount))
	r.Get("/api/v1/accounts", orNotImplemented(deps.ListAccounts))

	r.Route("/api/v1/accounts/{accountID}", func(r chi.Router) {
		// Sync is the expensive route; it is the only one rate limited.
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimit.Limit)
			r.Post("/sync", orNotImplemented(deps.SyncHandler))
		})

		r.Get("/alerts", orNotImplemented(deps.ListAlerts))
		r.Get("/devices", orNotImplemented(deps.DeviceRollups))
		r.Get("/syncs", orNotImplemented(deps.ListSyncRuns))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
