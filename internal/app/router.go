package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerpos/ledgerpos/internal/pos"
	reporthttp "github.com/ledgerpos/ledgerpos/internal/reports/http"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	POSHandler     *pos.Handler
	ReportsHandler *reporthttp.Handler
}

// NewRouter constructs the chi.Router with LedgerPOS defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		if params.POSHandler != nil {
			params.POSHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
	})

	return r
}
