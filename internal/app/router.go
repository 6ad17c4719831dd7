package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sobitas/backoffice/internal/billing"
	"github.com/sobitas/backoffice/internal/catalog"
	"github.com/sobitas/backoffice/internal/clients"
	"github.com/sobitas/backoffice/internal/observability"
	"github.com/sobitas/backoffice/internal/stock"
	"github.com/sobitas/backoffice/jobs"
	"github.com/sobitas/backoffice/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	BillingHandler *billing.Handler
	ClientsHandler *clients.Handler
	CatalogHandler *catalog.Handler
	StockHandler   *stock.Handler
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router serving the back-office API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		params.BillingHandler.MountRoutes(api)
		params.ClientsHandler.MountRoutes(api)
		params.CatalogHandler.MountRoutes(api)
		params.StockHandler.MountRoutes(api)
		if params.ReportHandler != nil {
			api.Route("/report", func(rep chi.Router) {
				params.ReportHandler.MountRoutes(rep)
			})
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(j chi.Router) {
				params.JobHandler.MountRoutes(j)
			})
		}
	})

	return r
}
