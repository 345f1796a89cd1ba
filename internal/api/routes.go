package api

import (
	"net/http"

	"github.com/cyberforge/cyberforge/internal/config"
	"github.com/cyberforge/cyberforge/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Recommendations.Handler().Routes(),
	)

	routes.Register(
		mux,
		domain.Intel.Handler().
			WithMaxUploadSize(cfg.API.MaxUploadSizeBytes()).
			Routes(),
	)

	routes.Register(
		mux,
		domain.Deployments.Handler().Routes(),
	)

	routes.Register(
		mux,
		domain.Billing.Handler().Routes(),
	)

	storage := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		int32(runtime.Pagination.MaxPageSize),
	)
	routes.Register(mux, storage.routes())
}
