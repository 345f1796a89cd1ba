package api

import (
	"github.com/cyberforge/cyberforge/internal/billing"
	"github.com/cyberforge/cyberforge/internal/config"
	"github.com/cyberforge/cyberforge/internal/infrastructure"
	"github.com/cyberforge/cyberforge/internal/recommendations"
	"github.com/cyberforge/cyberforge/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration: pagination,
// the resolved engine policy, and the injected pricing table.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Policy     recommendations.Policy
	Pricing    billing.PricingTable
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	pricing := make(billing.PricingTable, len(cfg.Engine.Pricing))
	for _, p := range cfg.Engine.Pricing {
		pricing[billing.Tier(p.Tier)] = p.MonthlyCost
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Policy:     recommendations.PolicyFromConfig(cfg.Engine),
		Pricing:    pricing,
	}
}
