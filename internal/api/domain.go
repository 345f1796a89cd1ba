package api

import (
	"github.com/cyberforge/cyberforge/internal/billing"
	"github.com/cyberforge/cyberforge/internal/deployments"
	"github.com/cyberforge/cyberforge/internal/intel"
	"github.com/cyberforge/cyberforge/internal/recommendations"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Intel           intel.System
	Billing         billing.System
	Recommendations recommendations.System
	Deployments     deployments.System
}

// NewDomain creates all domain systems from the API runtime. The intel and
// billing systems double as the recommendation engine's record source and
// usage source.
func NewDomain(runtime *Runtime) *Domain {
	intelSystem := intel.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	billingSystem := billing.New(
		runtime.Database.Connection(),
		runtime.Pricing,
		runtime.Logger,
	)

	recommendationsSystem := recommendations.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
		runtime.Policy,
		intelSystem,
		billingSystem,
		runtime.Storage,
	)

	deploymentsSystem := deployments.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Intel:           intelSystem,
		Billing:         billingSystem,
		Recommendations: recommendationsSystem,
		Deployments:     deploymentsSystem,
	}
}
