package integration

import (
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/integration/myfatoorah"
	"github.com/ihsanfund/donations/internal/integration/stripe"
	"go.uber.org/fx"
)

// Module provides both provider clients, their gateways and the registry
// the donation service dispatches through
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			myfatoorah.NewClient,
			myfatoorah.NewGateway,
			stripe.NewClient,
			stripe.NewGateway,
			NewRegistry,
		),
	)
}

// NewRegistry registers every supported payment method
func NewRegistry(mf *myfatoorah.Gateway, st *stripe.Gateway) *base.Registry {
	return base.NewRegistry(mf, st)
}
