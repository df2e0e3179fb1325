package publisher

import (
	"context"

	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/pubsub/memory"
	"github.com/ihsanfund/donations/internal/pubsub/router"
	"github.com/ihsanfund/donations/internal/receipt"
	"go.uber.org/fx"
)

// Module wires the in-process event bus, the publisher and the receipt consumer
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			memory.NewPubSub,
			router.NewRouter,
			NewDonationEventPublisher,
			receipt.NewLogSender,
			receipt.NewHandler,
		),
		fx.Invoke(registerRouter),
	)
}

func registerRouter(lc fx.Lifecycle, r *router.Router, h *receipt.Handler, log *logger.Logger) {
	h.RegisterHandler(r)

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := r.Run(runCtx); err != nil {
					log.Errorw("event router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return r.Close()
		},
	})
}
