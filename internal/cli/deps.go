package cli

import (
	"context"
	"log/slog"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/app"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/config"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/event"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/persistence"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/reconciler"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/service"
)

// ConfigOpener builds Deps from the service's own environment configuration.
// cartctl does not publish events.
func ConfigOpener(cfg *config.Config, logger *slog.Logger) Opener {
	return func(ctx context.Context) (*Deps, error) {
		storage, err := app.OpenStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		adapter := persistence.NewAdapter(storage.Ledgers, logger)
		events := event.NewProducer(event.NopPublisher{}, logger)

		policy := domain.DefaultPricingPolicy()
		policy.CouponEstimateRate = cfg.CouponEstimateRate()

		carts := service.NewCartService(adapter, events, policy, logger)
		return &Deps{
			Carts:      carts,
			Reconciler: reconciler.New(carts, app.NewCommerceClient(cfg, logger), events, cfg.ReconcileItemTimeout, logger),
			Close:      storage.Close,
		}, nil
	}
}
