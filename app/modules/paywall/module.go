package paywall

import (
	"context"
	"sync"
	"time"

	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	paywallhandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/handlers"
	paywalljwt "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/jwt"
	paywalldb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/repositories"
	paywallstore "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/store"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Config carries the paywall settings taken from the app config.
type Config struct {
	JWTSecret  string
	TokenTTL   time.Duration
	RedeemCode string
	Limits     paywallservice.Limits
	// Store defaults to the sandbox store.
	Store paywallstore.Provider
}

// Module represents the paywall module.
type Module struct {
	Service       *paywallservice.PaywallService
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewPaywallModule creates the paywall module and mounts its routes on
// httpRouter when one is given.
func NewPaywallModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	store kvstore.Store,
	cfg Config,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer("paywall")

	logger.InfoContext(ctx, "paywall.NewPaywallModule initializing")

	provider := cfg.Store
	if provider == nil {
		logger.InfoContext(ctx, "Using sandbox store provider")
		provider = paywallstore.NewSandbox()
	}

	service := paywallservice.NewPaywallService(
		paywalldb.NewRepository(store),
		provider,
		paywalljwt.NewProvider(cfg.JWTSecret),
		paywallservice.Options{
			RedeemCode: cfg.RedeemCode,
			TokenTTL:   cfg.TokenTTL,
			Limits:     cfg.Limits,
		},
		logger,
		obs.ServiceMetrics(),
		tracer,
		db,
	)

	if httpRouter != nil {
		paywallhandlers.NewPaywallHandlers(service, logger, tracer).RegisterRoutes(httpRouter)
	}

	return &Module{
		Service:       service,
		observability: obs,
	}
}

// Run starts the paywall module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting paywall module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Paywall module goroutine stopped")
}

// Close shuts down the paywall module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Paywall module stopped")
	return nil
}
