package opponent

import (
	"context"
	"sync"

	opponentservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/application"
	opponenthandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/infrastructure/handlers"
	opponentdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the head-to-head opponent module.
type Module struct {
	Service       opponentservice.Service
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewOpponentModule creates the opponent module and mounts its routes on
// httpRouter when one is given.
func NewOpponentModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	store kvstore.Store,
	settings opponentservice.SettingsReader,
	paywall paywallservice.Entitlements,
	publisher message.Publisher,
	tieBreak scoring.TieBreak,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer("opponent")

	logger.InfoContext(ctx, "opponent.NewOpponentModule initializing")

	service := opponentservice.NewOpponentService(
		opponentdb.NewRepository(store),
		settings,
		paywall,
		publisher,
		tieBreak,
		logger,
		obs.ServiceMetrics(),
		tracer,
		db,
	)

	if httpRouter != nil {
		opponenthandlers.NewOpponentHandlers(service, logger, tracer).RegisterRoutes(httpRouter)
	}

	return &Module{
		Service:       service,
		observability: obs,
	}
}

// Run starts the opponent module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting opponent module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Opponent module goroutine stopped")
}

// Close shuts down the opponent module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Opponent module stopped")
	return nil
}
