package game

import (
	"context"
	"sync"

	gameservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/application"
	gamehandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/handlers"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/parsers"
	gamedb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the multiplayer game module.
type Module struct {
	Service       gameservice.Service
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewGameModule creates the game module and mounts its routes on
// httpRouter when one is given.
func NewGameModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	store kvstore.Store,
	settings gameservice.SettingsReader,
	paywall paywallservice.Entitlements,
	publisher message.Publisher,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer("game")

	logger.InfoContext(ctx, "game.NewGameModule initializing")

	service := gameservice.NewGameService(
		gamedb.NewRepository(store),
		settings,
		paywall,
		publisher,
		gameservice.NewScoresheetImporter(parsers.NewFactory()),
		logger,
		obs.ServiceMetrics(),
		tracer,
		db,
	)

	if httpRouter != nil {
		gamehandlers.NewGameHandlers(service, logger, tracer).RegisterRoutes(httpRouter)
	}

	return &Module{
		Service:       service,
		observability: obs,
	}
}

// Run starts the game module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting game module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Game module goroutine stopped")
}

// Close shuts down the game module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Game module stopped")
	return nil
}
