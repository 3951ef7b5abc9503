package leaderboard

import (
	"context"
	"fmt"
	"sync"

	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	leaderboardapi "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/api"
	leaderboardhandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/handlers"
	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/router"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	EventBus           eventbus.EventBus
	LeaderboardService leaderboardservice.Service
	LeaderboardRouter  *leaderboardrouter.LeaderboardRouter
	cancelFunc         context.CancelFunc
	observability      *observability.Observability
}

// NewLeaderboardModule creates a new instance of the Leaderboard module. Its
// handlers are registered on router; the caller runs the router.
func NewLeaderboardModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("leaderboard")

	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	leaderboardService := leaderboardservice.NewLeaderboardService(
		leaderboarddb.NewRepository(db),
		logger,
		obs.ServiceMetrics(),
		tracer,
		db,
	)

	module := &Module{
		EventBus:           eventBus,
		LeaderboardService: leaderboardService,
		observability:      obs,
	}

	if router != nil {
		leaderboardRouter := leaderboardrouter.NewLeaderboardRouter(logger, router, eventBus, eventBus, tracer, obs.Registry)
		handlers := leaderboardhandlers.NewLeaderboardHandlers(leaderboardService, logger, tracer)
		if err := leaderboardRouter.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
		}
		module.LeaderboardRouter = leaderboardRouter
	}

	if httpRouter != nil {
		leaderboardapi.NewLeaderboardAPI(leaderboardService, logger, tracer).RegisterRoutes(httpRouter)
	}

	return module, nil
}

// Run starts the leaderboard module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Leaderboard module stopped")
	return nil
}
