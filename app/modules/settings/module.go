package settings

import (
	"context"
	"sync"

	settingsservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/application"
	settingshandlers "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/infrastructure/handlers"
	settingsdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/infrastructure/repositories"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the settings module.
type Module struct {
	Service       settingsservice.Service
	Repository    settingsdb.Repository
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewSettingsModule creates the settings module and mounts its routes on
// httpRouter when one is given.
func NewSettingsModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	store kvstore.Store,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	tracer := obs.Tracer("settings")

	logger.InfoContext(ctx, "settings.NewSettingsModule initializing")

	repo := settingsdb.NewRepository(store)
	service := settingsservice.NewSettingsService(repo, logger, obs.ServiceMetrics(), tracer, db)

	if httpRouter != nil {
		settingshandlers.NewSettingsHandlers(service, logger, tracer).RegisterRoutes(httpRouter)
	}

	return &Module{
		Service:       service,
		Repository:    repo,
		observability: obs,
	}
}

// Run starts the settings module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting settings module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Settings module goroutine stopped")
}

// Close shuts down the settings module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Logger.Info("Settings module stopped")
	return nil
}
