package app

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/game"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings"
	"github.com/Black-And-White-Club/card-scorekeeper/config"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Modules holds every module the app runs.
type Modules struct {
	Settings    *settings.Module
	Paywall     *paywall.Module
	Opponent    *opponent.Module
	Game        *game.Module
	Leaderboard *leaderboard.Module
}

// App wires the modules to storage, the event bus and the HTTP API.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	Modules       Modules

	api chi.Router
}

// NewApp opens storage, applies migrations and builds every module. The
// caller owns obs and shuts it down.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.InfoContext(ctx, "Database opened", attr.String("dialect", string(database.DetectDialect(cfg.Database.DSN))))

	if err := database.Migrate(ctx, db, MigrationGroups()...); err != nil {
		_ = db.Close()
		return nil, err
	}

	bus, err := eventbus.New(ctx, config.ToEventBusConfig(cfg), logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
		api:           chi.NewRouter(),
	}

	if err := app.initializeModules(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) initializeModules(ctx context.Context) error {
	obs := app.Observability
	store := kvstore.NewStore(app.DB)
	rules := app.Config.Rules

	app.Modules.Settings = settings.NewSettingsModule(ctx, obs, app.DB, store, app.api)

	app.Modules.Paywall = paywall.NewPaywallModule(ctx, obs, app.DB, store, paywall.Config{
		JWTSecret:  app.Config.JWT.Secret,
		TokenTTL:   app.Config.JWT.DefaultTTL,
		RedeemCode: rules.RedeemCode,
		Limits: paywallservice.Limits{
			FreeScoreCeiling:        rules.FreeScoreCeiling,
			MaxFreeOpponents:        rules.MaxFreeOpponents,
			MaxFreeGamesPerOpponent: rules.MaxFreeGamesPerOpponent,
			MaxFreeMultiplayerGames: rules.MaxFreeMultiplayerGames,
		},
	}, app.api)

	app.Modules.Opponent = opponent.NewOpponentModule(
		ctx, obs, app.DB, store,
		app.Modules.Settings.Repository,
		app.Modules.Paywall.Service,
		app.EventBus,
		app.Config.TieBreak(),
		app.api,
	)

	app.Modules.Game = game.NewGameModule(
		ctx, obs, app.DB, store,
		app.Modules.Settings.Repository,
		app.Modules.Paywall.Service,
		app.EventBus,
		app.api,
	)

	leaderboardModule, err := leaderboard.NewLeaderboardModule(ctx, obs, app.DB, app.EventBus, app.Router, app.api)
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}
	app.Modules.Leaderboard = leaderboardModule

	return nil
}
