package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/card-scorekeeper/app"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/game"
	gameservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard"
	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings"
	"github.com/Black-And-White-Club/card-scorekeeper/config"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/urfave/cli/v2"
)

// services are the read paths the CLI needs, without HTTP or the event bus.
type services struct {
	games       gameservice.Service
	leaderboard leaderboardservice.Service
}

// withServices opens and migrates the configured database for fn.
func withServices(c *cli.Context, fn func(ctx context.Context, svc services) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := c.Context
	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, app.MigrationGroups()...); err != nil {
		return err
	}

	obs := observability.NewNoop()
	obs.Logger = slog.New(slog.NewTextHandler(logOutput(c), &slog.HandlerOptions{Level: slog.LevelWarn}))

	store := kvstore.NewStore(db)
	settingsModule := settings.NewSettingsModule(ctx, obs, db, store, nil)
	gameModule := game.NewGameModule(ctx, obs, db, store, settingsModule.Repository, nil, nil, nil)
	leaderboardModule, err := leaderboard.NewLeaderboardModule(ctx, obs, db, nil, nil, nil)
	if err != nil {
		return err
	}

	return fn(ctx, services{
		games:       gameModule.Service,
		leaderboard: leaderboardModule.LeaderboardService,
	})
}

func logOutput(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
