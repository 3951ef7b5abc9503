package app

import (
	"errors"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
)

type namedCloser struct {
	name  string
	close func() error
}

// Close stops the modules and releases the router, the bus and the database,
// in that order. It is safe to call on a partly built App.
func (app *App) Close() error {
	logger := app.Observability.Logger
	logger.Info("Shutting down application")

	var closers []namedCloser
	if m := app.Modules.Leaderboard; m != nil {
		closers = append(closers, namedCloser{"leaderboard module", m.Close})
	}
	if m := app.Modules.Game; m != nil {
		closers = append(closers, namedCloser{"game module", m.Close})
	}
	if m := app.Modules.Opponent; m != nil {
		closers = append(closers, namedCloser{"opponent module", m.Close})
	}
	if m := app.Modules.Paywall; m != nil {
		closers = append(closers, namedCloser{"paywall module", m.Close})
	}
	if m := app.Modules.Settings; m != nil {
		closers = append(closers, namedCloser{"settings module", m.Close})
	}
	if app.Router != nil {
		closers = append(closers, namedCloser{"message router", app.Router.Close})
	}
	if app.EventBus != nil {
		closers = append(closers, namedCloser{"event bus", app.EventBus.Close})
	}
	if app.DB != nil {
		closers = append(closers, namedCloser{"database", app.DB.Close})
	}

	var errs []error
	for _, c := range closers {
		if err := c.close(); err != nil {
			logger.Error("Failed to close component", attr.String("component", c.name), attr.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
