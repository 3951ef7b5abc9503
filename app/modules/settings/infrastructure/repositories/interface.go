package settingsdb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository persists the user settings.
type Repository interface {
	// Get returns the stored settings; unset values take their defaults.
	Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error)
	Save(ctx context.Context, db bun.IDB, settings sharedtypes.Settings) error
	// ClearAll wipes every stored key, settings and game data alike.
	ClearAll(ctx context.Context, db bun.IDB) error
}
