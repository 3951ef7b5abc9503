package gamedb

import (
	"context"
	"errors"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when no game has the requested ID.
var ErrNotFound = errors.New("game not found")

// Repository persists multiplayer games.
type Repository interface {
	// List returns every game in creation order.
	List(ctx context.Context, db bun.IDB) ([]sharedtypes.MultiplayerGame, error)
	Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.MultiplayerGame, error)
	// Save replaces the game with the same ID, or appends it.
	Save(ctx context.Context, db bun.IDB, game sharedtypes.MultiplayerGame) error
	Delete(ctx context.Context, db bun.IDB, id string) error
}
