package opponentdb

import (
	"context"
	"errors"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when no opponent has the requested ID.
var ErrNotFound = errors.New("opponent not found")

// Repository persists opponents together with their games.
type Repository interface {
	// List returns every opponent in creation order.
	List(ctx context.Context, db bun.IDB) ([]sharedtypes.Opponent, error)
	Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.Opponent, error)
	// Save replaces the opponent with the same ID, or appends it.
	Save(ctx context.Context, db bun.IDB, opponent sharedtypes.Opponent) error
	Delete(ctx context.Context, db bun.IDB, id string) error
}
