package opponentdb

import (
	"context"
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/uptrace/bun"
)

// Impl keeps all opponents in one JSON array under kvstore.KeyOpponents.
type Impl struct {
	store kvstore.Store
}

// NewRepository creates an opponent repository over store.
func NewRepository(store kvstore.Store) Repository {
	return &Impl{store: store}
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]sharedtypes.Opponent, error) {
	var opponents []sharedtypes.Opponent
	if _, err := kvstore.GetJSON(ctx, r.store, db, kvstore.KeyOpponents, &opponents); err != nil {
		return nil, fmt.Errorf("failed to load opponents: %w", err)
	}
	if opponents == nil {
		opponents = []sharedtypes.Opponent{}
	}
	for i := range opponents {
		if opponents[i].Games == nil {
			opponents[i].Games = []sharedtypes.Game{}
		}
	}
	return opponents, nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.Opponent, error) {
	opponents, err := r.List(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range opponents {
		if opponents[i].ID == id {
			return &opponents[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, opponent sharedtypes.Opponent) error {
	opponents, err := r.List(ctx, db)
	if err != nil {
		return err
	}
	if opponent.Games == nil {
		opponent.Games = []sharedtypes.Game{}
	}

	replaced := false
	for i := range opponents {
		if opponents[i].ID == opponent.ID {
			opponents[i] = opponent
			replaced = true
			break
		}
	}
	if !replaced {
		opponents = append(opponents, opponent)
	}
	return r.write(ctx, db, opponents)
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id string) error {
	opponents, err := r.List(ctx, db)
	if err != nil {
		return err
	}
	kept := opponents[:0]
	for _, o := range opponents {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(opponents) {
		return ErrNotFound
	}
	return r.write(ctx, db, kept)
}

func (r *Impl) write(ctx context.Context, db bun.IDB, opponents []sharedtypes.Opponent) error {
	if err := kvstore.SetJSON(ctx, r.store, db, kvstore.KeyOpponents, opponents); err != nil {
		return fmt.Errorf("failed to save opponents: %w", err)
	}
	return nil
}
