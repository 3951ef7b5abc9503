package gamedb

import (
	"context"
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/uptrace/bun"
)

// Impl keeps all multiplayer games in one JSON array under kvstore.KeyGames.
type Impl struct {
	store kvstore.Store
}

// NewRepository creates a game repository over store.
func NewRepository(store kvstore.Store) Repository {
	return &Impl{store: store}
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]sharedtypes.MultiplayerGame, error) {
	var games []sharedtypes.MultiplayerGame
	if _, err := kvstore.GetJSON(ctx, r.store, db, kvstore.KeyGames, &games); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	if games == nil {
		games = []sharedtypes.MultiplayerGame{}
	}
	for i := range games {
		normalize(&games[i])
	}
	return games, nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.MultiplayerGame, error) {
	games, err := r.List(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].ID == id {
			return &games[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, game sharedtypes.MultiplayerGame) error {
	games, err := r.List(ctx, db)
	if err != nil {
		return err
	}
	normalize(&game)

	replaced := false
	for i := range games {
		if games[i].ID == game.ID {
			games[i] = game
			replaced = true
			break
		}
	}
	if !replaced {
		games = append(games, game)
	}
	return r.write(ctx, db, games)
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id string) error {
	games, err := r.List(ctx, db)
	if err != nil {
		return err
	}
	kept := games[:0]
	for _, g := range games {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(games) {
		return ErrNotFound
	}
	return r.write(ctx, db, kept)
}

func (r *Impl) write(ctx context.Context, db bun.IDB, games []sharedtypes.MultiplayerGame) error {
	if err := kvstore.SetJSON(ctx, r.store, db, kvstore.KeyGames, games); err != nil {
		return fmt.Errorf("failed to save games: %w", err)
	}
	return nil
}

// normalize fills the fields older blobs may lack.
func normalize(g *sharedtypes.MultiplayerGame) {
	if g.Players == nil {
		g.Players = []sharedtypes.Player{}
	}
	if g.Rounds == nil {
		g.Rounds = []sharedtypes.PlayerRound{}
	}
	if g.Status == "" {
		if g.Winner != "" {
			g.Status = sharedtypes.StatusCompleted
		} else {
			g.Status = sharedtypes.StatusInProgress
		}
	}
}
