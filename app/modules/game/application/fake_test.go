package gameservice

import (
	"context"

	gamedb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Game Repo
// ------------------------

// FakeGameRepo keeps games in memory unless a Func overrides a call.
type FakeGameRepo struct {
	trace []string
	games []sharedtypes.MultiplayerGame

	ListFunc   func(ctx context.Context, db bun.IDB) ([]sharedtypes.MultiplayerGame, error)
	GetFunc    func(ctx context.Context, db bun.IDB, id string) (*sharedtypes.MultiplayerGame, error)
	SaveFunc   func(ctx context.Context, db bun.IDB, game sharedtypes.MultiplayerGame) error
	DeleteFunc func(ctx context.Context, db bun.IDB, id string) error
}

func NewFakeGameRepo(seed ...sharedtypes.MultiplayerGame) *FakeGameRepo {
	return &FakeGameRepo{
		trace: []string{},
		games: cloneGames(seed),
	}
}

func (f *FakeGameRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGameRepo) List(ctx context.Context, db bun.IDB) ([]sharedtypes.MultiplayerGame, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return cloneGames(f.games), nil
}

func (f *FakeGameRepo) Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.MultiplayerGame, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, id)
	}
	for _, g := range cloneGames(f.games) {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, gamedb.ErrNotFound
}

func (f *FakeGameRepo) Save(ctx context.Context, db bun.IDB, game sharedtypes.MultiplayerGame) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, game)
	}
	saved := cloneGames([]sharedtypes.MultiplayerGame{game})[0]
	for i := range f.games {
		if f.games[i].ID == game.ID {
			f.games[i] = saved
			return nil
		}
	}
	f.games = append(f.games, saved)
	return nil
}

func (f *FakeGameRepo) Delete(ctx context.Context, db bun.IDB, id string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	for i := range f.games {
		if f.games[i].ID == id {
			f.games = append(f.games[:i], f.games[i+1:]...)
			return nil
		}
	}
	return gamedb.ErrNotFound
}

// --- Accessors for assertions ---

func (f *FakeGameRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGameRepo) Stored() []sharedtypes.MultiplayerGame {
	return cloneGames(f.games)
}

func cloneGames(in []sharedtypes.MultiplayerGame) []sharedtypes.MultiplayerGame {
	out := make([]sharedtypes.MultiplayerGame, len(in))
	for i, g := range in {
		out[i] = g
		out[i].Players = append([]sharedtypes.Player{}, g.Players...)
		out[i].Rounds = make([]sharedtypes.PlayerRound, len(g.Rounds))
		for j, r := range g.Rounds {
			out[i].Rounds[j] = r
			out[i].Rounds[j].Scores = make(map[string]int, len(r.Scores))
			for k, v := range r.Scores {
				out[i].Rounds[j].Scores[k] = v
			}
		}
	}
	return out
}

// ------------------------
// Fake Settings / Entitlements
// ------------------------

type FakeSettings struct {
	Settings sharedtypes.Settings
	Err      error
}

func (f *FakeSettings) Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error) {
	return f.Settings, f.Err
}

type FakeEntitlements struct {
	Paid  bool
	Err   error
	Allow paywallservice.Limits
}

func (f *FakeEntitlements) HasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	return f.Paid, f.Err
}

func (f *FakeEntitlements) Limits() paywallservice.Limits {
	return f.Allow
}

var (
	_ gamedb.Repository           = (*FakeGameRepo)(nil)
	_ SettingsReader              = (*FakeSettings)(nil)
	_ paywallservice.Entitlements = (*FakeEntitlements)(nil)
)
