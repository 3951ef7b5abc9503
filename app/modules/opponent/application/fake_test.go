package opponentservice

import (
	"context"

	opponentdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Opponent Repo
// ------------------------

// FakeOpponentRepo keeps opponents in memory unless a Func overrides a call.
type FakeOpponentRepo struct {
	trace     []string
	opponents []sharedtypes.Opponent

	ListFunc   func(ctx context.Context, db bun.IDB) ([]sharedtypes.Opponent, error)
	GetFunc    func(ctx context.Context, db bun.IDB, id string) (*sharedtypes.Opponent, error)
	SaveFunc   func(ctx context.Context, db bun.IDB, opponent sharedtypes.Opponent) error
	DeleteFunc func(ctx context.Context, db bun.IDB, id string) error
}

func NewFakeOpponentRepo(seed ...sharedtypes.Opponent) *FakeOpponentRepo {
	return &FakeOpponentRepo{
		trace:     []string{},
		opponents: append([]sharedtypes.Opponent{}, seed...),
	}
}

func (f *FakeOpponentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeOpponentRepo) List(ctx context.Context, db bun.IDB) ([]sharedtypes.Opponent, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return cloneOpponents(f.opponents), nil
}

func (f *FakeOpponentRepo) Get(ctx context.Context, db bun.IDB, id string) (*sharedtypes.Opponent, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, id)
	}
	for _, o := range cloneOpponents(f.opponents) {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, opponentdb.ErrNotFound
}

func (f *FakeOpponentRepo) Save(ctx context.Context, db bun.IDB, opponent sharedtypes.Opponent) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, opponent)
	}
	saved := cloneOpponents([]sharedtypes.Opponent{opponent})[0]
	for i := range f.opponents {
		if f.opponents[i].ID == opponent.ID {
			f.opponents[i] = saved
			return nil
		}
	}
	f.opponents = append(f.opponents, saved)
	return nil
}

func (f *FakeOpponentRepo) Delete(ctx context.Context, db bun.IDB, id string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	for i := range f.opponents {
		if f.opponents[i].ID == id {
			f.opponents = append(f.opponents[:i], f.opponents[i+1:]...)
			return nil
		}
	}
	return opponentdb.ErrNotFound
}

// --- Accessors for assertions ---

func (f *FakeOpponentRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeOpponentRepo) Stored() []sharedtypes.Opponent {
	return cloneOpponents(f.opponents)
}

func cloneOpponents(in []sharedtypes.Opponent) []sharedtypes.Opponent {
	out := make([]sharedtypes.Opponent, len(in))
	for i, o := range in {
		out[i] = o
		out[i].Games = make([]sharedtypes.Game, len(o.Games))
		for j, g := range o.Games {
			out[i].Games[j] = g
			out[i].Games[j].ScoreHistory = append([]sharedtypes.Round{}, g.ScoreHistory...)
		}
	}
	return out
}

// ------------------------
// Fake Settings
// ------------------------

type FakeSettings struct {
	Settings sharedtypes.Settings
	Err      error
}

func (f *FakeSettings) Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error) {
	return f.Settings, f.Err
}

// ------------------------
// Fake Entitlements
// ------------------------

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
	_ opponentdb.Repository       = (*FakeOpponentRepo)(nil)
	_ SettingsReader              = (*FakeSettings)(nil)
	_ paywallservice.Entitlements = (*FakeEntitlements)(nil)
)
