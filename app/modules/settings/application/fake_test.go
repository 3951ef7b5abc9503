package settingsservice

import (
	"context"

	settingsdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Settings Repo
// ------------------------

type FakeSettingsRepo struct {
	trace []string
	saved []sharedtypes.Settings

	GetFunc      func(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error)
	SaveFunc     func(ctx context.Context, db bun.IDB, settings sharedtypes.Settings) error
	ClearAllFunc func(ctx context.Context, db bun.IDB) error
}

func NewFakeSettingsRepo() *FakeSettingsRepo {
	return &FakeSettingsRepo{
		trace: []string{},
	}
}

func (f *FakeSettingsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSettingsRepo) Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db)
	}
	return sharedtypes.DefaultSettings(), nil
}

func (f *FakeSettingsRepo) Save(ctx context.Context, db bun.IDB, settings sharedtypes.Settings) error {
	f.record("Save")
	f.saved = append(f.saved, settings)
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, settings)
	}
	return nil
}

func (f *FakeSettingsRepo) ClearAll(ctx context.Context, db bun.IDB) error {
	f.record("ClearAll")
	if f.ClearAllFunc != nil {
		return f.ClearAllFunc(ctx, db)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeSettingsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ settingsdb.Repository = (*FakeSettingsRepo)(nil)
