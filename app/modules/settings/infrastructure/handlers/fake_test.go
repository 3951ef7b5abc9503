package settingshandlers

import (
	"context"

	settingsservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	GetSettingsFunc    func(ctx context.Context) (sharedtypes.Settings, error)
	UpdateSettingsFunc func(ctx context.Context, req settingsservice.UpdateSettingsRequest) (sharedtypes.Settings, error)
	ClearAllFunc       func(ctx context.Context) error
}

func (f *FakeService) GetSettings(ctx context.Context) (sharedtypes.Settings, error) {
	if f.GetSettingsFunc != nil {
		return f.GetSettingsFunc(ctx)
	}
	return sharedtypes.DefaultSettings(), nil
}

func (f *FakeService) UpdateSettings(ctx context.Context, req settingsservice.UpdateSettingsRequest) (sharedtypes.Settings, error) {
	if f.UpdateSettingsFunc != nil {
		return f.UpdateSettingsFunc(ctx, req)
	}
	return sharedtypes.DefaultSettings(), nil
}

func (f *FakeService) ClearAll(ctx context.Context) error {
	if f.ClearAllFunc != nil {
		return f.ClearAllFunc(ctx)
	}
	return nil
}

var _ settingsservice.Service = (*FakeService)(nil)
