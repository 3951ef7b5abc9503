package settingsservice

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// Service defines the settings operations.
type Service interface {
	GetSettings(ctx context.Context) (sharedtypes.Settings, error)
	// UpdateSettings applies the non-nil fields of req.
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (sharedtypes.Settings, error)
	// ClearAll wipes every stored value: settings, opponents, games and the paid flag.
	ClearAll(ctx context.Context) error
}

// UpdateSettingsRequest is a partial settings update. A blank user name
// resets it to the default.
type UpdateSettingsRequest struct {
	UserName      *string `json:"userName,omitempty"`
	GinValue      *int    `json:"ginValue,omitempty"`
	BigGinValue   *int    `json:"bigGinValue,omitempty"`
	UndercutValue *int    `json:"undercutValue,omitempty"`
	TargetScore   *int    `json:"targetScore,omitempty"`
}
