package settingsservice

import (
	"context"
	"log/slog"
	"strings"

	settingsdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/operation"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// SettingsService implements the Service interface.
type SettingsService struct {
	repo   settingsdb.Repository
	logger *slog.Logger
	ops    *operation.Runner
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(
	repo settingsdb.Repository,
	logger *slog.Logger,
	metrics servicemetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		repo:   repo,
		logger: logger,
		ops: &operation.Runner{
			Service: "SettingsService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

// GetSettings returns the stored settings with defaults filled in.
func (s *SettingsService) GetSettings(ctx context.Context) (sharedtypes.Settings, error) {
	return operation.Run(s.ops, ctx, "GetSettings", "settings", func(ctx context.Context, db bun.IDB) (results.OperationResult[sharedtypes.Settings, error], error) {
		settings, err := s.repo.Get(ctx, db)
		if err != nil {
			return results.OperationResult[sharedtypes.Settings, error]{}, err
		}
		return results.SuccessResult[sharedtypes.Settings, error](settings), nil
	})
}

// UpdateSettings validates and stores a partial update.
func (s *SettingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (sharedtypes.Settings, error) {
	return operation.Run(s.ops, ctx, "UpdateSettings", "settings", func(ctx context.Context, db bun.IDB) (results.OperationResult[sharedtypes.Settings, error], error) {
		return s.updateSettingsLogic(ctx, db, req)
	})
}

func (s *SettingsService) updateSettingsLogic(ctx context.Context, db bun.IDB, req UpdateSettingsRequest) (results.OperationResult[sharedtypes.Settings, error], error) {
	settings, err := s.repo.Get(ctx, db)
	if err != nil {
		return results.OperationResult[sharedtypes.Settings, error]{}, err
	}

	if req.UserName != nil {
		settings.UserName = strings.TrimSpace(*req.UserName)
		if settings.UserName == "" {
			settings.UserName = sharedtypes.DefaultUserName
		}
	}

	for _, field := range []struct {
		value *int
		dst   *int
	}{
		{req.GinValue, &settings.GinValue},
		{req.BigGinValue, &settings.BigGinValue},
		{req.UndercutValue, &settings.UndercutValue},
		{req.TargetScore, &settings.TargetScore},
	} {
		if field.value == nil {
			continue
		}
		if *field.value <= 0 {
			return results.FailureResult[sharedtypes.Settings, error](ErrInvalidValue), nil
		}
		*field.dst = *field.value
	}

	if err := s.repo.Save(ctx, db, settings); err != nil {
		return results.OperationResult[sharedtypes.Settings, error]{}, err
	}
	return results.SuccessResult[sharedtypes.Settings, error](settings), nil
}

// ClearAll wipes the whole store.
func (s *SettingsService) ClearAll(ctx context.Context) error {
	_, err := operation.Run(s.ops, ctx, "ClearAll", "storage", func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.ClearAll(ctx, db); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

var _ Service = (*SettingsService)(nil)
