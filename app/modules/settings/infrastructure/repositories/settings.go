package settingsdb

import (
	"context"
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/uptrace/bun"
)

// Impl stores each setting under its own key.
type Impl struct {
	store kvstore.Store
}

// NewRepository creates a settings repository over store.
func NewRepository(store kvstore.Store) Repository {
	return &Impl{store: store}
}

func (r *Impl) Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error) {
	def := sharedtypes.DefaultSettings()
	var (
		s   sharedtypes.Settings
		err error
	)

	if s.UserName, err = kvstore.GetString(ctx, r.store, db, kvstore.KeyUserName, def.UserName); err != nil {
		return s, fmt.Errorf("failed to get user name: %w", err)
	}
	if s.GinValue, err = kvstore.GetInt(ctx, r.store, db, kvstore.KeyGinValue, def.GinValue); err != nil {
		return s, fmt.Errorf("failed to get gin value: %w", err)
	}
	if s.BigGinValue, err = kvstore.GetInt(ctx, r.store, db, kvstore.KeyBigGinValue, def.BigGinValue); err != nil {
		return s, fmt.Errorf("failed to get big gin value: %w", err)
	}
	if s.UndercutValue, err = kvstore.GetInt(ctx, r.store, db, kvstore.KeyUndercutValue, def.UndercutValue); err != nil {
		return s, fmt.Errorf("failed to get undercut value: %w", err)
	}
	if s.TargetScore, err = kvstore.GetInt(ctx, r.store, db, kvstore.KeyTargetScore, def.TargetScore); err != nil {
		return s, fmt.Errorf("failed to get target score: %w", err)
	}
	if s.UserName == "" {
		s.UserName = def.UserName
	}
	return s, nil
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, s sharedtypes.Settings) error {
	if err := r.store.Set(ctx, db, kvstore.KeyUserName, s.UserName); err != nil {
		return fmt.Errorf("failed to save user name: %w", err)
	}
	ints := []struct {
		key   string
		value int
	}{
		{kvstore.KeyGinValue, s.GinValue},
		{kvstore.KeyBigGinValue, s.BigGinValue},
		{kvstore.KeyUndercutValue, s.UndercutValue},
		{kvstore.KeyTargetScore, s.TargetScore},
	}
	for _, kv := range ints {
		if err := kvstore.SetInt(ctx, r.store, db, kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", kv.key, err)
		}
	}
	return nil
}

func (r *Impl) ClearAll(ctx context.Context, db bun.IDB) error {
	if err := r.store.Clear(ctx, db); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}
