package paywalldb

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore"
	"github.com/uptrace/bun"
)

// Impl keeps the paid flag under "hasPaid" and the entitlement as JSON.
type Impl struct {
	store kvstore.Store
}

// NewRepository creates a paywall repository over store.
func NewRepository(store kvstore.Store) Repository {
	return &Impl{store: store}
}

func (r *Impl) HasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	paid, err := kvstore.GetBool(ctx, r.store, db, kvstore.KeyHasPaid, false)
	if err != nil {
		return false, fmt.Errorf("failed to read paid flag: %w", err)
	}
	return paid, nil
}

func (r *Impl) SetHasPaid(ctx context.Context, db bun.IDB, paid bool) error {
	if err := kvstore.SetBool(ctx, r.store, db, kvstore.KeyHasPaid, paid); err != nil {
		return fmt.Errorf("failed to write paid flag: %w", err)
	}
	return nil
}

func (r *Impl) GetEntitlement(ctx context.Context, db bun.IDB) (*Entitlement, error) {
	var e Entitlement
	found, err := kvstore.GetJSON(ctx, r.store, db, kvstore.KeyEntitlement, &e)
	if err != nil {
		return nil, fmt.Errorf("failed to read entitlement: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *Impl) SaveEntitlement(ctx context.Context, db bun.IDB, e *Entitlement) error {
	if err := kvstore.SetJSON(ctx, r.store, db, kvstore.KeyEntitlement, e); err != nil {
		return fmt.Errorf("failed to write entitlement: %w", err)
	}
	return nil
}
