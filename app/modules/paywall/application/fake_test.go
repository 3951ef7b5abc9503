package paywallservice

import (
	"context"

	paywalldb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Paywall Repo
// ------------------------

type FakePaywallRepo struct {
	trace       []string
	paid        bool
	entitlement *paywalldb.Entitlement

	HasPaidFunc         func(ctx context.Context, db bun.IDB) (bool, error)
	SetHasPaidFunc      func(ctx context.Context, db bun.IDB, paid bool) error
	GetEntitlementFunc  func(ctx context.Context, db bun.IDB) (*paywalldb.Entitlement, error)
	SaveEntitlementFunc func(ctx context.Context, db bun.IDB, e *paywalldb.Entitlement) error
}

func NewFakePaywallRepo() *FakePaywallRepo {
	return &FakePaywallRepo{
		trace: []string{},
	}
}

func (f *FakePaywallRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePaywallRepo) HasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	f.record("HasPaid")
	if f.HasPaidFunc != nil {
		return f.HasPaidFunc(ctx, db)
	}
	return f.paid, nil
}

func (f *FakePaywallRepo) SetHasPaid(ctx context.Context, db bun.IDB, paid bool) error {
	f.record("SetHasPaid")
	if f.SetHasPaidFunc != nil {
		return f.SetHasPaidFunc(ctx, db, paid)
	}
	f.paid = paid
	return nil
}

func (f *FakePaywallRepo) GetEntitlement(ctx context.Context, db bun.IDB) (*paywalldb.Entitlement, error) {
	f.record("GetEntitlement")
	if f.GetEntitlementFunc != nil {
		return f.GetEntitlementFunc(ctx, db)
	}
	if f.entitlement == nil {
		return nil, paywalldb.ErrNotFound
	}
	return f.entitlement, nil
}

func (f *FakePaywallRepo) SaveEntitlement(ctx context.Context, db bun.IDB, e *paywalldb.Entitlement) error {
	f.record("SaveEntitlement")
	if f.SaveEntitlementFunc != nil {
		return f.SaveEntitlementFunc(ctx, db, e)
	}
	f.entitlement = e
	return nil
}

// --- Accessors for assertions ---

func (f *FakePaywallRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ paywalldb.Repository = (*FakePaywallRepo)(nil)
