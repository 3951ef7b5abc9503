package paywallhandlers

import (
	"context"

	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	paywallstore "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/store"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	StatusFunc            func(ctx context.Context) (*paywallservice.Status, error)
	ProductsFunc          func(ctx context.Context, platform paywallstore.Platform) ([]paywallstore.Product, error)
	RedeemFunc            func(ctx context.Context, code string) (*paywallservice.Unlock, error)
	PurchaseFunc          func(ctx context.Context, platform paywallstore.Platform) (*paywallservice.Unlock, error)
	RestoreFunc           func(ctx context.Context, platform paywallstore.Platform) (*paywallservice.Unlock, error)
	VerifyEntitlementFunc func(ctx context.Context, token string) (*paywallservice.EntitlementInfo, error)
}

func (f *FakeService) Status(ctx context.Context) (*paywallservice.Status, error) {
	if f.StatusFunc != nil {
		return f.StatusFunc(ctx)
	}
	return &paywallservice.Status{Limits: paywallservice.DefaultLimits()}, nil
}

func (f *FakeService) Products(ctx context.Context, platform paywallstore.Platform) ([]paywallstore.Product, error) {
	if f.ProductsFunc != nil {
		return f.ProductsFunc(ctx, platform)
	}
	return nil, nil
}

func (f *FakeService) Redeem(ctx context.Context, code string) (*paywallservice.Unlock, error) {
	if f.RedeemFunc != nil {
		return f.RedeemFunc(ctx, code)
	}
	return &paywallservice.Unlock{HasPaid: true, Source: paywallservice.SourceRedeem}, nil
}

func (f *FakeService) Purchase(ctx context.Context, platform paywallstore.Platform) (*paywallservice.Unlock, error) {
	if f.PurchaseFunc != nil {
		return f.PurchaseFunc(ctx, platform)
	}
	return &paywallservice.Unlock{HasPaid: true, Source: paywallservice.SourcePurchase}, nil
}

func (f *FakeService) Restore(ctx context.Context, platform paywallstore.Platform) (*paywallservice.Unlock, error) {
	if f.RestoreFunc != nil {
		return f.RestoreFunc(ctx, platform)
	}
	return &paywallservice.Unlock{HasPaid: true, Source: paywallservice.SourceRestore}, nil
}

func (f *FakeService) VerifyEntitlement(ctx context.Context, token string) (*paywallservice.EntitlementInfo, error) {
	if f.VerifyEntitlementFunc != nil {
		return f.VerifyEntitlementFunc(ctx, token)
	}
	return &paywallservice.EntitlementInfo{}, nil
}

var _ paywallservice.Service = (*FakeService)(nil)
