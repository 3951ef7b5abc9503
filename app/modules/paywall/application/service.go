package paywallservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paywalljwt "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/jwt"
	paywalldb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/repositories"
	paywallstore "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/store"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/operation"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const defaultRedeemCode = "GRATITUDE"

// PaywallService implements Service and Entitlements.
type PaywallService struct {
	repo   paywalldb.Repository
	store  paywallstore.Provider
	tokens paywalljwt.Provider
	opts   Options
	logger *slog.Logger
	ops    *operation.Runner
	now    func() time.Time
}

// NewPaywallService creates a new PaywallService.
func NewPaywallService(
	repo paywalldb.Repository,
	store paywallstore.Provider,
	tokens paywalljwt.Provider,
	opts Options,
	logger *slog.Logger,
	metrics servicemetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *PaywallService {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.RedeemCode) == "" {
		opts.RedeemCode = defaultRedeemCode
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 365 * 24 * time.Hour
	}
	return &PaywallService{
		repo:   repo,
		store:  store,
		tokens: tokens,
		opts:   opts,
		logger: logger,
		ops: &operation.Runner{
			Service: "PaywallService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		now: time.Now,
	}
}

// HasPaid reads the paid flag inside the caller's transaction.
func (s *PaywallService) HasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	return s.repo.HasPaid(ctx, db)
}

// Limits returns the configured free-tier allowances.
func (s *PaywallService) Limits() Limits {
	return s.opts.Limits
}

// Status reports the paid flag and how it was unlocked.
func (s *PaywallService) Status(ctx context.Context) (*Status, error) {
	return operation.Run(s.ops, ctx, "Status", "paywall", func(ctx context.Context, db bun.IDB) (results.OperationResult[*Status, error], error) {
		paid, err := s.repo.HasPaid(ctx, db)
		if err != nil {
			return results.OperationResult[*Status, error]{}, err
		}
		status := &Status{HasPaid: paid, Limits: s.opts.Limits}

		e, err := s.repo.GetEntitlement(ctx, db)
		switch {
		case errors.Is(err, paywalldb.ErrNotFound):
		case err != nil:
			return results.OperationResult[*Status, error]{}, err
		case paid:
			status.Source = e.Source
			granted := e.GrantedAt
			status.GrantedAt = &granted
		}
		return results.SuccessResult[*Status, error](status), nil
	})
}

// Products lists the premium listing for platform.
func (s *PaywallService) Products(ctx context.Context, platform paywallstore.Platform) ([]paywallstore.Product, error) {
	return operation.Run(s.ops, ctx, "Products", string(platform), func(ctx context.Context, _ bun.IDB) (results.OperationResult[[]paywallstore.Product, error], error) {
		sku, err := paywallstore.SKUFor(platform)
		if err != nil {
			return results.FailureResult[[]paywallstore.Product, error](err), nil
		}
		products, err := s.store.Products(ctx, []string{sku})
		if err != nil {
			return results.OperationResult[[]paywallstore.Product, error]{}, fmt.Errorf("failed to load products: %w", err)
		}
		return results.SuccessResult[[]paywallstore.Product, error](products), nil
	})
}

// Redeem unlocks premium with the gratitude code. Comparison ignores case
// and surrounding whitespace.
func (s *PaywallService) Redeem(ctx context.Context, code string) (*Unlock, error) {
	return operation.Run(s.ops, ctx, "Redeem", "code", func(ctx context.Context, db bun.IDB) (results.OperationResult[*Unlock, error], error) {
		if !strings.EqualFold(strings.TrimSpace(code), strings.TrimSpace(s.opts.RedeemCode)) {
			return results.FailureResult[*Unlock, error](ErrInvalidCode), nil
		}
		return s.grant(ctx, db, paywalldb.Entitlement{Source: SourceRedeem})
	})
}

// Purchase buys the premium SKU of platform. Failures are not retried.
func (s *PaywallService) Purchase(ctx context.Context, platform paywallstore.Platform) (*Unlock, error) {
	return operation.Run(s.ops, ctx, "Purchase", string(platform), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Unlock, error], error) {
		return s.purchaseLogic(ctx, db, platform)
	})
}

func (s *PaywallService) purchaseLogic(ctx context.Context, db bun.IDB, platform paywallstore.Platform) (results.OperationResult[*Unlock, error], error) {
	sku, err := paywallstore.SKUFor(platform)
	if err != nil {
		return results.FailureResult[*Unlock, error](err), nil
	}

	purchase, err := s.store.RequestPurchase(ctx, sku)
	if err != nil {
		return results.FailureResult[*Unlock, error](fmt.Errorf("%w: %w", ErrPurchaseFailed, err)), nil
	}
	if purchase.Receipt == "" {
		return results.FailureResult[*Unlock, error](fmt.Errorf("%w: store returned no receipt", ErrPurchaseFailed)), nil
	}
	if err := s.store.FinishTransaction(ctx, *purchase); err != nil {
		s.logger.WarnContext(ctx, "Failed to finish transaction",
			attr.ExtractCorrelationID(ctx),
			attr.String("transaction_id", purchase.TransactionID),
			attr.Error(err),
		)
		return results.FailureResult[*Unlock, error](fmt.Errorf("%w: %w", ErrPurchaseFailed, err)), nil
	}

	return s.grant(ctx, db, paywalldb.Entitlement{
		Source:        SourcePurchase,
		ProductID:     purchase.ProductID,
		Platform:      string(platform),
		TransactionID: purchase.TransactionID,
	})
}

// Restore re-grants premium from a purchase the account already owns. An
// empty platform accepts either premium SKU.
func (s *PaywallService) Restore(ctx context.Context, platform paywallstore.Platform) (*Unlock, error) {
	return operation.Run(s.ops, ctx, "Restore", string(platform), func(ctx context.Context, db bun.IDB) (results.OperationResult[*Unlock, error], error) {
		return s.restoreLogic(ctx, db, platform)
	})
}

func (s *PaywallService) restoreLogic(ctx context.Context, db bun.IDB, platform paywallstore.Platform) (results.OperationResult[*Unlock, error], error) {
	accepted := map[string]bool{}
	if platform == "" {
		accepted[paywallstore.SKUPremiumIOS] = true
		accepted[paywallstore.SKUPremiumAndroid] = true
	} else {
		sku, err := paywallstore.SKUFor(platform)
		if err != nil {
			return results.FailureResult[*Unlock, error](err), nil
		}
		accepted[sku] = true
	}

	purchases, err := s.store.Restore(ctx)
	if err != nil {
		return results.FailureResult[*Unlock, error](fmt.Errorf("%w: %w", ErrRestoreFailed, err)), nil
	}

	for _, p := range purchases {
		if !accepted[p.ProductID] {
			continue
		}
		if err := s.store.FinishTransaction(ctx, p); err != nil {
			return results.FailureResult[*Unlock, error](fmt.Errorf("%w: %w", ErrRestoreFailed, err)), nil
		}
		return s.grant(ctx, db, paywalldb.Entitlement{
			Source:        SourceRestore,
			ProductID:     p.ProductID,
			Platform:      string(platform),
			TransactionID: p.TransactionID,
		})
	}
	return results.FailureResult[*Unlock, error](ErrNothingToRestore), nil
}

// VerifyEntitlement checks a token issued by an earlier unlock.
func (s *PaywallService) VerifyEntitlement(ctx context.Context, token string) (*EntitlementInfo, error) {
	return operation.Run(s.ops, ctx, "VerifyEntitlement", "token", func(ctx context.Context, _ bun.IDB) (results.OperationResult[*EntitlementInfo, error], error) {
		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, paywalljwt.ErrMissingSecret) {
				return results.OperationResult[*EntitlementInfo, error]{}, err
			}
			return results.FailureResult[*EntitlementInfo, error](fmt.Errorf("%w: %w", ErrInvalidEntitlement, err)), nil
		}
		return results.SuccessResult[*EntitlementInfo, error](&EntitlementInfo{
			Source:    claims.Source,
			ProductID: claims.ProductID,
			Platform:  claims.Platform,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		}), nil
	})
}

// grant sets the paid flag and stores a signed entitlement. Without a
// signing secret the unlock still succeeds, just without a token.
func (s *PaywallService) grant(ctx context.Context, db bun.IDB, e paywalldb.Entitlement) (results.OperationResult[*Unlock, error], error) {
	e.GrantedAt = s.now().UTC()

	token, err := s.tokens.GenerateToken(paywalljwt.Claims{
		Source:        e.Source,
		ProductID:     e.ProductID,
		Platform:      e.Platform,
		TransactionID: e.TransactionID,
	}, s.opts.TokenTTL)
	switch {
	case errors.Is(err, paywalljwt.ErrMissingSecret):
		s.logger.WarnContext(ctx, "Entitlement token not issued, no signing secret configured", attr.ExtractCorrelationID(ctx))
	case err != nil:
		return results.OperationResult[*Unlock, error]{}, err
	}
	e.Token = token

	if err := s.repo.SetHasPaid(ctx, db, true); err != nil {
		return results.OperationResult[*Unlock, error]{}, err
	}
	if err := s.repo.SaveEntitlement(ctx, db, &e); err != nil {
		return results.OperationResult[*Unlock, error]{}, err
	}

	s.logger.InfoContext(ctx, "Premium unlocked",
		attr.ExtractCorrelationID(ctx),
		attr.String("source", e.Source),
		attr.String("product_id", e.ProductID),
	)
	return results.SuccessResult[*Unlock, error](&Unlock{HasPaid: true, Source: e.Source, Token: token}), nil
}

var (
	_ Service      = (*PaywallService)(nil)
	_ Entitlements = (*PaywallService)(nil)
)
