package paywallservice

import (
	"context"
	"time"

	paywallstore "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/store"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/uptrace/bun"
)

// Service defines the paywall operations.
type Service interface {
	Status(ctx context.Context) (*Status, error)
	Products(ctx context.Context, platform paywallstore.Platform) ([]paywallstore.Product, error)
	Redeem(ctx context.Context, code string) (*Unlock, error)
	Purchase(ctx context.Context, platform paywallstore.Platform) (*Unlock, error)
	Restore(ctx context.Context, platform paywallstore.Platform) (*Unlock, error)
	VerifyEntitlement(ctx context.Context, token string) (*EntitlementInfo, error)
}

// Entitlements is read by the modules that enforce the free tier. It runs
// inside the caller's transaction and carries no telemetry of its own.
type Entitlements interface {
	HasPaid(ctx context.Context, db bun.IDB) (bool, error)
	Limits() Limits
}

// Limits are the free-tier allowances. A value of zero or less disables
// that limit.
type Limits struct {
	FreeScoreCeiling        int `json:"freeScoreCeiling"`
	MaxFreeOpponents        int `json:"maxFreeOpponents"`
	MaxFreeGamesPerOpponent int `json:"maxFreeGamesPerOpponent"`
	MaxFreeMultiplayerGames int `json:"maxFreeMultiplayerGames"`
}

// DefaultLimits are the allowances the app ships with.
func DefaultLimits() Limits {
	return Limits{
		FreeScoreCeiling:        scoring.DefaultFreeScoreCeiling,
		MaxFreeOpponents:        1,
		MaxFreeGamesPerOpponent: 1,
		MaxFreeMultiplayerGames: 1,
	}
}

// Status reports whether premium is unlocked.
type Status struct {
	HasPaid   bool       `json:"hasPaid"`
	Source    string     `json:"source,omitempty"`
	GrantedAt *time.Time `json:"grantedAt,omitempty"`
	Limits    Limits     `json:"limits"`
}

// Unlock is returned when premium is granted.
type Unlock struct {
	HasPaid bool   `json:"hasPaid"`
	Source  string `json:"source"`
	Token   string `json:"token"`
}

// EntitlementInfo is a verified entitlement token.
type EntitlementInfo struct {
	Source    string    `json:"source"`
	ProductID string    `json:"productId,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Options configure the paywall service.
type Options struct {
	RedeemCode string
	TokenTTL   time.Duration
	Limits     Limits
}

// Unlock sources.
const (
	SourceRedeem   = "redeem"
	SourcePurchase = "purchase"
	SourceRestore  = "restore"
)
